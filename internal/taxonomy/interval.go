package taxonomy

import (
	"encoding/binary"

	"github.com/latticedb/quadstore/internal/encoding"
	"github.com/latticedb/quadstore/pkg/rdf"
)

// Well-known predicate IRIs the interval-encoding sidecar recognizes.
// lubmSubOrganizationOf is the one domain-specific predicate the loader
// treats as a second subclass-like relation, per the worked example in the
// LUBM benchmark data this tree shape was designed against.
const (
	rdfType               = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	rdfsSubClassOf        = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	rdfsSubPropertyOf     = "http://www.w3.org/2000/01/rdf-schema#subPropertyOf"
	rdfsDomain            = "http://www.w3.org/2000/01/rdf-schema#domain"
	rdfsRange             = "http://www.w3.org/2000/01/rdf-schema#range"
	lubmSubOrganizationOf = "http://www.lehigh.edu/~zhp2/2004/0401/univ-bench.owl#subOrganizationOf"
)

// EncodeIntervalHint computes the interval-encoding sidecar byte string for
// a triple (s, p, o) against the two taxonomy trees (§4.2). It returns nil
// whenever p doesn't match a tracked predicate or a lookup fails — the
// caller still indexes the triple normally, just without a hint attached.
func EncodeIntervalHint(s, p, o rdf.Term, classes, properties *Tree) []byte {
	predIRI, ok := termIRI(p)
	if !ok {
		return nil
	}

	switch predIRI {
	case rdfsSubClassOf, lubmSubOrganizationOf:
		return encodeParentHint(s, o, classes, byte(encoding.TagClass))
	case rdfsSubPropertyOf:
		return encodeParentHint(s, o, properties, byte(encoding.TagProperty))
	case rdfsDomain, rdfsRange, rdfType:
		return encodeIntervalListHint(o, classes, byte(encoding.TagClass))
	default:
		return nil
	}
}

// encodeParentHint handles the subClassOf/subOrganizationOf/subPropertyOf
// shape: tag, then (start,end) for every s-interval labeled under parent o,
// then o's first interval as (start,end,layer).
func encodeParentHint(s, o rdf.Term, tree *Tree, tag byte) []byte {
	sIRI, ok := termIRI(s)
	if !ok {
		return nil
	}
	oIRI, ok := termIRI(o)
	if !ok {
		return nil
	}

	via := tree.intervalsViaParent(sIRI, oIRI)
	if len(via) == 0 {
		return nil
	}
	first, ok := tree.firstInterval(oIRI)
	if !ok {
		return nil
	}

	buf := make([]byte, 0, 1+16*len(via)+18)
	buf = append(buf, tag)
	for _, iv := range via {
		buf = appendStartEnd(buf, iv)
	}
	buf = appendStartEndLayer(buf, first)
	return buf
}

// encodeIntervalListHint handles the domain/range/rdf:type shape: tag, a
// one-byte count, then each of o's intervals as (start,end,layer).
func encodeIntervalListHint(o rdf.Term, tree *Tree, tag byte) []byte {
	oIRI, ok := termIRI(o)
	if !ok {
		return nil
	}
	ivs := tree.Intervals(oIRI)
	if len(ivs) == 0 {
		return nil
	}
	if len(ivs) > 255 {
		ivs = ivs[:255]
	}

	buf := make([]byte, 0, 2+18*len(ivs))
	buf = append(buf, tag, byte(len(ivs)))
	for _, iv := range ivs {
		buf = appendStartEndLayer(buf, iv)
	}
	return buf
}

func appendStartEnd(buf []byte, iv Interval) []byte {
	var tmp [16]byte
	binary.BigEndian.PutUint64(tmp[0:8], uint64(iv.Start))
	binary.BigEndian.PutUint64(tmp[8:16], uint64(iv.End))
	return append(buf, tmp[:]...)
}

func appendStartEndLayer(buf []byte, iv Interval) []byte {
	buf = appendStartEnd(buf, iv)
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], iv.Layer)
	return append(buf, tmp[:]...)
}

func termIRI(t rdf.Term) (string, bool) {
	n, ok := t.(*rdf.NamedNode)
	if !ok {
		return "", false
	}
	return n.IRI, true
}
