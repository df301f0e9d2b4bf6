package bulk

import (
	"fmt"

	"github.com/latticedb/quadstore/internal/taxonomy"
	"github.com/latticedb/quadstore/pkg/rdf"
	"github.com/latticedb/quadstore/pkg/store"
)

// Variant selects where the interval-encoding sidecar (§4.2) is placed on
// default-graph rows. It has no effect on named-graph rows, which never
// carry an interval hint.
type Variant byte

const (
	// VariantNone disables interval labeling; dspo/dpos/dosp rows carry
	// empty values as usual.
	VariantNone Variant = iota
	// VariantKeySuffix appends the hint bytes to each default-graph key.
	VariantKeySuffix
	// VariantValueSide stores the hint bytes as each default-graph row's
	// value, leaving the key unchanged.
	VariantValueSide
)

// batch accumulates one worker's share of a load: deduped rows per column
// family (a later Add for the same key simply overwrites the earlier one,
// which is exactly the dedupe §4.5 asks for), deduped graph names, and a
// deduped hash→string map destined for id2str.
type batch struct {
	rows    map[store.Table]map[string][]byte
	graphs  map[string][]byte
	strings map[[16]byte]string
	n       int64
}

func newBatch() *batch {
	return &batch{
		rows:    make(map[store.Table]map[string][]byte),
		graphs:  make(map[string][]byte),
		strings: make(map[[16]byte]string),
	}
}

func (b *batch) setRow(table store.Table, key, value []byte) {
	m, ok := b.rows[table]
	if !ok {
		m = make(map[string][]byte)
		b.rows[table] = m
	}
	m[string(key)] = value
}

func (b *batch) recordStrings(entries []store.StringEntry) {
	for _, e := range entries {
		b.strings[e.Hash] = e.Value
	}
}

// add encodes one quad into the batch's per-table rows. Default-graph
// quads go to spo/pos/osp only, carrying an interval hint when classes and
// properties are non-nil and variant != VariantNone; named-graph quads go
// to the six named indexes plus a graphs-table entry, and never carry a
// hint (§4.2 only ever invokes the sidecar for dspo/dpos/dosp rows).
func (b *batch) add(encoder store.TermEncoder, quad *rdf.Quad, variant Variant, classes, properties *taxonomy.Tree) error {
	subjEnc, subjStr, err := encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return fmt.Errorf("encode subject: %w", err)
	}
	predEnc, predStr, err := encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return fmt.Errorf("encode predicate: %w", err)
	}
	objEnc, objStr, err := encoder.EncodeTerm(quad.Object)
	if err != nil {
		return fmt.Errorf("encode object: %w", err)
	}
	b.recordStrings(subjStr)
	b.recordStrings(predStr)
	b.recordStrings(objStr)

	if quad.Graph.Type() == rdf.TermTypeDefaultGraph {
		spoKey := encoder.EncodeQuadKey(subjEnc, predEnc, objEnc)
		posKey := encoder.EncodeQuadKey(predEnc, objEnc, subjEnc)
		ospKey := encoder.EncodeQuadKey(objEnc, subjEnc, predEnc)

		value := []byte{}
		if variant != VariantNone && classes != nil && properties != nil {
			if hint := taxonomy.EncodeIntervalHint(quad.Subject, quad.Predicate, quad.Object, classes, properties); len(hint) > 0 {
				switch variant {
				case VariantKeySuffix:
					spoKey = append(append([]byte{}, spoKey...), hint...)
					posKey = append(append([]byte{}, posKey...), hint...)
					ospKey = append(append([]byte{}, ospKey...), hint...)
				case VariantValueSide:
					value = hint
				}
			}
		}

		b.setRow(store.TableSPO, spoKey, value)
		b.setRow(store.TablePOS, posKey, value)
		b.setRow(store.TableOSP, ospKey, value)
		b.n++
		return nil
	}

	graphEnc, graphStr, err := encoder.EncodeTerm(quad.Graph)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	b.recordStrings(graphStr)

	empty := []byte{}
	b.setRow(store.TableSPOG, encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc), empty)
	b.setRow(store.TablePOSG, encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc), empty)
	b.setRow(store.TableOSPG, encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc), empty)
	b.setRow(store.TableGSPO, encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc), empty)
	b.setRow(store.TableGPOS, encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc), empty)
	b.setRow(store.TableGOSP, encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc), empty)
	b.graphs[string(graphEnc)] = empty
	b.n++
	return nil
}
