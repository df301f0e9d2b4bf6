package encoding

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/latticedb/quadstore/pkg/rdf"
	"github.com/latticedb/quadstore/pkg/store"
	"github.com/zeebo/xxh3"
)

// TermEncoder encodes RDF terms into the tagged binary wire format
// described by the term wire format's tag table.
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input string.
func (e *TermEncoder) Hash128(s string) [16]byte {
	hash := xxh3.Hash128([]byte(s))
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes an RDF term, returning its tagged byte form plus any
// id2str entries the term's string content must materialize.
func (e *TermEncoder) EncodeTerm(term rdf.Term) (store.EncodedTerm, []store.StringEntry, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.encodeNamedNode(t)
	case *rdf.BlankNode:
		return e.encodeBlankNode(t)
	case *rdf.Literal:
		return e.encodeLiteral(t)
	case *rdf.QuotedTriple:
		return e.encodeQuotedTriple(t)
	case *rdf.DefaultGraph:
		return nil, nil, fmt.Errorf("default graph has no wire encoding: it is implicit in the default-graph index set")
	default:
		return nil, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func withTag(tag Tag, payload []byte) store.EncodedTerm {
	out := make([]byte, 1+len(payload))
	out[0] = byte(tag)
	copy(out[1:], payload)
	return out
}

func (e *TermEncoder) encodeNamedNode(node *rdf.NamedNode) (store.EncodedTerm, []store.StringEntry, error) {
	hash, entry := e.encodeBigSlot(node.IRI)
	return withTag(TagNamedNode, hash[:]), []store.StringEntry{entry}, nil
}

func (e *TermEncoder) encodeBlankNode(node *rdf.BlankNode) (store.EncodedTerm, []store.StringEntry, error) {
	if num, err := strconv.ParseUint(node.ID, 10, 64); err == nil {
		var payload [16]byte
		binary.BigEndian.PutUint64(payload[8:], num)
		return withTag(TagNumericalBlankNode, payload[:]), nil, nil
	}

	if len(node.ID) <= maxInlineLen {
		slot := encodeSmallSlot(node.ID)
		return withTag(TagSmallBlankNode, slot[:]), nil, nil
	}

	hash, entry := e.encodeBigSlot(node.ID)
	return withTag(TagBigBlankNode, hash[:]), []store.StringEntry{entry}, nil
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	if lit.Datatype != nil {
		switch lit.Datatype.IRI {
		case rdf.XSDInteger.IRI:
			return e.encodeIntegerLiteral(lit)
		case rdf.XSDDecimal.IRI:
			return e.encodeDecimalLiteral(lit)
		case rdf.XSDFloat.IRI:
			return e.encodeFloatLiteral(lit)
		case rdf.XSDDouble.IRI:
			return e.encodeDoubleLiteral(lit)
		case rdf.XSDBoolean.IRI:
			return e.encodeBooleanLiteral(lit)
		case rdf.XSDDateTime.IRI:
			return e.encodeCalendarLiteral(TagDateTime, encodeDateTimeLiteral, lit)
		case rdf.XSDTime.IRI:
			return e.encodeCalendarLiteral(TagTime, encodeTimeLiteral, lit)
		case rdf.XSDDate.IRI:
			return e.encodeCalendarLiteral(TagDate, encodeDateLiteral, lit)
		case rdf.XSDGYearMonth.IRI:
			return e.encodeCalendarLiteral(TagGYearMonth, encodeGYearMonthLiteral, lit)
		case rdf.XSDGYear.IRI:
			return e.encodeCalendarLiteral(TagGYear, encodeGYearLiteral, lit)
		case rdf.XSDGMonthDay.IRI:
			return e.encodeCalendarLiteral(TagGMonthDay, encodeGMonthDayLiteral, lit)
		case rdf.XSDGDay.IRI:
			return e.encodeCalendarLiteral(TagGDay, encodeGDayLiteral, lit)
		case rdf.XSDGMonth.IRI:
			return e.encodeCalendarLiteral(TagGMonth, encodeGMonthLiteral, lit)
		case rdf.XSDDuration.IRI:
			return e.encodeDurationLiteral(lit)
		case rdf.XSDYearMonthDuration.IRI:
			return e.encodeYearMonthDurationLiteral(lit)
		case rdf.XSDDayTimeDuration.IRI:
			return e.encodeDayTimeDurationLiteral(lit)
		default:
			return e.encodeTypedLiteral(lit)
		}
	}

	if lit.Language != "" {
		return e.encodeLangStringLiteral(lit)
	}

	return e.encodeStringLiteral(lit)
}

func (e *TermEncoder) encodeStringLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	if len(lit.Value) <= maxInlineLen {
		slot := encodeSmallSlot(lit.Value)
		return withTag(TagSmallStringLiteral, slot[:]), nil, nil
	}
	hash, entry := e.encodeBigSlot(lit.Value)
	return withTag(TagBigStringLiteral, hash[:]), []store.StringEntry{entry}, nil
}

func (e *TermEncoder) encodeLangStringLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	var payload [2 * slotSize]byte
	var entries []store.StringEntry
	tag := TagLangSmallSmall

	if len(lit.Language) <= maxInlineLen {
		slot := encodeSmallSlot(lit.Language)
		copy(payload[0:slotSize], slot[:])
	} else {
		hash, entry := e.encodeBigSlot(lit.Language)
		copy(payload[0:slotSize], hash[:])
		entries = append(entries, entry)
		tag += TagLangBigSmall - TagLangSmallSmall
	}

	if len(lit.Value) <= maxInlineLen {
		slot := encodeSmallSlot(lit.Value)
		copy(payload[slotSize:], slot[:])
	} else {
		hash, entry := e.encodeBigSlot(lit.Value)
		copy(payload[slotSize:], hash[:])
		entries = append(entries, entry)
		tag += TagLangSmallBig - TagLangSmallSmall
	}

	return withTag(tag, payload[:]), entries, nil
}

func (e *TermEncoder) encodeTypedLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	var payload [2 * slotSize]byte

	dtHash, dtEntry := e.encodeBigSlot(lit.Datatype.IRI)
	copy(payload[0:slotSize], dtHash[:])
	entries := []store.StringEntry{dtEntry}

	tag := TagSmallTypedLiteral
	if len(lit.Value) <= maxInlineLen {
		slot := encodeSmallSlot(lit.Value)
		copy(payload[slotSize:], slot[:])
	} else {
		hash, entry := e.encodeBigSlot(lit.Value)
		copy(payload[slotSize:], hash[:])
		entries = append(entries, entry)
		tag = TagBigTypedLiteral
	}

	return withTag(tag, payload[:]), entries, nil
}

func (e *TermEncoder) encodeIntegerLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	value, err := strconv.ParseInt(lit.Value, 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid integer literal: %w", err)
	}
	return withTag(TagInteger, rdf.EncodeInt64BigEndian(value)), nil, nil
}

func (e *TermEncoder) encodeDecimalLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	payload, err := encodeDecimal128(lit.Value)
	if err != nil {
		return nil, nil, err
	}
	return withTag(TagDecimal, payload[:]), nil, nil
}

func (e *TermEncoder) encodeFloatLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	value, err := strconv.ParseFloat(lit.Value, 32)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid float literal: %w", err)
	}
	var payload [4]byte
	binary.BigEndian.PutUint32(payload[:], math.Float32bits(float32(value)))
	return withTag(TagFloat, payload[:]), nil, nil
}

func (e *TermEncoder) encodeDoubleLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	value, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid double literal: %w", err)
	}
	return withTag(TagDouble, rdf.EncodeFloat64BigEndian(value)), nil, nil
}

func (e *TermEncoder) encodeBooleanLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	value, err := strconv.ParseBool(lit.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid boolean literal: %w", err)
	}
	if value {
		return withTag(TagBooleanTrue, nil), nil, nil
	}
	return withTag(TagBooleanFalse, nil), nil, nil
}

type calendarEncodeFunc func(value string) ([calendarSize]byte, error)

func (e *TermEncoder) encodeCalendarLiteral(tag Tag, encode calendarEncodeFunc, lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	payload, err := encode(lit.Value)
	if err != nil {
		return nil, nil, err
	}
	return withTag(tag, payload[:]), nil, nil
}

func (e *TermEncoder) encodeDurationLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	months, seconds, err := parseXSDDuration(lit.Value)
	if err != nil {
		return nil, nil, err
	}
	payload := encodeDuration24(months, seconds)
	return withTag(TagDuration, payload[:]), nil, nil
}

func (e *TermEncoder) encodeYearMonthDurationLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	months, _, err := parseXSDDuration(lit.Value)
	if err != nil {
		return nil, nil, err
	}
	payload := encodeYearMonthDuration8(months)
	return withTag(TagYearMonthDuration, payload[:]), nil, nil
}

func (e *TermEncoder) encodeDayTimeDurationLiteral(lit *rdf.Literal) (store.EncodedTerm, []store.StringEntry, error) {
	_, seconds, err := parseXSDDuration(lit.Value)
	if err != nil {
		return nil, nil, err
	}
	payload := encodeDayTimeDuration16(seconds)
	return withTag(TagDayTimeDuration, payload[:]), nil, nil
}

func (e *TermEncoder) encodeQuotedTriple(qt *rdf.QuotedTriple) (store.EncodedTerm, []store.StringEntry, error) {
	s, sEntries, err := e.EncodeTerm(qt.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("quoted triple subject: %w", err)
	}
	p, pEntries, err := e.EncodeTerm(qt.Predicate)
	if err != nil {
		return nil, nil, fmt.Errorf("quoted triple predicate: %w", err)
	}
	o, oEntries, err := e.EncodeTerm(qt.Object)
	if err != nil {
		return nil, nil, fmt.Errorf("quoted triple object: %w", err)
	}

	payload := make([]byte, 0, len(s)+len(p)+len(o))
	payload = append(payload, s...)
	payload = append(payload, p...)
	payload = append(payload, o...)

	entries := append(append(sEntries, pEntries...), oEntries...)
	return withTag(TagTriple, payload), entries, nil
}

// EncodeQuadKey concatenates already-encoded terms into a single index
// key. Terms are self-describing, so no length prefixes are needed.
func (e *TermEncoder) EncodeQuadKey(terms ...store.EncodedTerm) []byte {
	size := 0
	for _, t := range terms {
		size += len(t)
	}
	result := make([]byte, 0, size)
	for _, t := range terms {
		result = append(result, t...)
	}
	return result
}
