package encoding

import (
	"fmt"
	"math"

	"github.com/latticedb/quadstore/pkg/rdf"
	"github.com/latticedb/quadstore/pkg/store"
)

// TermDecoder decodes RDF terms from the tagged binary wire format.
type TermDecoder struct{}

func NewTermDecoder() *TermDecoder {
	return &TermDecoder{}
}

// DecodeTerm decodes one term from the front of buf and reports how many
// bytes it consumed, so a caller decoding a run of concatenated terms (an
// index key) can advance and decode the next one.
func (d *TermDecoder) DecodeTerm(buf []byte, lookup store.StringLookup) (rdf.Term, int, error) {
	if len(buf) == 0 {
		return nil, 0, fmt.Errorf("%w: empty term buffer", store.ErrCorruption)
	}
	tag := Tag(buf[0])
	payload := buf[1:]

	switch tag {
	case TagNamedNode:
		iri, err := resolveSlotHash(payload, lookup)
		if err != nil {
			return nil, 0, err
		}
		return rdf.NewNamedNode(iri), 1 + slotSize, nil

	case TagNumericalBlankNode:
		if len(payload) < slotSize {
			return nil, 0, shortBuf(tag)
		}
		num := rdf.DecodeInt64BigEndian(payload[8:16])
		return rdf.NewBlankNode(fmt.Sprintf("%d", num)), 1 + slotSize, nil

	case TagSmallBlankNode:
		if len(payload) < slotSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewBlankNode(decodeSmallSlot(payload)), 1 + slotSize, nil

	case TagBigBlankNode:
		id, err := resolveSlotHash(payload, lookup)
		if err != nil {
			return nil, 0, err
		}
		return rdf.NewBlankNode(id), 1 + slotSize, nil

	case TagSmallStringLiteral:
		if len(payload) < slotSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteral(decodeSmallSlot(payload)), 1 + slotSize, nil

	case TagBigStringLiteral:
		value, err := resolveSlotHash(payload, lookup)
		if err != nil {
			return nil, 0, err
		}
		return rdf.NewLiteral(value), 1 + slotSize, nil

	case TagLangSmallSmall, TagLangSmallBig, TagLangBigSmall, TagLangBigBig:
		return d.decodeLangStringLiteral(tag, payload, lookup)

	case TagSmallTypedLiteral, TagBigTypedLiteral:
		return d.decodeTypedLiteral(tag, payload, lookup)

	case TagBooleanTrue:
		return rdf.NewBooleanLiteral(true), 1, nil
	case TagBooleanFalse:
		return rdf.NewBooleanLiteral(false), 1, nil

	case TagFloat:
		if len(payload) < 4 {
			return nil, 0, shortBuf(tag)
		}
		bits := uint32(payload[0])<<24 | uint32(payload[1])<<16 | uint32(payload[2])<<8 | uint32(payload[3])
		return rdf.NewFloatLiteral(math.Float32frombits(bits)), 1 + 4, nil

	case TagDouble:
		if len(payload) < 8 {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewDoubleLiteral(rdf.DecodeFloat64BigEndian(payload[:8])), 1 + 8, nil

	case TagInteger:
		if len(payload) < 8 {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewIntegerLiteral(rdf.DecodeInt64BigEndian(payload[:8])), 1 + 8, nil

	case TagDecimal:
		if len(payload) < slotSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeDecimal128(payload[:slotSize]), rdf.XSDDecimal), 1 + slotSize, nil

	case TagDateTime:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeDateTimeLiteral(payload[:calendarSize]), rdf.XSDDateTime), 1 + calendarSize, nil
	case TagTime:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeTimeLiteral(payload[:calendarSize]), rdf.XSDTime), 1 + calendarSize, nil
	case TagDate:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeDateLiteral(payload[:calendarSize]), rdf.XSDDate), 1 + calendarSize, nil
	case TagGYearMonth:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeGYearMonthLiteral(payload[:calendarSize]), rdf.XSDGYearMonth), 1 + calendarSize, nil
	case TagGYear:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeGYearLiteral(payload[:calendarSize]), rdf.XSDGYear), 1 + calendarSize, nil
	case TagGMonthDay:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeGMonthDayLiteral(payload[:calendarSize]), rdf.XSDGMonthDay), 1 + calendarSize, nil
	case TagGDay:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeGDayLiteral(payload[:calendarSize]), rdf.XSDGDay), 1 + calendarSize, nil
	case TagGMonth:
		if len(payload) < calendarSize {
			return nil, 0, shortBuf(tag)
		}
		return rdf.NewLiteralWithDatatype(decodeGMonthLiteral(payload[:calendarSize]), rdf.XSDGMonth), 1 + calendarSize, nil

	case TagDuration:
		if len(payload) < 24 {
			return nil, 0, shortBuf(tag)
		}
		months, seconds := decodeDuration24(payload[:24])
		return rdf.NewLiteralWithDatatype(rdf.FormatDuration(months, seconds), rdf.XSDDuration), 1 + 24, nil

	case TagYearMonthDuration:
		if len(payload) < 8 {
			return nil, 0, shortBuf(tag)
		}
		months := decodeYearMonthDuration8(payload[:8])
		return rdf.NewYearMonthDurationLiteral(months), 1 + 8, nil

	case TagDayTimeDuration:
		if len(payload) < 16 {
			return nil, 0, shortBuf(tag)
		}
		seconds := decodeDayTimeDuration16(payload[:16])
		return rdf.NewDayTimeDurationLiteral(seconds), 1 + 16, nil

	case TagTriple:
		return d.decodeQuotedTriple(payload, lookup)

	default:
		return nil, 0, fmt.Errorf("%w: tag %d", store.ErrUnknownTag, tag)
	}
}

func (d *TermDecoder) decodeLangStringLiteral(tag Tag, payload []byte, lookup store.StringLookup) (rdf.Term, int, error) {
	if len(payload) < 2*slotSize {
		return nil, 0, shortBuf(tag)
	}
	langSlot := payload[0:slotSize]
	valSlot := payload[slotSize : 2*slotSize]

	langBig := tag == TagLangBigSmall || tag == TagLangBigBig
	valBig := tag == TagLangSmallBig || tag == TagLangBigBig

	lang, err := resolveSlot(langSlot, langBig, lookup)
	if err != nil {
		return nil, 0, err
	}
	val, err := resolveSlot(valSlot, valBig, lookup)
	if err != nil {
		return nil, 0, err
	}
	return rdf.NewLiteralWithLanguage(val, lang), 1 + 2*slotSize, nil
}

func (d *TermDecoder) decodeTypedLiteral(tag Tag, payload []byte, lookup store.StringLookup) (rdf.Term, int, error) {
	if len(payload) < 2*slotSize {
		return nil, 0, shortBuf(tag)
	}
	dtSlot := payload[0:slotSize]
	valSlot := payload[slotSize : 2*slotSize]

	datatypeIRI, err := resolveSlot(dtSlot, true, lookup)
	if err != nil {
		return nil, 0, err
	}
	value, err := resolveSlot(valSlot, tag == TagBigTypedLiteral, lookup)
	if err != nil {
		return nil, 0, err
	}
	return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatypeIRI)), 1 + 2*slotSize, nil
}

func (d *TermDecoder) decodeQuotedTriple(payload []byte, lookup store.StringLookup) (rdf.Term, int, error) {
	s, n1, err := d.DecodeTerm(payload, lookup)
	if err != nil {
		return nil, 0, fmt.Errorf("quoted triple subject: %w", err)
	}
	p, n2, err := d.DecodeTerm(payload[n1:], lookup)
	if err != nil {
		return nil, 0, fmt.Errorf("quoted triple predicate: %w", err)
	}
	o, n3, err := d.DecodeTerm(payload[n1+n2:], lookup)
	if err != nil {
		return nil, 0, fmt.Errorf("quoted triple object: %w", err)
	}
	qt, err := rdf.NewQuotedTriple(s, p, o)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", store.ErrCorruption, err)
	}
	return qt, 1 + n1 + n2 + n3, nil
}

// resolveSlotHash treats payload's first slotSize bytes as a hash and
// resolves it via lookup (used by tags that always hash: NamedNode,
// BigBlankNode, BigStringLiteral).
func resolveSlotHash(payload []byte, lookup store.StringLookup) (string, error) {
	if len(payload) < slotSize {
		return "", fmt.Errorf("%w: short hash slot", store.ErrCorruption)
	}
	var hash [16]byte
	copy(hash[:], payload[:slotSize])
	value, err := lookup(hash)
	if err != nil {
		return "", fmt.Errorf("%w: string table lookup: %v", store.ErrCorruption, err)
	}
	return value, nil
}

// resolveSlot reads a slot that may be inline (small) or hashed (big).
func resolveSlot(slot []byte, big bool, lookup store.StringLookup) (string, error) {
	if big {
		return resolveSlotHash(slot, lookup)
	}
	return decodeSmallSlot(slot), nil
}

func shortBuf(tag Tag) error {
	return fmt.Errorf("%w: truncated payload for tag %d", store.ErrCorruption, tag)
}
