package encoding

// Tag is the wire tag byte identifying a term's binary variant (term wire
// format §3.1). It is the on-disk discriminant; rdf.TermType is a
// separate, Go-level discriminant and the two must never be confused.
type Tag byte

const (
	TagNamedNode Tag = 1

	TagNumericalBlankNode Tag = 8
	TagSmallBlankNode     Tag = 9
	TagBigBlankNode       Tag = 10

	TagSmallStringLiteral Tag = 16
	TagBigStringLiteral   Tag = 17

	// Language-tagged string literals pair a language slot and a value
	// slot, each independently small (inlined) or big (hashed).
	TagLangSmallSmall Tag = 20
	TagLangSmallBig   Tag = 21
	TagLangBigSmall   Tag = 22
	TagLangBigBig     Tag = 23

	TagSmallTypedLiteral Tag = 24
	TagBigTypedLiteral   Tag = 25

	TagBooleanTrue  Tag = 28
	TagBooleanFalse Tag = 29

	TagFloat   Tag = 30
	TagDouble  Tag = 31
	TagInteger Tag = 32
	TagDecimal Tag = 33

	TagDateTime   Tag = 34
	TagTime       Tag = 35
	TagDate       Tag = 36
	TagGYearMonth Tag = 37
	TagGYear      Tag = 38
	TagGMonthDay  Tag = 39
	TagGDay       Tag = 40
	TagGMonth     Tag = 41

	TagDuration          Tag = 42
	TagYearMonthDuration Tag = 43
	TagDayTimeDuration   Tag = 44

	TagTriple Tag = 48

	// Taxonomy interval-hint tags (§4.2), attached to s/p/o positions that
	// fall inside the class or property tree rather than to a term.
	TagClass    Tag = 50
	TagProperty Tag = 51
)

// slotSize is the width, in bytes, of one small-or-hashed string slot.
const slotSize = 16

// maxInlineLen is the longest string that fits inline in a slot: one byte
// of the slot holds the length, so 15 bytes of payload remain.
const maxInlineLen = slotSize - 1

// calendarSize is the fixed payload width for all eight calendar tags.
const calendarSize = 18
