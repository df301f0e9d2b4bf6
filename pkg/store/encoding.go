package store

import (
	"github.com/latticedb/quadstore/pkg/rdf"
)

// EncodedTerm is the tagged binary form of an RDF term: one tag byte
// followed by a tag-specific payload (term wire format §3.1). It is a
// variable-length slice rather than a fixed array because some tags pair
// two 16-byte slots (language literals, typed literals) and the Triple tag
// recurses into three further encoded terms of their own variable length.
type EncodedTerm []byte

// StringEntry is a (hash, original string) pair an encode step wants
// materialized into the id2str table. A single term can produce more than
// one entry: a typed literal, for instance, hashes both its datatype IRI
// and (when not inlined) its value.
type StringEntry struct {
	Hash  [16]byte
	Value string
}

// StringLookup resolves a 16-byte hash back to its original string, as
// stored in the id2str column family.
type StringLookup func(hash [16]byte) (string, error)

// TermEncoder encodes RDF terms into the compact binary wire format.
type TermEncoder interface {
	// EncodeTerm encodes an RDF term. It returns the encoded term and any
	// (hash, string) pairs that must be materialized into id2str for the
	// term to be decodable later.
	EncodeTerm(term rdf.Term) (EncodedTerm, []StringEntry, error)

	// EncodeQuadKey concatenates already-encoded terms into a single index
	// key. Terms are self-describing (tag byte determines payload length,
	// recursively for Triple), so no length prefixes are needed between
	// them.
	EncodeQuadKey(terms ...EncodedTerm) []byte
}

// TermDecoder decodes RDF terms from the binary wire format.
type TermDecoder interface {
	// DecodeTerm decodes one term starting at the front of buf, using
	// lookup to resolve any hash that isn't inlined. It returns the term
	// and the number of bytes consumed, so callers can decode a
	// concatenated run of terms (an index key) left to right.
	DecodeTerm(buf []byte, lookup StringLookup) (rdf.Term, int, error)
}
