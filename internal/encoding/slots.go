package encoding

import (
	"github.com/latticedb/quadstore/pkg/store"
)

// encodeSmallSlot inlines s into a 16-byte slot: byte 0 is the length,
// the remaining 15 bytes hold s padded with zeros. Callers must check
// len(s) <= maxInlineLen first.
func encodeSmallSlot(s string) [slotSize]byte {
	var slot [slotSize]byte
	slot[0] = byte(len(s))
	copy(slot[1:], s)
	return slot
}

// decodeSmallSlot reverses encodeSmallSlot.
func decodeSmallSlot(b []byte) string {
	n := int(b[0])
	if n > maxInlineLen {
		n = maxInlineLen
	}
	return string(b[1 : 1+n])
}

// encodeBigSlot hashes s into a 16-byte slot and returns the id2str entry
// that must be materialized for the hash to be resolvable later.
func (e *TermEncoder) encodeBigSlot(s string) ([slotSize]byte, store.StringEntry) {
	hash := e.Hash128(s)
	return hash, store.StringEntry{Hash: hash, Value: s}
}
