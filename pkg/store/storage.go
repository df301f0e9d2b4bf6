package store

import (
	"errors"
)

var (
	ErrNotFound             = errors.New("key not found")
	ErrTransactionRO        = errors.New("transaction is read-only")
	ErrCorruption           = errors.New("storage corruption")
	ErrUnknownTag           = errors.New("unknown term tag")
	ErrUnsupportedVersion   = errors.New("unsupported store version")
	ErrMixedIntervalVariant = errors.New("mixed interval-encoding variant within one column family")
)

// Storage is the interface for the underlying key-value engine. It is the
// sole boundary the rest of this module crosses to reach disk, so any
// engine that can implement it (Badger today) can back a TripleStore.
type Storage interface {
	// Begin starts a new transaction.
	Begin(writable bool) (Transaction, error)

	// Snapshot returns a read-only transaction pinned to a consistent
	// point-in-time view, for long-running scans that must not observe
	// concurrent writes.
	Snapshot() (Transaction, error)

	// BulkWriter returns a write path optimized for loading a large,
	// pre-sorted batch of keys into a single table, bypassing the normal
	// per-key transactional overhead.
	BulkWriter(table Table) (BulkWriter, error)

	// Flush forces buffered writes to stable storage.
	Flush() error

	// Compact triggers a foreground compaction of the engine's on-disk
	// files.
	Compact() error

	// Backup writes a consistent copy of the engine's data to path.
	Backup(path string) error

	// Close closes the storage.
	Close() error

	// Sync flushes writes to disk.
	Sync() error
}

// Transaction represents a database transaction with snapshot isolation.
type Transaction interface {
	// Get retrieves a value by key.
	Get(table Table, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(table Table, key, value []byte) error

	// Delete removes a key.
	Delete(table Table, key []byte) error

	// Scan iterates, in key order, over the keys of table that begin with
	// start; a nil start covers the whole table. If end is non-nil,
	// iteration stops before the first key >= end.
	Scan(table Table, start, end []byte) (Iterator, error)

	// Commit commits the transaction.
	Commit() error

	// Rollback rolls back the transaction.
	Rollback() error
}

// Iterator iterates over key-value pairs.
type Iterator interface {
	// Next advances to the next item.
	Next() bool

	// Key returns the current key.
	Key() []byte

	// Value returns the current value.
	Value() ([]byte, error)

	// Close closes the iterator.
	Close() error
}

// BulkWriter accepts keys for one table in sorted order and writes them to
// that table in one batch, without per-key transactional bookkeeping.
type BulkWriter interface {
	// Add stages a key-value pair. Callers must present keys in
	// ascending order within a single BulkWriter's lifetime.
	Add(key, value []byte) error

	// Flush finalizes the staged entries into the table.
	Flush() error
}

// Table represents a logical table/column family in the storage.
type Table byte

const (
	// Metadata table: hash -> string.
	TableID2Str Table = iota

	// Store-wide metadata: schema version, interval-variant markers.
	TableDefault

	// Default graph indexes (3 permutations).
	TableSPO
	TablePOS
	TableOSP

	// Named graph indexes (6 permutations).
	TableSPOG
	TablePOSG
	TableOSPG
	TableGSPO
	TableGPOS
	TableGOSP

	// Named graphs metadata.
	TableGraphs

	// Total number of tables.
	TableCount
)

func (t Table) String() string {
	switch t {
	case TableID2Str:
		return "id2str"
	case TableDefault:
		return "default"
	case TableSPO:
		return "spo"
	case TablePOS:
		return "pos"
	case TableOSP:
		return "osp"
	case TableSPOG:
		return "spog"
	case TablePOSG:
		return "posg"
	case TableOSPG:
		return "ospg"
	case TableGSPO:
		return "gspo"
	case TableGPOS:
		return "gpos"
	case TableGOSP:
		return "gosp"
	case TableGraphs:
		return "graphs"
	default:
		return "unknown"
	}
}

// TablePrefix returns a byte prefix for a table to namespace keys.
func TablePrefix(table Table) []byte {
	return []byte{byte(table)}
}

// PrefixKey adds a table prefix to a key.
func PrefixKey(table Table, key []byte) []byte {
	prefix := TablePrefix(table)
	result := make([]byte, len(prefix)+len(key))
	copy(result, prefix)
	copy(result[len(prefix):], key)
	return result
}
