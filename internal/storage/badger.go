package storage

import (
	"bytes"
	"fmt"
	"os"

	"github.com/latticedb/quadstore/pkg/store"
	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStorage implements store.Storage using BadgerDB.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens a BadgerDB-backed storage rooted at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerStorage{db: db}, nil
}

// Begin starts a new transaction.
func (s *BadgerStorage) Begin(writable bool) (store.Transaction, error) {
	txn := s.db.NewTransaction(writable)
	return &BadgerTransaction{
		txn:      txn,
		writable: writable,
	}, nil
}

// Snapshot returns a read-only transaction pinned to a consistent
// point-in-time view. Badger's MVCC already gives every read transaction
// a consistent snapshot, so this is just Begin(false) under another name.
func (s *BadgerStorage) Snapshot() (store.Transaction, error) {
	return s.Begin(false)
}

// BulkWriter returns a write path for loading a large, pre-sorted batch
// into table without per-key transactional overhead. Badger has no
// RocksDB-style external-file ingestion, so this is backed by a
// badger.WriteBatch, Badger's closest equivalent.
func (s *BadgerStorage) BulkWriter(table store.Table) (store.BulkWriter, error) {
	return &badgerBulkWriter{
		table: table,
		wb:    s.db.NewWriteBatch(),
	}, nil
}

// Flush forces buffered writes to stable storage.
func (s *BadgerStorage) Flush() error {
	return s.db.Sync()
}

// Compact triggers a foreground compaction of Badger's on-disk files.
func (s *BadgerStorage) Compact() error {
	return s.db.Flatten(2)
}

// Backup writes a consistent copy of the database to path.
func (s *BadgerStorage) Backup(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close() // #nosec G104 - write error below is the one that matters

	if _, err := s.db.Backup(f, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Close closes the storage.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

// Sync flushes writes to disk.
func (s *BadgerStorage) Sync() error {
	return s.db.Sync()
}

// badgerBulkWriter implements store.BulkWriter over a badger.WriteBatch.
type badgerBulkWriter struct {
	table store.Table
	wb    *badger.WriteBatch
}

func (w *badgerBulkWriter) Add(key, value []byte) error {
	return w.wb.Set(store.PrefixKey(w.table, key), value)
}

func (w *badgerBulkWriter) Flush() error {
	return w.wb.Flush()
}

// BadgerTransaction implements store.Transaction using BadgerDB.
type BadgerTransaction struct {
	txn      *badger.Txn
	writable bool
}

// Get retrieves a value by key.
func (t *BadgerTransaction) Get(table store.Table, key []byte) ([]byte, error) {
	prefixedKey := store.PrefixKey(table, key)
	item, err := t.txn.Get(prefixedKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores a key-value pair.
func (t *BadgerTransaction) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	prefixedKey := store.PrefixKey(table, key)
	return t.txn.Set(prefixedKey, value)
}

// Delete removes a key.
func (t *BadgerTransaction) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}

	prefixedKey := store.PrefixKey(table, key)
	return t.txn.Delete(prefixedKey)
}

// Scan iterates over the keys of table that begin with start (the whole
// table when start is nil), stopping before end when end is non-nil.
func (t *BadgerTransaction) Scan(table store.Table, start, end []byte) (store.Iterator, error) {
	opts := badger.DefaultIteratorOptions

	var seekKey []byte
	var scanPrefix []byte
	tablePrefix := store.TablePrefix(table)

	if start != nil {
		seekKey = store.PrefixKey(table, start)
		scanPrefix = seekKey
	} else {
		seekKey = tablePrefix
		scanPrefix = tablePrefix
	}

	opts.Prefix = scanPrefix
	it := t.txn.NewIterator(opts)

	var endKey []byte
	if end != nil {
		endKey = store.PrefixKey(table, end)
	}

	return &BadgerIterator{
		it:         it,
		prefix:     tablePrefix,
		scanPrefix: scanPrefix,
		endKey:     endKey,
		seekKey:    seekKey,
		started:    false,
		hasValue:   false,
	}, nil
}

// Commit commits the transaction.
func (t *BadgerTransaction) Commit() error {
	return t.txn.Commit()
}

// Rollback rolls back the transaction.
func (t *BadgerTransaction) Rollback() error {
	t.txn.Discard()
	return nil
}

// BadgerIterator implements store.Iterator using BadgerDB.
type BadgerIterator struct {
	it         *badger.Iterator
	prefix     []byte // Table prefix for stripping from keys
	scanPrefix []byte // Full prefix used for BadgerDB filtering
	endKey     []byte
	seekKey    []byte
	started    bool
	hasValue   bool
}

// Next advances to the next item.
func (i *BadgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else {
		i.it.Next()
	}

	if !i.it.Valid() {
		i.hasValue = false
		return false
	}

	if i.endKey != nil {
		if bytes.Compare(i.it.Item().Key(), i.endKey) >= 0 {
			i.hasValue = false
			return false
		}
	}

	i.hasValue = true
	return true
}

// Key returns the current key (without the table prefix).
func (i *BadgerIterator) Key() []byte {
	if !i.hasValue {
		return nil
	}

	key := i.it.Item().Key()
	if len(key) > len(i.prefix) {
		return key[len(i.prefix):]
	}
	return nil
}

// Value returns the current value.
func (i *BadgerIterator) Value() ([]byte, error) {
	if !i.hasValue {
		return nil, store.ErrNotFound
	}

	var value []byte
	err := i.it.Item().Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Close closes the iterator.
func (i *BadgerIterator) Close() error {
	i.it.Close()
	return nil
}
