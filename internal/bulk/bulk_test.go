package bulk_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/latticedb/quadstore/internal/bulk"
	"github.com/latticedb/quadstore/internal/encoding"
	"github.com/latticedb/quadstore/pkg/rdf"
	"github.com/latticedb/quadstore/pkg/store"
)

// memStorage is a minimal in-memory store.Storage with a working
// BulkWriter, so this package's tests can drive a real Loader without a
// Badger-backed engine.
type memStorage struct {
	data map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Begin(writable bool) (store.Transaction, error) {
	return &memTxn{storage: m, writable: writable}, nil
}
func (m *memStorage) Snapshot() (store.Transaction, error) { return m.Begin(false) }
func (m *memStorage) BulkWriter(table store.Table) (store.BulkWriter, error) {
	return &memBulkWriter{storage: m, table: table}, nil
}
func (m *memStorage) Flush() error              { return nil }
func (m *memStorage) Compact() error            { return nil }
func (m *memStorage) Backup(path string) error  { return nil }
func (m *memStorage) Close() error              { return nil }
func (m *memStorage) Sync() error               { return nil }

type memBulkWriter struct {
	storage *memStorage
	table   store.Table
	pending [][2][]byte
}

func (w *memBulkWriter) Add(key, value []byte) error {
	w.pending = append(w.pending, [2][]byte{append([]byte{}, key...), append([]byte{}, value...)})
	return nil
}

func (w *memBulkWriter) Flush() error {
	for _, kv := range w.pending {
		w.storage.data[string(store.PrefixKey(w.table, kv[0]))] = kv[1]
	}
	return nil
}

type memTxn struct {
	storage  *memStorage
	writable bool
}

func (t *memTxn) Get(table store.Table, key []byte) ([]byte, error) {
	v, ok := t.storage.data[string(store.PrefixKey(table, key))]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (t *memTxn) Set(table store.Table, key, value []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	t.storage.data[string(store.PrefixKey(table, key))] = append([]byte{}, value...)
	return nil
}

func (t *memTxn) Delete(table store.Table, key []byte) error {
	if !t.writable {
		return store.ErrTransactionRO
	}
	delete(t.storage.data, string(store.PrefixKey(table, key)))
	return nil
}

func (t *memTxn) Scan(table store.Table, start, end []byte) (store.Iterator, error) {
	prefix := string(store.TablePrefix(table))
	var keys []string
	for k := range t.storage.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return &memIterator{txn: t, keys: keys, pos: -1}, nil
}

func (t *memTxn) Commit() error   { return nil }
func (t *memTxn) Rollback() error { return nil }

type memIterator struct {
	txn  *memTxn
	keys []string
	pos  int
}

func (it *memIterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *memIterator) Key() []byte {
	return []byte(it.keys[it.pos][1:])
}

func (it *memIterator) Value() ([]byte, error) {
	return it.txn.storage.data[it.keys[it.pos]], nil
}

func (it *memIterator) Close() error { return nil }

func countTable(t *testing.T, s *memStorage, table store.Table) int {
	t.Helper()
	txn, err := s.Begin(false)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer txn.Rollback()
	it, err := txn.Scan(table, nil, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	defer it.Close()
	n := 0
	for it.Next() {
		n++
	}
	return n
}

func TestWorkerCountFormula(t *testing.T) {
	cases := []struct {
		cores, override int
		memCap          int64
		want             int
	}{
		{cores: 1, want: 2},
		{cores: 8, want: 4},   // capped at 4 physical cores
		{cores: 8, override: 3, want: 3},
		{cores: 2, override: 10, want: 2}, // min(C, override)
		{cores: 4, memCap: 3_000_000, want: 3},
	}
	for _, c := range cases {
		got := bulk.WorkerCount(c.cores, c.override, c.memCap)
		if got != c.want {
			t.Errorf("WorkerCount(%d,%d,%d) = %d, want %d", c.cores, c.override, c.memCap, got, c.want)
		}
	}
}

func TestBatchSizeFormula(t *testing.T) {
	if got := bulk.BatchSize(0, 0, 4); got != bulk.DefaultBatch {
		t.Errorf("BatchSize with no hints = %d, want DefaultBatch", got)
	}
	if got := bulk.BatchSize(5_000_000, 0, 4); got != 5_000_000 {
		t.Errorf("BatchSize with override = %d, want 5000000", got)
	}
	if got := bulk.BatchSize(bulk.MaxBatch*2, 0, 4); got != bulk.MaxBatch {
		t.Errorf("BatchSize must cap at MaxBatch, got %d", got)
	}
}

func TestLoadDedupesAndEmitsRows(t *testing.T) {
	storage := newMemStorage()
	loader, err := bulk.NewLoader(bulk.Options{
		Storage:    storage,
		Encoder:    encoding.NewTermEncoder(),
		NumThreads: 2,
		BatchSize:  10,
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	quads := make(chan *rdf.Quad, 8)
	alice := rdf.NewNamedNode("http://example.org/alice")
	name := rdf.NewNamedNode("http://xmlns.com/foaf/0.1/name")
	quads <- rdf.NewQuad(alice, name, rdf.NewLiteral("Alice"), rdf.NewDefaultGraph())
	quads <- rdf.NewQuad(alice, name, rdf.NewLiteral("Alice"), rdf.NewDefaultGraph()) // duplicate
	quads <- rdf.NewQuad(
		rdf.NewNamedNode("http://example.org/bob"),
		name,
		rdf.NewLiteral("Bob"),
		rdf.NewNamedNode("http://example.org/graph1"),
	)
	close(quads)

	if err := loader.Load(context.Background(), quads); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if n := countTable(t, storage, store.TableSPO); n != 1 {
		t.Errorf("expected 1 deduped row in spo, got %d", n)
	}
	if n := countTable(t, storage, store.TablePOS); n != 1 {
		t.Errorf("expected 1 deduped row in pos, got %d", n)
	}
	for _, table := range []store.Table{store.TableSPOG, store.TablePOSG, store.TableOSPG, store.TableGSPO, store.TableGPOS, store.TableGOSP} {
		if n := countTable(t, storage, table); n != 1 {
			t.Errorf("expected 1 row in %s, got %d", table, n)
		}
	}
	if n := countTable(t, storage, store.TableGraphs); n != 1 {
		t.Errorf("expected 1 graphs entry, got %d", n)
	}
	if n := countTable(t, storage, store.TableID2Str); n == 0 {
		t.Error("expected id2str entries to be populated")
	}
}

func TestLoadValueSideVariantMarksAssertedEdges(t *testing.T) {
	dir := t.TempDir()
	taxPath := filepath.Join(dir, "taxonomy.nt")
	content := "" +
		"<http://example.org/a> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/b> .\n" +
		"<http://example.org/b> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/c> .\n"
	if err := os.WriteFile(taxPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write taxonomy file: %v", err)
	}

	storage := newMemStorage()
	loader, err := bulk.NewLoader(bulk.Options{
		Storage:      storage,
		Encoder:      encoding.NewTermEncoder(),
		NumThreads:   1,
		BatchSize:    10,
		Variant:      bulk.VariantValueSide,
		TaxonomyPath: taxPath,
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	a := rdf.NewNamedNode("http://example.org/a")
	b := rdf.NewNamedNode("http://example.org/b")
	c := rdf.NewNamedNode("http://example.org/c")
	subClassOf := rdf.NewNamedNode("http://www.w3.org/2000/01/rdf-schema#subClassOf")

	quads := make(chan *rdf.Quad, 2)
	quads <- rdf.NewQuad(a, subClassOf, b, rdf.NewDefaultGraph()) // directly asserted
	quads <- rdf.NewQuad(a, subClassOf, c, rdf.NewDefaultGraph()) // only transitively true
	close(quads)

	if err := loader.Load(context.Background(), quads); err != nil {
		t.Fatalf("Load: %v", err)
	}

	enc := encoding.NewTermEncoder()
	encA, _, _ := enc.EncodeTerm(a)
	encP, _, _ := enc.EncodeTerm(subClassOf)
	encB, _, _ := enc.EncodeTerm(b)
	encC, _, _ := enc.EncodeTerm(c)

	assertedKey := enc.EncodeQuadKey(encA, encP, encB)
	transitiveKey := enc.EncodeQuadKey(encA, encP, encC)

	assertedValue, ok := storage.data[string(store.PrefixKey(store.TableSPO, assertedKey))]
	if !ok {
		t.Fatal("expected the a-subClassOf-b row to be present")
	}
	if len(assertedValue) == 0 || assertedValue[0] != 50 {
		t.Errorf("expected a non-empty value with first byte 50, got %v", assertedValue)
	}

	transitiveValue, ok := storage.data[string(store.PrefixKey(store.TableSPO, transitiveKey))]
	if !ok {
		t.Fatal("expected the a-subClassOf-c row to be present")
	}
	if len(transitiveValue) != 0 {
		t.Errorf("expected an empty value for the non-asserted edge, got %v", transitiveValue)
	}
}

func TestLoadRejectsMixedVariant(t *testing.T) {
	dir := t.TempDir()
	taxPath := filepath.Join(dir, "taxonomy.nt")
	if err := os.WriteFile(taxPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write taxonomy file: %v", err)
	}

	storage := newMemStorage()
	first, err := bulk.NewLoader(bulk.Options{
		Storage: storage, Encoder: encoding.NewTermEncoder(),
		NumThreads: 1, BatchSize: 10,
		Variant: bulk.VariantValueSide, TaxonomyPath: taxPath,
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	q := make(chan *rdf.Quad)
	close(q)
	if err := first.Load(context.Background(), q); err != nil {
		t.Fatalf("first Load: %v", err)
	}

	second, err := bulk.NewLoader(bulk.Options{
		Storage: storage, Encoder: encoding.NewTermEncoder(),
		NumThreads: 1, BatchSize: 10,
		Variant: bulk.VariantKeySuffix, TaxonomyPath: taxPath,
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	q2 := make(chan *rdf.Quad)
	close(q2)
	if err := second.Load(context.Background(), q2); err == nil {
		t.Error("expected a mixed-variant load to fail")
	}
}
