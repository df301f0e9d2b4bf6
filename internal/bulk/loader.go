// Package bulk implements the parallel bulk loader (§4.5): it dedupes and
// groups incoming quads in memory, fans batches out across a bounded
// worker pool, and hands each worker's pre-sorted rows to the engine one
// column family at a time. Grounded on dolthub/dolt's NBS table writer,
// the closest real-world analogue in the example pack to "batch records,
// hand batches to worker goroutines bounded by an errgroup.Group, flush
// one sorted table per batch".
package bulk

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/latticedb/quadstore/internal/taxonomy"
	"github.com/latticedb/quadstore/pkg/rdf"
	"github.com/latticedb/quadstore/pkg/store"
)

// variantMarkerKey returns the TableDefault key recording which interval
// variant, if any, has been used for table so far.
func variantMarkerKey(table store.Table) []byte {
	return []byte(fmt.Sprintf("bulk_variant:%d", table))
}

// defaultGraphTables are the only tables an interval hint is ever attached
// to (§4.2).
var defaultGraphTables = []store.Table{store.TableSPO, store.TablePOS, store.TableOSP}

// Options configures a Loader.
type Options struct {
	Storage    store.Storage
	Encoder    store.TermEncoder
	NumThreads int   // 0 selects WorkerCount(runtime.NumCPU(), 0, 0)
	BatchSize  int64 // 0 selects BatchSize(0, 0, NumThreads)

	// Variant selects the interval-encoding sidecar placement for
	// default-graph rows. VariantNone (the zero value) disables it.
	Variant Variant
	// TaxonomyPath is required when Variant != VariantNone: the input
	// file streamed to build the class and property trees (§6).
	TaxonomyPath            string
	ExtraSubClassPredicates []string

	// ProgressHooks are invoked with the running row total every time
	// it crosses a DefaultBatch boundary.
	ProgressHooks []func(totalRows int64)
}

// Loader runs one bulk load: accumulating quads into batches, dispatching
// full batches to a bounded worker pool, and emitting each batch's rows
// into the engine through store.Storage's BulkWriter.
type Loader struct {
	storage    store.Storage
	encoder    store.TermEncoder
	numThreads int
	batchSize  int64

	variant             Variant
	classes, properties *taxonomy.Tree

	hooks    []func(totalRows int64)
	progress int64

	hookMu sync.Mutex
}

// NewLoader builds a Loader. When opts.Variant != VariantNone it streams
// opts.TaxonomyPath once, up front, to build both taxonomy trees — they
// are then shared read-only across every worker for the rest of the load.
func NewLoader(opts Options) (*Loader, error) {
	threads := opts.NumThreads
	if threads <= 0 {
		threads = WorkerCount(runtime.NumCPU(), 0, 0)
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = BatchSize(0, 0, threads)
	}

	l := &Loader{
		storage:    opts.Storage,
		encoder:    opts.Encoder,
		numThreads: threads,
		batchSize:  batchSize,
		variant:    opts.Variant,
		hooks:      opts.ProgressHooks,
	}

	if opts.Variant != VariantNone {
		classes, properties, err := taxonomy.BuildTrees(opts.TaxonomyPath, taxonomy.Config{
			ExtraSubClassPredicates: opts.ExtraSubClassPredicates,
		})
		if err != nil {
			return nil, fmt.Errorf("building taxonomy trees: %w", err)
		}
		l.classes, l.properties = classes, properties
	}

	return l, nil
}

// Progress returns the number of rows emitted so far across all tables.
func (l *Loader) Progress() int64 {
	return atomic.LoadInt64(&l.progress)
}

// Load streams quads, batching and dispatching them to workers, and
// returns once every batch (including the final partial one) has been
// flushed. The first worker error aborts the remaining load; already
// flushed batches are left in place, since re-loading is idempotent by
// content (dedup is by encoded key).
func (l *Loader) Load(ctx context.Context, quads <-chan *rdf.Quad) error {
	if l.variant != VariantNone {
		if err := l.claimVariant(); err != nil {
			return err
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, l.numThreads)

	current := newBatch()
	for {
		select {
		case <-egCtx.Done():
			return eg.Wait()
		case q, ok := <-quads:
			if !ok {
				if current.n > 0 {
					l.dispatch(eg, sem, current)
				}
				return eg.Wait()
			}
			if err := current.add(l.encoder, q, l.variant, l.classes, l.properties); err != nil {
				return fmt.Errorf("bulk: %w", err)
			}
			if current.n >= l.batchSize {
				l.dispatch(eg, sem, current)
				current = newBatch()
			}
		}
	}
}

// dispatch hands a full batch to a worker goroutine, blocking first while
// numThreads workers are already outstanding; a slot frees up as soon as
// any one of them finishes, not necessarily the oldest.
func (l *Loader) dispatch(eg *errgroup.Group, sem chan struct{}, b *batch) {
	sem <- struct{}{}
	eg.Go(func() error {
		defer func() { <-sem }()
		return l.flush(b)
	})
}

// claimVariant checks (or, on first use, records) the interval variant for
// every default-graph table against what this load is requesting.
func (l *Loader) claimVariant() error {
	txn, err := l.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() // #nosec G104 - commit below is the one that matters

	for _, table := range defaultGraphTables {
		key := variantMarkerKey(table)
		raw, err := txn.Get(store.TableDefault, key)
		if err == store.ErrNotFound {
			if err := txn.Set(store.TableDefault, key, []byte{byte(l.variant)}); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		if len(raw) != 1 || Variant(raw[0]) != l.variant {
			return fmt.Errorf("%w: table %s", store.ErrMixedIntervalVariant, table)
		}
	}
	return txn.Commit()
}

// flush sorts and emits one batch's rows, one BulkWriter per column
// family, then records the rows emitted against the progress counter and
// fires any hooks whose DefaultBatch boundary was crossed.
func (l *Loader) flush(b *batch) error {
	var emitted int64

	for table, rows := range b.rows {
		n, err := l.flushTable(table, rows)
		if err != nil {
			return err
		}
		emitted += n
	}
	if len(b.graphs) > 0 {
		n, err := l.flushTable(store.TableGraphs, b.graphs)
		if err != nil {
			return err
		}
		emitted += n
	}
	if len(b.strings) > 0 {
		n, err := l.flushStrings(b.strings)
		if err != nil {
			return err
		}
		emitted += n
	}

	l.recordProgress(emitted)
	return nil
}

func (l *Loader) flushTable(table store.Table, rows map[string][]byte) (int64, error) {
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw, err := l.storage.BulkWriter(table)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := bw.Add([]byte(k), rows[k]); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (l *Loader) flushStrings(strings map[[16]byte]string) (int64, error) {
	keys := make([][16]byte, 0, len(strings))
	for h := range strings {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(i, j int) bool {
		return string(keys[i][:]) < string(keys[j][:])
	})

	bw, err := l.storage.BulkWriter(store.TableID2Str)
	if err != nil {
		return 0, err
	}
	for _, h := range keys {
		if err := bw.Add(h[:], []byte(strings[h])); err != nil {
			return 0, err
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return int64(len(keys)), nil
}

func (l *Loader) recordProgress(delta int64) {
	if delta == 0 || len(l.hooks) == 0 {
		atomic.AddInt64(&l.progress, delta)
		return
	}

	l.hookMu.Lock()
	defer l.hookMu.Unlock()

	before := atomic.LoadInt64(&l.progress)
	after := before + delta
	atomic.StoreInt64(&l.progress, after)

	if before/DefaultBatch != after/DefaultBatch {
		for _, h := range l.hooks {
			h(after)
		}
	}
}
