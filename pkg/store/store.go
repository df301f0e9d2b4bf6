package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/latticedb/quadstore/pkg/rdf"
)

// versionKey is the TableDefault key holding the on-disk layout version,
// checked by Migrate/Validate. Its value is a big-endian uint64, matching
// the persisted layout's version field.
var versionKey = []byte("oxversion")

const currentVersion uint64 = 1

// Options configures Open.
type Options struct {
	Storage Storage
	Encoder TermEncoder
	Decoder TermDecoder
}

// TripleStore manages an RDF quad store over nine permutation indexes plus
// an id2str string table, reached solely through the Storage interface so
// the backing engine is swappable.
type TripleStore struct {
	storage Storage
	encoder TermEncoder
	decoder TermDecoder
}

// NewTripleStore wires a TripleStore over an already-open Storage and a
// matching encoder/decoder pair.
func NewTripleStore(storage Storage, encoder TermEncoder, decoder TermDecoder) *TripleStore {
	return &TripleStore{
		storage: storage,
		encoder: encoder,
		decoder: decoder,
	}
}

// Open wires a TripleStore from Options and stamps the schema version if
// the storage is freshly created.
func Open(opts Options) (*TripleStore, error) {
	s := NewTripleStore(opts.Storage, opts.Encoder, opts.Decoder)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying storage.
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// Snapshot returns a read-only transaction pinned to a consistent
// point-in-time view, for callers that want more than one Query without
// observing concurrent writes.
func (s *TripleStore) Snapshot() (Transaction, error) {
	return s.storage.Snapshot()
}

// Transaction runs f within a single writable transaction, committing on a
// nil return and rolling back otherwise.
func (s *TripleStore) Transaction(f func(txn Transaction) error) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() // #nosec G104 - commit error below is the one that matters

	if err := f(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// Flush forces buffered writes to stable storage.
func (s *TripleStore) Flush() error {
	return s.storage.Flush()
}

// Compact triggers a foreground compaction of the engine's on-disk files.
func (s *TripleStore) Compact() error {
	return s.storage.Compact()
}

// Backup writes a consistent copy of the store to path.
func (s *TripleStore) Backup(path string) error {
	return s.storage.Backup(path)
}

// Migrate reads the "oxversion" record under TableDefault. If absent, it
// writes the current version (1). If it reads 0 (a pre-graphs-CF layout),
// it performs a one-shot migration: collecting every distinct non-default
// graph name out of gspo and ingesting them into the graphs CF, then
// stamping version 1. Versions newer than currentVersion abort with
// ErrUnsupportedVersion.
func (s *TripleStore) Migrate() error {
	return s.Transaction(func(txn Transaction) error {
		raw, err := txn.Get(TableDefault, versionKey)
		if err == ErrNotFound {
			return setVersion(txn, currentVersion)
		}
		if err != nil {
			return err
		}

		version, err := decodeVersion(raw)
		if err != nil {
			return err
		}

		switch {
		case version == currentVersion:
			return nil
		case version == 0:
			if err := s.backfillGraphsFromGSPO(txn); err != nil {
				return err
			}
			return setVersion(txn, currentVersion)
		default:
			return fmt.Errorf("%w: on-disk version %d, expected %d", ErrUnsupportedVersion, version, currentVersion)
		}
	})
}

// backfillGraphsFromGSPO recovers the graphs CF for a layout written
// before it existed, by scanning gspo (graph-first) and taking every
// distinct leading graph term.
func (s *TripleStore) backfillGraphsFromGSPO(txn Transaction) error {
	it, err := txn.Scan(TableGSPO, nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	lookup := s.makeLookup(txn)
	seen := make(map[string]struct{})
	for it.Next() {
		key := it.Key()
		_, n, err := s.decoder.DecodeTerm(key, lookup)
		if err != nil {
			return fmt.Errorf("%w: gspo graph term: %v", ErrCorruption, err)
		}
		graphBytes := string(key[:n])
		if _, ok := seen[graphBytes]; ok {
			continue
		}
		seen[graphBytes] = struct{}{}
		if err := txn.Set(TableGraphs, key[:n], []byte{}); err != nil {
			return err
		}
	}
	return nil
}

func setVersion(txn Transaction, version uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], version)
	return txn.Set(TableDefault, versionKey, buf[:])
}

func decodeVersion(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: malformed oxversion record (%d bytes)", ErrCorruption, len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Validate recomputes row counts across the index groups of §3.3, checks
// that indexes which must always be written together for the same quad
// agree on entry count, and then probes every row of the primary index in
// each group for the corresponding rows in its sibling indexes — a key
// swapped in one permutation while the counts still balance would pass the
// count check alone but fail this probe.
func (s *TripleStore) Validate() error {
	txn, err := s.storage.Snapshot()
	if err != nil {
		return err
	}
	defer txn.Rollback() // #nosec G104 - read-only, nothing to commit

	raw, err := txn.Get(TableDefault, versionKey)
	if err != nil {
		return fmt.Errorf("reading oxversion: %w", err)
	}
	version, err := decodeVersion(raw)
	if err != nil {
		return err
	}
	if version != currentVersion {
		return fmt.Errorf("%w: on-disk version %d", ErrUnsupportedVersion, version)
	}

	defaultCounts := make(map[Table]int64, 3)
	for _, table := range []Table{TableSPO, TablePOS, TableOSP} {
		n, err := countTable(txn, table)
		if err != nil {
			return err
		}
		defaultCounts[table] = n
	}
	if defaultCounts[TableSPO] != defaultCounts[TablePOS] || defaultCounts[TablePOS] != defaultCounts[TableOSP] {
		return fmt.Errorf("%w: default-graph index row counts disagree: spo=%d pos=%d osp=%d",
			ErrCorruption, defaultCounts[TableSPO], defaultCounts[TablePOS], defaultCounts[TableOSP])
	}

	namedCounts := make(map[Table]int64, 6)
	for _, table := range []Table{TableSPOG, TablePOSG, TableOSPG, TableGSPO, TableGPOS, TableGOSP} {
		n, err := countTable(txn, table)
		if err != nil {
			return err
		}
		namedCounts[table] = n
	}
	for _, table := range []Table{TablePOSG, TableOSPG, TableGSPO, TableGPOS, TableGOSP} {
		if namedCounts[table] != namedCounts[TableSPOG] {
			return fmt.Errorf("%w: named-graph index row counts disagree: %s=%d spog=%d",
				ErrCorruption, table, namedCounts[table], namedCounts[TableSPOG])
		}
	}

	if err := s.probeDefaultGraphMembership(txn); err != nil {
		return err
	}
	if err := s.probeNamedGraphMembership(txn); err != nil {
		return err
	}

	return nil
}

// probeDefaultGraphMembership walks every spo row, decodes its (s, p, o)
// terms, and checks the matching pos/osp rows exist.
func (s *TripleStore) probeDefaultGraphMembership(txn Transaction) error {
	lookup := s.makeLookup(txn)

	it, err := txn.Scan(TableSPO, nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		subj, pred, obj, _, err := s.decodeTriple(it.Key(), lookup)
		if err != nil {
			return err
		}
		triple := rdf.NewTriple(subj, pred, obj)

		subjEnc, _, err := s.encoder.EncodeTerm(subj)
		if err != nil {
			return err
		}
		predEnc, _, err := s.encoder.EncodeTerm(pred)
		if err != nil {
			return err
		}
		objEnc, _, err := s.encoder.EncodeTerm(obj)
		if err != nil {
			return err
		}

		posKey := s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc)
		if _, err := txn.Get(TablePOS, posKey); err != nil {
			return fmt.Errorf("%w: %s present in spo but missing from pos", ErrCorruption, triple)
		}
		ospKey := s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc)
		if _, err := txn.Get(TableOSP, ospKey); err != nil {
			return fmt.Errorf("%w: %s present in spo but missing from osp", ErrCorruption, triple)
		}
	}
	return nil
}

// probeNamedGraphMembership walks every spog row, decodes its (s, p, o, g)
// terms, and checks the matching posg/ospg/gspo/gpos/gosp rows exist.
func (s *TripleStore) probeNamedGraphMembership(txn Transaction) error {
	lookup := s.makeLookup(txn)

	it, err := txn.Scan(TableSPOG, nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		subj, pred, obj, graph, err := s.decodeQuad(it.Key(), lookup)
		if err != nil {
			return err
		}
		quad := rdf.NewQuad(subj, pred, obj, graph)

		subjEnc, _, err := s.encoder.EncodeTerm(subj)
		if err != nil {
			return err
		}
		predEnc, _, err := s.encoder.EncodeTerm(pred)
		if err != nil {
			return err
		}
		objEnc, _, err := s.encoder.EncodeTerm(obj)
		if err != nil {
			return err
		}
		graphEnc, _, err := s.encoder.EncodeTerm(graph)
		if err != nil {
			return err
		}

		siblings := []struct {
			table Table
			key   []byte
		}{
			{TablePOSG, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc)},
			{TableOSPG, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc)},
			{TableGSPO, s.encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc)},
			{TableGPOS, s.encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc)},
			{TableGOSP, s.encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc)},
		}
		for _, sib := range siblings {
			if _, err := txn.Get(sib.table, sib.key); err != nil {
				return fmt.Errorf("%w: %s present in spog but missing from %s", ErrCorruption, quad, sib.table)
			}
		}
	}
	return nil
}

// decodeTriple decodes three concatenated terms (an spo-order key) into
// subject, predicate, object, and reports the total bytes consumed so a
// caller decoding a longer key (spog-order) can continue past them.
func (s *TripleStore) decodeTriple(key []byte, lookup StringLookup) (subj, pred, obj rdf.Term, consumed int, err error) {
	subj, n, err := s.decoder.DecodeTerm(key, lookup)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("%w: spo key subject: %v", ErrCorruption, err)
	}
	total := n
	pred, n, err = s.decoder.DecodeTerm(key[total:], lookup)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("%w: spo key predicate: %v", ErrCorruption, err)
	}
	total += n
	obj, n, err = s.decoder.DecodeTerm(key[total:], lookup)
	if err != nil {
		return nil, nil, nil, 0, fmt.Errorf("%w: spo key object: %v", ErrCorruption, err)
	}
	total += n
	return subj, pred, obj, total, nil
}

// decodeQuad decodes four concatenated terms (an spog-order key) into
// subject, predicate, object, graph.
func (s *TripleStore) decodeQuad(key []byte, lookup StringLookup) (subj, pred, obj, graph rdf.Term, err error) {
	subj, pred, obj, n, err := s.decodeTriple(key, lookup)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	graph, _, err = s.decoder.DecodeTerm(key[n:], lookup)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("%w: spog key graph: %v", ErrCorruption, err)
	}
	return subj, pred, obj, graph, nil
}

func countTable(txn Transaction, table Table) (int64, error) {
	it, err := txn.Scan(table, nil, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var count int64
	for it.Next() {
		count++
	}
	return count, nil
}

// InsertQuad inserts a single quad into the store, reporting whether it
// was new (false means the quad was already present and no index was
// touched).
func (s *TripleStore) InsertQuad(quad *rdf.Quad) (bool, error) {
	var isNew bool
	err := s.Transaction(func(txn Transaction) error {
		var err error
		isNew, err = s.insertQuadInTxn(txn, quad)
		return err
	})
	return isNew, err
}

// InsertTriple inserts a triple into the default graph.
func (s *TripleStore) InsertTriple(triple *rdf.Triple) (bool, error) {
	return s.InsertQuad(&rdf.Quad{
		Subject:   triple.Subject,
		Predicate: triple.Predicate,
		Object:    triple.Object,
		Graph:     rdf.NewDefaultGraph(),
	})
}

// InsertQuadsBatch inserts many quads atomically within a single
// transaction.
func (s *TripleStore) InsertQuadsBatch(quads []*rdf.Quad) error {
	return s.Transaction(func(txn Transaction) error {
		for _, q := range quads {
			if _, err := s.insertQuadInTxn(txn, q); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertQuadInTxn writes a quad's index entries within an existing
// transaction, reporting whether the quad was new. A default-graph quad is
// written only to the three default-graph indexes (SPO/POS/OSP); a
// named-graph quad is written only to the six named-graph indexes
// (SPOG/POSG/OSPG/GSPO/GPOS/GOSP) plus the graphs table. The default graph
// has no wire encoding, so it never reaches EncodeTerm.
func (s *TripleStore) insertQuadInTxn(txn Transaction, quad *rdf.Quad) (bool, error) {
	subjEnc, subjStr, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return false, fmt.Errorf("failed to encode subject: %w", err)
	}
	predEnc, predStr, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return false, fmt.Errorf("failed to encode predicate: %w", err)
	}
	objEnc, objStr, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return false, fmt.Errorf("failed to encode object: %w", err)
	}

	isDefault := classifyGraph(quad.Graph) == graphModeDefault

	var primaryKey []byte
	var primaryTable Table
	if isDefault {
		primaryTable, primaryKey = TableSPO, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc)
	} else {
		primaryTable = TableSPOG
	}

	if isDefault {
		if _, err := txn.Get(primaryTable, primaryKey); err == nil {
			return false, nil
		} else if err != ErrNotFound {
			return false, err
		}
	}

	if err := s.storeStrings(txn, subjStr); err != nil {
		return false, err
	}
	if err := s.storeStrings(txn, predStr); err != nil {
		return false, err
	}
	if err := s.storeStrings(txn, objStr); err != nil {
		return false, err
	}

	emptyValue := []byte{}

	if isDefault {
		if err := txn.Set(TableSPO, primaryKey, emptyValue); err != nil {
			return false, err
		}
		if err := txn.Set(TablePOS, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc), emptyValue); err != nil {
			return false, err
		}
		if err := txn.Set(TableOSP, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc), emptyValue); err != nil {
			return false, err
		}
		return true, nil
	}

	graphEnc, graphStr, err := s.encoder.EncodeTerm(quad.Graph)
	if err != nil {
		return false, fmt.Errorf("failed to encode graph: %w", err)
	}

	primaryKey = s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc)
	if _, err := txn.Get(primaryTable, primaryKey); err == nil {
		return false, nil
	} else if err != ErrNotFound {
		return false, err
	}

	if err := s.storeStrings(txn, graphStr); err != nil {
		return false, err
	}

	if err := txn.Set(TableSPOG, primaryKey, emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TablePOSG, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableOSPG, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableGSPO, s.encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableGPOS, s.encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableGOSP, s.encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc), emptyValue); err != nil {
		return false, err
	}
	if err := txn.Set(TableGraphs, graphEnc[:], emptyValue); err != nil {
		return false, err
	}
	return true, nil
}

// storeStrings materializes each id2str entry, skipping the write when the
// current value already matches (keeps repeated inserts of the same IRI or
// literal cheap).
func (s *TripleStore) storeStrings(txn Transaction, entries []StringEntry) error {
	for _, e := range entries {
		key := e.Hash[:]
		value := []byte(e.Value)

		existing, err := txn.Get(TableID2Str, key)
		if err == nil && bytes.Equal(existing, value) {
			continue
		}
		if err != nil && err != ErrNotFound {
			return err
		}
		if err := txn.Set(TableID2Str, key, value); err != nil {
			return err
		}
	}
	return nil
}

// DeleteQuad removes a single quad from the store.
func (s *TripleStore) DeleteQuad(quad *rdf.Quad) error {
	return s.Transaction(func(txn Transaction) error {
		return s.deleteQuadInTxn(txn, quad)
	})
}

// DeleteTriple removes a triple from the default graph.
func (s *TripleStore) DeleteTriple(triple *rdf.Triple) error {
	return s.DeleteQuad(&rdf.Quad{
		Subject:   triple.Subject,
		Predicate: triple.Predicate,
		Object:    triple.Object,
		Graph:     rdf.NewDefaultGraph(),
	})
}

// DeleteQuadsBatch removes many quads atomically within a single
// transaction.
func (s *TripleStore) DeleteQuadsBatch(quads []*rdf.Quad) error {
	return s.Transaction(func(txn Transaction) error {
		for _, q := range quads {
			if err := s.deleteQuadInTxn(txn, q); err != nil {
				return err
			}
		}
		return nil
	})
}

// deleteQuadInTxn mirrors insertQuadInTxn's index selection exactly so a
// quad's full footprint is always removed together. It does not reclaim
// id2str entries or graphs-table rows, since either may still be
// referenced by other quads; there is no garbage collection.
func (s *TripleStore) deleteQuadInTxn(txn Transaction, quad *rdf.Quad) error {
	subjEnc, _, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return fmt.Errorf("failed to encode subject: %w", err)
	}
	predEnc, _, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return fmt.Errorf("failed to encode predicate: %w", err)
	}
	objEnc, _, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}

	if classifyGraph(quad.Graph) == graphModeDefault {
		if err := txn.Delete(TableSPO, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc)); err != nil {
			return err
		}
		if err := txn.Delete(TablePOS, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc)); err != nil {
			return err
		}
		return txn.Delete(TableOSP, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc))
	}

	graphEnc, _, err := s.encoder.EncodeTerm(quad.Graph)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}

	if err := txn.Delete(TableSPOG, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TablePOSG, s.encoder.EncodeQuadKey(predEnc, objEnc, subjEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableOSPG, s.encoder.EncodeQuadKey(objEnc, subjEnc, predEnc, graphEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableGSPO, s.encoder.EncodeQuadKey(graphEnc, subjEnc, predEnc, objEnc)); err != nil {
		return err
	}
	if err := txn.Delete(TableGPOS, s.encoder.EncodeQuadKey(graphEnc, predEnc, objEnc, subjEnc)); err != nil {
		return err
	}
	return txn.Delete(TableGOSP, s.encoder.EncodeQuadKey(graphEnc, objEnc, subjEnc, predEnc))
}

// ContainsQuad reports whether a quad is present in the store.
func (s *TripleStore) ContainsQuad(quad *rdf.Quad) (bool, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer txn.Rollback() // #nosec G104 - read-only, nothing to commit

	subjEnc, _, err := s.encoder.EncodeTerm(quad.Subject)
	if err != nil {
		return false, err
	}
	predEnc, _, err := s.encoder.EncodeTerm(quad.Predicate)
	if err != nil {
		return false, err
	}
	objEnc, _, err := s.encoder.EncodeTerm(quad.Object)
	if err != nil {
		return false, err
	}

	var key []byte
	var table Table
	if classifyGraph(quad.Graph) == graphModeDefault {
		table, key = TableSPO, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc)
	} else {
		graphEnc, _, err := s.encoder.EncodeTerm(quad.Graph)
		if err != nil {
			return false, err
		}
		table, key = TableSPOG, s.encoder.EncodeQuadKey(subjEnc, predEnc, objEnc, graphEnc)
	}

	_, err = txn.Get(table, key)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the number of quads in the store: entries in the
// default-graph index plus entries in the named-graph index, since a quad
// lives in exactly one of the two spaces.
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback() // #nosec G104 - read-only, nothing to commit

	var count int64
	for _, table := range []Table{TableSPO, TableSPOG} {
		n, err := countTable(txn, table)
		if err != nil {
			return 0, err
		}
		count += n
	}

	return count, nil
}

// ClearGraph removes every quad in one named graph.
func (s *TripleStore) ClearGraph(graph rdf.Term) error {
	quads, err := s.collectGraph(graph)
	if err != nil {
		return err
	}
	return s.DeleteQuadsBatch(quads)
}

// RemoveNamedGraph clears every quad in graph, like ClearGraph, and also
// removes graph's entry from the graphs table — unlike a plain DeleteQuad,
// after this call the graph is gone until something is inserted into it
// again.
func (s *TripleStore) RemoveNamedGraph(graph rdf.Term) error {
	if err := s.ClearGraph(graph); err != nil {
		return err
	}
	graphEnc, _, err := s.encoder.EncodeTerm(graph)
	if err != nil {
		return fmt.Errorf("failed to encode graph: %w", err)
	}
	return s.Transaction(func(txn Transaction) error {
		return txn.Delete(TableGraphs, graphEnc)
	})
}

// ClearAllNamedGraphs removes every quad in every named graph, leaving the
// default graph untouched, but leaves every graph name recorded in the
// graphs table.
func (s *TripleStore) ClearAllNamedGraphs() error {
	graphs, err := s.listNamedGraphs()
	if err != nil {
		return err
	}
	for _, g := range graphs {
		if err := s.ClearGraph(g); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllNamedGraphs applies RemoveNamedGraph to every graph recorded in
// the graphs table, so none of them remain afterward.
func (s *TripleStore) RemoveAllNamedGraphs() error {
	graphs, err := s.listNamedGraphs()
	if err != nil {
		return err
	}
	for _, g := range graphs {
		if err := s.RemoveNamedGraph(g); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll removes every quad in the store, default graph included.
func (s *TripleStore) ClearAll() error {
	if err := s.ClearAllNamedGraphs(); err != nil {
		return err
	}
	quads, err := s.collectDefaultGraph()
	if err != nil {
		return err
	}
	return s.DeleteQuadsBatch(quads)
}

func (s *TripleStore) collectGraph(graph rdf.Term) ([]*rdf.Quad, error) {
	iter, err := s.Query(&Pattern{
		Subject:   NewVariable("s"),
		Predicate: NewVariable("p"),
		Object:    NewVariable("o"),
		Graph:     graph,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	return drainQuads(iter)
}

func (s *TripleStore) collectDefaultGraph() ([]*rdf.Quad, error) {
	iter, err := s.Query(&Pattern{
		Subject:   NewVariable("s"),
		Predicate: NewVariable("p"),
		Object:    NewVariable("o"),
		Graph:     rdf.NewDefaultGraph(),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	return drainQuads(iter)
}

func drainQuads(iter QuadIterator) ([]*rdf.Quad, error) {
	var quads []*rdf.Quad
	for iter.Next() {
		q, err := iter.Quad()
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
	return quads, nil
}

// listNamedGraphs returns every graph IRI/blank node recorded in the
// graphs table.
func (s *TripleStore) listNamedGraphs() ([]rdf.Term, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback() // #nosec G104 - read-only, nothing to commit

	it, err := txn.Scan(TableGraphs, nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	lookup := s.makeLookup(txn)
	var graphs []rdf.Term
	for it.Next() {
		term, _, err := s.decoder.DecodeTerm(it.Key(), lookup)
		if err != nil {
			return nil, fmt.Errorf("%w: graphs table entry: %v", ErrCorruption, err)
		}
		graphs = append(graphs, term)
	}
	return graphs, nil
}
