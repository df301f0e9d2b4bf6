package store

import (
	"fmt"
	"unicode/utf8"

	"github.com/latticedb/quadstore/pkg/rdf"
)

// Pattern represents a triple or quad pattern with optional variables.
type Pattern struct {
	Subject   any // rdf.Term or *Variable
	Predicate any // rdf.Term or *Variable
	Object    any // rdf.Term or *Variable
	// Graph selects which graph(s) to match:
	//   nil or *rdf.DefaultGraph -> default graph only
	//   a concrete rdf.Term      -> that one named graph
	//   *Variable                -> any graph, named or default (union scan)
	Graph any
}

// Variable represents a pattern variable.
type Variable struct {
	Name string
}

// NewVariable creates a new variable.
func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) String() string {
	return "?" + v.Name
}

// Binding represents a variable binding.
type Binding struct {
	Vars   map[string]rdf.Term
	values map[string]EncodedTerm // internal encoded values
}

// NewBinding creates a new empty binding.
func NewBinding() *Binding {
	return &Binding{
		Vars:   make(map[string]rdf.Term),
		values: make(map[string]EncodedTerm),
	}
}

// Clone creates a copy of the binding.
func (b *Binding) Clone() *Binding {
	newBinding := NewBinding()
	for k, v := range b.Vars {
		newBinding.Vars[k] = v
	}
	for k, v := range b.values {
		newBinding.values[k] = v
	}
	return newBinding
}

// QuadIterator iterates over quads matching a pattern.
type QuadIterator interface {
	Next() bool
	Quad() (*rdf.Quad, error)
	Close() error
}

// BindingIterator iterates over variable bindings.
type BindingIterator interface {
	Next() bool
	Binding() *Binding
	Close() error
}

type graphMode int

const (
	graphModeDefault graphMode = iota // match default graph only
	graphModeBound                    // match one specific named graph
	graphModeAny                      // match any graph, named or default
)

func classifyGraph(g any) graphMode {
	if g == nil {
		return graphModeDefault
	}
	if _, ok := g.(*rdf.DefaultGraph); ok {
		return graphModeDefault
	}
	if _, ok := g.(*Variable); ok {
		return graphModeAny
	}
	return graphModeBound
}

// Query executes a pattern match and returns matching quads.
func (s *TripleStore) Query(pattern *Pattern) (QuadIterator, error) {
	switch classifyGraph(pattern.Graph) {
	case graphModeAny:
		defaultIt, err := s.scan(pattern, false)
		if err != nil {
			return nil, err
		}
		namedIt, err := s.scan(pattern, true)
		if err != nil {
			_ = defaultIt.Close() // #nosec G104
			return nil, err
		}
		return &unionQuadIterator{iters: []QuadIterator{defaultIt, namedIt}}, nil
	case graphModeBound:
		return s.scan(pattern, true)
	default:
		return s.scan(pattern, false)
	}
}

// scan runs a single-index scan, either over the default-graph space
// (named=false) or the named-graph space (named=true).
func (s *TripleStore) scan(pattern *Pattern, named bool) (QuadIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}

	table, keyPattern := s.selectIndex(pattern, named)

	prefix, err := s.buildScanPrefix(pattern, keyPattern, named)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	it, err := txn.Scan(table, prefix, nil)
	if err != nil {
		_ = txn.Rollback() // #nosec G104 - rollback error less important than original error
		return nil, err
	}

	return &quadIterator{
		store:      s,
		txn:        txn,
		it:         it,
		keyPattern: keyPattern,
		named:      named,
	}, nil
}

// selectIndex chooses the best index for the bound positions of pattern,
// within either the named-graph space or the default-graph space. Key
// order is expressed as a permutation over S=0, P=1, O=2, G=3.
func (s *TripleStore) selectIndex(pattern *Pattern, named bool) (Table, []int) {
	sBound := !isVariable(pattern.Subject)
	pBound := !isVariable(pattern.Predicate)
	oBound := !isVariable(pattern.Object)

	if !named {
		switch {
		case sBound && pBound:
			return TableSPO, []int{0, 1, 2}
		case pBound && oBound:
			return TablePOS, []int{1, 2, 0}
		case oBound && sBound:
			return TableOSP, []int{2, 0, 1}
		case sBound:
			return TableSPO, []int{0, 1, 2}
		case pBound:
			return TablePOS, []int{1, 2, 0}
		case oBound:
			return TableOSP, []int{2, 0, 1}
		default:
			return TableSPO, []int{0, 1, 2}
		}
	}

	gBound := classifyGraph(pattern.Graph) == graphModeBound

	if gBound {
		switch {
		case sBound && pBound:
			return TableGSPO, []int{3, 0, 1, 2}
		case pBound && oBound:
			return TableGPOS, []int{3, 1, 2, 0}
		case oBound && sBound:
			return TableGOSP, []int{3, 2, 0, 1}
		case sBound:
			return TableGSPO, []int{3, 0, 1, 2}
		case pBound:
			return TableGPOS, []int{3, 1, 2, 0}
		case oBound:
			return TableGOSP, []int{3, 2, 0, 1}
		default:
			return TableGSPO, []int{3, 0, 1, 2}
		}
	}

	// Graph unbound within the named-graph space (union-scan branch):
	// a graph-first index gives no benefit, so rank by S/P/O like the
	// default-graph space does.
	switch {
	case sBound && pBound:
		return TableSPOG, []int{0, 1, 2, 3}
	case pBound && oBound:
		return TablePOSG, []int{1, 2, 0, 3}
	case oBound && sBound:
		return TableOSPG, []int{2, 0, 1, 3}
	case sBound:
		return TableSPOG, []int{0, 1, 2, 3}
	case pBound:
		return TablePOSG, []int{1, 2, 0, 3}
	case oBound:
		return TableOSPG, []int{2, 0, 1, 3}
	default:
		return TableSPOG, []int{0, 1, 2, 3}
	}
}

// buildScanPrefix builds a key prefix for scanning based on bound positions.
func (s *TripleStore) buildScanPrefix(pattern *Pattern, keyPattern []int, named bool) ([]byte, error) {
	// Map pattern positions: 0=S, 1=P, 2=O, 3=G.
	positions := make([]any, 4)
	positions[0] = pattern.Subject
	positions[1] = pattern.Predicate
	positions[2] = pattern.Object
	if named {
		positions[3] = pattern.Graph
	}

	var prefix []byte
	for _, idx := range keyPattern {
		if idx >= len(positions) {
			break
		}

		term := positions[idx]
		if term == nil || isVariable(term) {
			// Stop at the first unbound position.
			break
		}

		encoded, _, err := s.encoder.EncodeTerm(term.(rdf.Term))
		if err != nil {
			return nil, err
		}

		prefix = append(prefix, encoded...)
	}

	return prefix, nil
}

// isVariable checks if a value is a pattern variable.
func isVariable(v any) bool {
	_, ok := v.(*Variable)
	return ok
}

// unionQuadIterator chains several QuadIterators end to end.
type unionQuadIterator struct {
	iters []QuadIterator
	cur   int
}

func (u *unionQuadIterator) Next() bool {
	for u.cur < len(u.iters) {
		if u.iters[u.cur].Next() {
			return true
		}
		u.cur++
	}
	return false
}

func (u *unionQuadIterator) Quad() (*rdf.Quad, error) {
	if u.cur >= len(u.iters) {
		return nil, fmt.Errorf("iterator exhausted")
	}
	return u.iters[u.cur].Quad()
}

func (u *unionQuadIterator) Close() error {
	var first error
	for _, it := range u.iters {
		if err := it.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// quadIterator implements QuadIterator over a single index scan.
type quadIterator struct {
	store      *TripleStore
	txn        Transaction
	it         Iterator
	keyPattern []int
	named      bool
	closed     bool
}

func (qi *quadIterator) Next() bool {
	if qi.closed {
		return false
	}
	return qi.it.Next()
}

func (qi *quadIterator) Quad() (*rdf.Quad, error) {
	if qi.closed {
		return nil, fmt.Errorf("iterator closed")
	}

	key := qi.it.Key()
	if key == nil {
		return nil, fmt.Errorf("no current key")
	}

	lookup := qi.store.makeLookup(qi.txn)

	terms := make([]rdf.Term, len(qi.keyPattern))
	rest := key
	for i := range qi.keyPattern {
		term, n, err := qi.store.decoder.DecodeTerm(rest, lookup)
		if err != nil {
			return nil, fmt.Errorf("decode term at key position %d: %w", i, err)
		}
		terms[i] = term
		rest = rest[n:]
	}

	positions := make([]rdf.Term, 4)
	for i, idx := range qi.keyPattern {
		positions[idx] = terms[i]
	}

	graph := positions[3]
	if !qi.named || graph == nil {
		graph = rdf.NewDefaultGraph()
	}

	return &rdf.Quad{
		Subject:   positions[0],
		Predicate: positions[1],
		Object:    positions[2],
		Graph:     graph,
	}, nil
}

func (qi *quadIterator) Close() error {
	if qi.closed {
		return nil
	}
	qi.closed = true
	_ = qi.it.Close() // #nosec G104 - iterator close error less critical than transaction rollback error
	return qi.txn.Rollback()
}

// makeLookup binds a transaction into a StringLookup closure for decoding.
func (s *TripleStore) makeLookup(txn Transaction) StringLookup {
	return func(hash [16]byte) (string, error) {
		val, err := txn.Get(TableID2Str, hash[:])
		if err != nil {
			return "", err
		}
		if !utf8.Valid(val) {
			return "", fmt.Errorf("%w: id2str value is not valid UTF-8", ErrCorruption)
		}
		return string(val), nil
	}
}
