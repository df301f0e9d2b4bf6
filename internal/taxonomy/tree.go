// Package taxonomy builds the interval-labeled class/property trees used by
// the bulk loader's interval-encoding variants (§3.4, §4.2). A tree is a
// multi-parent DAG of IRIs: a node may be reached through more than one
// parent, and each distinct parent path gives the node its own
// (start, end, layer) interval.
package taxonomy

import "sort"

// Interval is one pre/post/layer label produced by a single DFS path through
// a node. Parent is the IRI of the node this interval was labeled under; it
// is empty for the interval produced at a root.
type Interval struct {
	Start, End int64
	Layer      uint16
	Parent     string
}

// node lives in the Tree's arena; parents and children are back-pointers
// into that same arena, never owned copies, so a multi-parent DAG never
// duplicates a node.
type node struct {
	iri       string
	parents   []*node
	children  []*node
	intervals []Interval
}

// Tree is a multi-parent tree (really a DAG) of IRIs, arena-backed by the
// nodes map. Construct with NewTree, add edges with AddEdge, then call
// Label once before querying intervals or containment.
type Tree struct {
	nodes map[string]*node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

func (t *Tree) getOrCreate(iri string) *node {
	n, ok := t.nodes[iri]
	if !ok {
		n = &node{iri: iri}
		t.nodes[iri] = n
	}
	return n
}

// AddEdge records that child is directly subsumed by parent (e.g. child
// rdfs:subClassOf parent). A child may accumulate several parents; a parent
// may accumulate several children.
func (t *Tree) AddEdge(child, parent string) {
	c := t.getOrCreate(child)
	p := t.getOrCreate(parent)
	c.parents = append(c.parents, p)
	p.children = append(p.children, c)
}

// Label assigns pre/post/layer intervals to every node by depth-first
// traversal from each root (a node with no parents). A node reachable
// through multiple parents is visited once per path and accumulates one
// interval per visit. Traversal order among siblings and among roots is by
// IRI, so labeling is deterministic across runs.
func (t *Tree) Label() {
	var counter int64

	roots := make([]*node, 0)
	for _, n := range t.nodes {
		n.intervals = nil
		if len(n.parents) == 0 {
			roots = append(roots, n)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].iri < roots[j].iri })

	var visit func(n *node, via string, layer uint16)
	visit = func(n *node, via string, layer uint16) {
		start := counter
		counter++

		children := append([]*node(nil), n.children...)
		sort.Slice(children, func(i, j int) bool { return children[i].iri < children[j].iri })
		for _, c := range children {
			visit(c, n.iri, layer+1)
		}

		end := counter
		counter++
		n.intervals = append(n.intervals, Interval{Start: start, End: end, Layer: layer, Parent: via})
	}

	for _, r := range roots {
		visit(r, "", 0)
	}
}

// Intervals returns all intervals labeled onto iri, or nil if iri is not in
// the tree.
func (t *Tree) Intervals(iri string) []Interval {
	n, ok := t.nodes[iri]
	if !ok {
		return nil
	}
	return n.intervals
}

// intervalsViaParent returns the intervals of iri whose Parent is exactly
// parentIRI — the set the interval-encoding sidecar needs for a directly
// asserted child/parent pair.
func (t *Tree) intervalsViaParent(iri, parentIRI string) []Interval {
	n, ok := t.nodes[iri]
	if !ok {
		return nil
	}
	var out []Interval
	for _, iv := range n.intervals {
		if iv.Parent == parentIRI {
			out = append(out, iv)
		}
	}
	return out
}

// firstInterval returns iri's first labeled interval, in Label's
// deterministic traversal order.
func (t *Tree) firstInterval(iri string) (Interval, bool) {
	n, ok := t.nodes[iri]
	if !ok || len(n.intervals) == 0 {
		return Interval{}, false
	}
	return n.intervals[0], true
}

// Contains reports whether node a is a (possibly transitive) descendant of
// node b: some interval of a is enclosed by some interval of b.
func (t *Tree) Contains(aIRI, bIRI string) bool {
	a, ok := t.nodes[aIRI]
	if !ok {
		return false
	}
	b, ok := t.nodes[bIRI]
	if !ok {
		return false
	}
	for _, ia := range a.intervals {
		for _, ib := range b.intervals {
			if ib.Start <= ia.Start && ia.End <= ib.End {
				return true
			}
		}
	}
	return false
}
