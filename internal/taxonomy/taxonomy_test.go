package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/latticedb/quadstore/pkg/rdf"
)

func TestLabelSingleChainContainment(t *testing.T) {
	tree := NewTree()
	// a subClassOf b, b subClassOf c: a is a descendant of both b and c.
	tree.AddEdge("a", "b")
	tree.AddEdge("b", "c")
	tree.Label()

	if !tree.Contains("a", "b") {
		t.Error("a should be contained in b")
	}
	if !tree.Contains("a", "c") {
		t.Error("a should be contained in c (transitively)")
	}
	if !tree.Contains("b", "c") {
		t.Error("b should be contained in c")
	}
	if tree.Contains("c", "a") {
		t.Error("c must not be contained in a")
	}
}

func TestLabelMultiParentEachPathGetsAnInterval(t *testing.T) {
	tree := NewTree()
	// a has two parents, b and d; a subClassOf b, a subClassOf d.
	tree.AddEdge("a", "b")
	tree.AddEdge("a", "d")
	tree.Label()

	ivs := tree.Intervals("a")
	if len(ivs) != 2 {
		t.Fatalf("expected 2 intervals for a multi-parent node, got %d", len(ivs))
	}
	if !tree.Contains("a", "b") || !tree.Contains("a", "d") {
		t.Error("a should be contained in both of its parents")
	}
}

func TestContainsFailsOnUnknownNode(t *testing.T) {
	tree := NewTree()
	tree.AddEdge("a", "b")
	tree.Label()

	if tree.Contains("a", "nonexistent") {
		t.Error("Contains against an unknown node must be false")
	}
}

func TestBuildTreesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.nt")
	content := "" +
		"<http://example.org/a> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/b> .\n" +
		"<http://example.org/b> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/c> .\n" +
		"<http://example.org/a> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/d> .\n" +
		"<http://example.org/p1> <http://www.w3.org/2000/01/rdf-schema#subPropertyOf> <http://example.org/p2> .\n" +
		"# a comment line\n" +
		"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write taxonomy file: %v", err)
	}

	classes, properties, err := BuildTrees(path, Config{})
	if err != nil {
		t.Fatalf("BuildTrees: %v", err)
	}

	if !classes.Contains("http://example.org/a", "http://example.org/c") {
		t.Error("a should be a transitive subclass of c")
	}
	if !classes.Contains("http://example.org/a", "http://example.org/d") {
		t.Error("a should be a subclass of d")
	}
	if !properties.Contains("http://example.org/p1", "http://example.org/p2") {
		t.Error("p1 should be a subproperty of p2")
	}
}

func TestEncodeIntervalHintDirectEdgeVsTransitive(t *testing.T) {
	// a subClassOf b, b subClassOf c, a subClassOf d.
	classes := NewTree()
	classes.AddEdge("a", "b")
	classes.AddEdge("b", "c")
	classes.AddEdge("a", "d")
	classes.Label()
	properties := NewTree()
	properties.Label()

	a := rdf.NewNamedNode("a")
	b := rdf.NewNamedNode("b")
	c := rdf.NewNamedNode("c")
	subClassOf := rdf.NewNamedNode(rdfsSubClassOf)

	// a subClassOf b is a direct edge: non-empty hint, first byte TYPE_CLASS (50).
	direct := EncodeIntervalHint(a, subClassOf, b, classes, properties)
	if len(direct) == 0 {
		t.Fatal("expected a non-empty hint for a directly asserted subClassOf edge")
	}
	if direct[0] != 50 {
		t.Errorf("expected first byte 50 (TYPE_CLASS), got %d", direct[0])
	}

	// a subClassOf c is never directly asserted: empty hint.
	transitive := EncodeIntervalHint(a, subClassOf, c, classes, properties)
	if len(transitive) != 0 {
		t.Errorf("expected an empty hint for a's non-asserted edge to c, got %d bytes", len(transitive))
	}
}

func TestEncodeIntervalHintDomainRangeType(t *testing.T) {
	classes := NewTree()
	classes.AddEdge("Student", "Person")
	classes.Label()
	properties := NewTree()
	properties.Label()

	alice := rdf.NewNamedNode("alice")
	rdfTypePred := rdf.NewNamedNode(rdfType)
	student := rdf.NewNamedNode("Student")

	hint := EncodeIntervalHint(alice, rdfTypePred, student, classes, properties)
	if len(hint) == 0 {
		t.Fatal("expected a non-empty hint for rdf:type against a known class")
	}
	if hint[0] != 50 {
		t.Errorf("expected first byte 50 (TYPE_CLASS), got %d", hint[0])
	}
	if hint[1] != 1 {
		t.Errorf("expected interval count byte 1, got %d", hint[1])
	}
}

func TestEncodeIntervalHintEmptyOnUnrelatedPredicate(t *testing.T) {
	classes := NewTree()
	properties := NewTree()
	s := rdf.NewNamedNode("s")
	p := rdf.NewNamedNode("http://example.org/unrelated")
	o := rdf.NewNamedNode("o")

	if hint := EncodeIntervalHint(s, p, o, classes, properties); hint != nil {
		t.Errorf("expected nil hint for an untracked predicate, got %v", hint)
	}
}
