package taxonomy

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Config tunes taxonomy construction. ExtraSubClassPredicates lets a caller
// track additional subclass-like predicates beyond rdfs:subClassOf and
// lubm:subOrganizationOf.
type Config struct {
	ExtraSubClassPredicates []string
}

// BuildTrees streams a taxonomy input file and returns the labeled class
// and property trees (§3.4, §6). Each line is "<iri1> <iri2> <iri3> .";
// lines whose predicate is rdfs:subClassOf, a configured extra subclass
// predicate, or lubm:subOrganizationOf contribute a class-tree edge; lines
// whose predicate is rdfs:subPropertyOf contribute a property-tree edge.
// All other lines are ignored. Both trees are labeled before returning.
func BuildTrees(path string, cfg Config) (classes, properties *Tree, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open taxonomy file: %w", err)
	}
	defer f.Close()

	classSubPredicates := map[string]bool{
		rdfsSubClassOf:        true,
		lubmSubOrganizationOf: true,
	}
	for _, p := range cfg.ExtraSubClassPredicates {
		classSubPredicates[p] = true
	}

	classes = NewTree()
	properties = NewTree()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s, p, o, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		switch {
		case classSubPredicates[p]:
			classes.AddEdge(s, o)
		case p == rdfsSubPropertyOf:
			properties.AddEdge(s, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read taxonomy file: %w", err)
	}

	classes.Label()
	properties.Label()
	return classes, properties, nil
}

// parseLine extracts the three angle-bracketed IRIs from one taxonomy
// line, ignoring blank lines, comments, and the trailing ".".
func parseLine(line string) (s, p, o string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", "", false
	}
	line = strings.TrimSuffix(strings.TrimSpace(line), ".")

	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", "", "", false
	}
	for i, f := range fields {
		f = strings.TrimPrefix(f, "<")
		f = strings.TrimSuffix(f, ">")
		fields[i] = f
	}
	return fields[0], fields[1], fields[2], true
}
