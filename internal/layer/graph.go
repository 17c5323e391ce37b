package layer

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is the static dependency DAG over layer kinds. Edges point from a
// kind to the kinds it depends on. Priority breaks ties when a topological
// sort has more than one valid order.
type Graph struct {
	deps     map[Kind][]Kind
	priority map[Kind]int
}

// CycleError reports a cycle in a configured graph. This is an invariant
// violation in the configuration, not a runtime condition caused by input.
type CycleError struct {
	Members []Kind
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Members))
	for i, kind := range e.Members {
		names[i] = string(kind)
	}
	return fmt.Sprintf("layer: dependency graph contains a cycle through [%s]", strings.Join(names, ", "))
}

// NewGraph builds and validates a graph. Every referenced kind must be known,
// self-dependencies are rejected, and a cyclic graph fails fast with a
// CycleError.
func NewGraph(deps map[Kind][]Kind, priority map[Kind]int) (*Graph, error) {
	cloned := make(map[Kind][]Kind, len(deps))
	for kind, kindDeps := range deps {
		if _, err := ParseKind(string(kind)); err != nil {
			return nil, err
		}
		clone := make([]Kind, 0, len(kindDeps))
		for _, dep := range kindDeps {
			if _, err := ParseKind(string(dep)); err != nil {
				return nil, err
			}
			if dep == kind {
				return nil, fmt.Errorf("layer: %s cannot depend on itself", kind)
			}
			clone = append(clone, dep)
		}
		cloned[kind] = clone
	}
	prios := make(map[Kind]int, len(cloned))
	for kind := range cloned {
		value, ok := priority[kind]
		if !ok {
			return nil, fmt.Errorf("layer: %s is missing a priority", kind)
		}
		prios[kind] = value
	}
	for kind, kindDeps := range cloned {
		for _, dep := range kindDeps {
			if _, ok := cloned[dep]; !ok {
				return nil, fmt.Errorf("layer: %s depends on %s which is not declared in the graph", kind, dep)
			}
		}
	}
	graph := &Graph{deps: cloned, priority: prios}
	if _, err := graph.TopoOrder(); err != nil {
		return nil, err
	}
	return graph, nil
}

// DefaultGraph returns the built-in layer dependency graph:
// schema → interface → logic → presentation, with infrastructure depending
// on logic directly.
func DefaultGraph() *Graph {
	graph, err := NewGraph(
		map[Kind][]Kind{
			KindSchema:         nil,
			KindInterface:      {KindSchema},
			KindLogic:          {KindInterface},
			KindPresentation:   {KindLogic},
			KindInfrastructure: {KindLogic},
		},
		map[Kind]int{
			KindSchema:         1,
			KindInterface:      2,
			KindLogic:          3,
			KindPresentation:   4,
			KindInfrastructure: 5,
		},
	)
	if err != nil {
		// The built-in graph is a compile-time constant in all but syntax.
		panic(err)
	}
	return graph
}

// Kinds returns the graph's kinds sorted by priority.
func (g *Graph) Kinds() []Kind {
	kinds := make([]Kind, 0, len(g.deps))
	for kind := range g.deps {
		kinds = append(kinds, kind)
	}
	g.sortByPriority(kinds)
	return kinds
}

// Contains reports whether the graph declares the kind.
func (g *Graph) Contains(kind Kind) bool {
	_, ok := g.deps[kind]
	return ok
}

// Dependencies returns the direct dependencies of a kind sorted by priority.
func (g *Graph) Dependencies(kind Kind) []Kind {
	deps := g.deps[kind]
	if len(deps) == 0 {
		return nil
	}
	clone := make([]Kind, len(deps))
	copy(clone, deps)
	g.sortByPriority(clone)
	return clone
}

// Priority returns the declared tie-break priority for a kind.
func (g *Graph) Priority(kind Kind) int {
	return g.priority[kind]
}

// AdjacentPairs returns every (upstream, downstream) edge sorted by the
// downstream kind's priority, then the upstream's. Validation rules run over
// these pairs.
func (g *Graph) AdjacentPairs() [][2]Kind {
	var pairs [][2]Kind
	for _, kind := range g.Kinds() {
		for _, dep := range g.Dependencies(kind) {
			pairs = append(pairs, [2]Kind{dep, kind})
		}
	}
	return pairs
}

// Induce returns the subgraph restricted to the present kinds. Absent nodes
// and any edges touching them are dropped; priorities carry over.
func (g *Graph) Induce(present []Kind) *Graph {
	keep := make(map[Kind]bool, len(present))
	for _, kind := range present {
		if g.Contains(kind) {
			keep[kind] = true
		}
	}
	deps := make(map[Kind][]Kind, len(keep))
	priority := make(map[Kind]int, len(keep))
	for kind := range keep {
		var kept []Kind
		for _, dep := range g.deps[kind] {
			if keep[dep] {
				kept = append(kept, dep)
			}
		}
		deps[kind] = kept
		priority[kind] = g.priority[kind]
	}
	return &Graph{deps: deps, priority: priority}
}

// TopoOrder produces a deterministic topological order using Kahn's
// algorithm; ready kinds are taken lowest-priority-number first. A cycle
// yields a CycleError listing the kinds left unordered.
func (g *Graph) TopoOrder() ([]Kind, error) {
	inDegree := make(map[Kind]int, len(g.deps))
	for kind, deps := range g.deps {
		inDegree[kind] += 0
		inDegree[kind] += len(deps)
	}
	var ready []Kind
	for kind, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, kind)
		}
	}
	order := make([]Kind, 0, len(g.deps))
	for len(ready) > 0 {
		g.sortByPriority(ready)
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)
		for kind, deps := range g.deps {
			for _, dep := range deps {
				if dep != current {
					continue
				}
				inDegree[kind]--
				if inDegree[kind] == 0 {
					ready = append(ready, kind)
				}
			}
		}
	}
	if len(order) != len(g.deps) {
		var members []Kind
		for kind, degree := range inDegree {
			if degree > 0 {
				members = append(members, kind)
			}
		}
		g.sortByPriority(members)
		return nil, &CycleError{Members: members}
	}
	return order, nil
}

func (g *Graph) sortByPriority(kinds []Kind) {
	sort.Slice(kinds, func(i, j int) bool {
		pi, pj := g.priority[kinds[i]], g.priority[kinds[j]]
		if pi != pj {
			return pi < pj
		}
		return kinds[i] < kinds[j]
	})
}
