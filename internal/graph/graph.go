// Package graph provides the static component dependency graph for the
// pricing calculator: registration, construction-time validation, and
// topological ordering of recalculation sets.
package graph

import (
	"fmt"
	"strings"

	"netquote/pkg/api"
)

// DependencyKind distinguishes a normal edge from the wildcard sentinel.
type DependencyKind int

const (
	// DepFixed is a dependency on one named component.
	DepFixed DependencyKind = iota
	// DepAllEnabled is a dependency on every currently enabled
	// non-contract component, used by long-term contract pricing.
	DepAllEnabled
)

// Dependency is one entry in a component's dependency list.
type Dependency struct {
	Kind DependencyKind `json:"kind"`
	ID   string         `json:"id,omitempty"`
}

// On declares a fixed dependency on the named component.
func On(id string) Dependency { return Dependency{Kind: DepFixed, ID: id} }

// OnAllEnabled declares a wildcard dependency on every enabled component.
func OnAllEnabled() Dependency { return Dependency{Kind: DepAllEnabled} }

// Definition declares one component: its identity, informational category,
// and the components it consumes outputs from. Definitions are immutable
// after graph construction.
type Definition struct {
	ID        string       `json:"id"`
	Category  string       `json:"category"`
	DependsOn []Dependency `json:"depends_on,omitempty"`
}

type node struct {
	def        Definition
	pos        int // registration order
	level      int
	wildcard   bool
	fixedDeps  []string
	dependents []string // fixed dependents only
}

// Graph is the validated component dependency graph. Read-only after New.
type Graph struct {
	nodes     map[string]*node
	order     []string // registration order
	wildcards []string
	maxLevel  int
}

// ConstructionError is the fatal error produced when the declared
// dependencies are cyclic, dangling, or otherwise invalid. A calculator
// must never start with a graph that failed construction.
type ConstructionError struct {
	Violations []string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid dependency graph: %s", strings.Join(e.Violations, "; "))
}

// New builds and validates a graph from the given definitions. Definition
// order is significant: it is the deterministic tie-break for components
// at the same level.
func New(defs []Definition) (*Graph, error) {
	if violations := Validate(defs); len(violations) > 0 {
		return nil, &ConstructionError{Violations: violations}
	}

	g := &Graph{nodes: make(map[string]*node, len(defs))}
	for i, def := range defs {
		n := &node{def: def, pos: i}
		for _, dep := range def.DependsOn {
			switch dep.Kind {
			case DepFixed:
				n.fixedDeps = append(n.fixedDeps, dep.ID)
			case DepAllEnabled:
				n.wildcard = true
			}
		}
		g.nodes[def.ID] = n
		g.order = append(g.order, def.ID)
		if n.wildcard {
			g.wildcards = append(g.wildcards, def.ID)
		}
	}

	// Reverse edges for closure computation.
	for _, id := range g.order {
		for _, depID := range g.nodes[id].fixedDeps {
			dep := g.nodes[depID]
			dep.dependents = append(dep.dependents, id)
		}
	}

	g.assignLevels()
	return g, nil
}

// Validate checks definitions for duplicate ids, dangling references,
// self-references, fixed edges onto wildcard components, and cycles.
// It returns the full list of violations rather than stopping at the
// first, so a broken catalog is diagnosable in one pass.
func Validate(defs []Definition) []string {
	var violations []string

	byID := make(map[string]Definition, len(defs))
	wildcard := make(map[string]bool)
	for _, def := range defs {
		if def.ID == "" {
			violations = append(violations, "component with empty id")
			continue
		}
		if _, dup := byID[def.ID]; dup {
			violations = append(violations, fmt.Sprintf("duplicate component id %q", def.ID))
			continue
		}
		byID[def.ID] = def
		for _, dep := range def.DependsOn {
			if dep.Kind == DepAllEnabled {
				wildcard[def.ID] = true
			}
		}
	}

	for _, def := range defs {
		for _, dep := range def.DependsOn {
			if dep.Kind != DepFixed {
				continue
			}
			if dep.ID == def.ID {
				violations = append(violations, fmt.Sprintf("component %q depends on itself", def.ID))
				continue
			}
			if _, ok := byID[dep.ID]; !ok {
				violations = append(violations, fmt.Sprintf("component %q depends on unregistered component %q", def.ID, dep.ID))
				continue
			}
			if wildcard[dep.ID] {
				// Contract components must stay last in every ordering,
				// which a fixed dependent would break.
				violations = append(violations, fmt.Sprintf("component %q has a fixed dependency on all-enabled component %q", def.ID, dep.ID))
			}
		}
	}

	if cycle := findCycle(defs, byID); len(cycle) > 0 {
		violations = append(violations, fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	return violations
}

// findCycle runs Kahn's algorithm over the fixed edges; any nodes left
// with unsatisfied in-degree form at least one cycle.
func findCycle(defs []Definition, byID map[string]Definition) []string {
	indegree := make(map[string]int, len(defs))
	dependents := make(map[string][]string, len(defs))
	for _, def := range defs {
		if _, ok := byID[def.ID]; !ok {
			continue
		}
		for _, dep := range def.DependsOn {
			if dep.Kind != DepFixed || dep.ID == def.ID {
				continue
			}
			if _, ok := byID[dep.ID]; !ok {
				continue
			}
			indegree[def.ID]++
			dependents[dep.ID] = append(dependents[dep.ID], def.ID)
		}
	}

	var ready []string
	for _, def := range defs {
		if indegree[def.ID] == 0 {
			ready = append(ready, def.ID)
		}
	}
	processed := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		processed++
		for _, depID := range dependents[id] {
			indegree[depID]--
			if indegree[depID] == 0 {
				ready = append(ready, depID)
			}
		}
	}
	if processed == len(byID) {
		return nil
	}

	var cycle []string
	for _, def := range defs {
		if indegree[def.ID] > 0 {
			cycle = append(cycle, def.ID)
		}
	}
	return cycle
}

// assignLevels computes each node's level: 0 for no dependencies, one more
// than the highest dependency otherwise. Wildcard components sit above
// every non-wildcard component so they always schedule last.
func (g *Graph) assignLevels() {
	var visit func(n *node) int
	visit = func(n *node) int {
		if n.level >= 0 {
			return n.level
		}
		level := 0
		for _, depID := range n.fixedDeps {
			if dl := visit(g.nodes[depID]) + 1; dl > level {
				level = dl
			}
		}
		n.level = level
		return level
	}

	for _, id := range g.order {
		g.nodes[id].level = -1
	}
	maxLevel := 0
	for _, id := range g.order {
		n := g.nodes[id]
		if n.wildcard {
			continue
		}
		if l := visit(n); l > maxLevel {
			maxLevel = l
		}
	}
	for _, id := range g.wildcards {
		g.nodes[id].level = maxLevel + 1
	}
	g.maxLevel = maxLevel
	if len(g.wildcards) > 0 {
		g.maxLevel = maxLevel + 1
	}
}

// IDs returns every component id in registration order.
func (g *Graph) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Definition returns the declaration for a component.
func (g *Graph) Definition(id string) (Definition, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Definition{}, &api.UnknownComponentError{ID: id}
	}
	return n.def, nil
}

// Dependencies returns a component's declared dependency list in
// declaration order.
func (g *Graph) Dependencies(id string) ([]Dependency, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &api.UnknownComponentError{ID: id}
	}
	out := make([]Dependency, len(n.def.DependsOn))
	copy(out, n.def.DependsOn)
	return out, nil
}

// FixedDependencies returns only the named (non-wildcard) dependencies.
func (g *Graph) FixedDependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &api.UnknownComponentError{ID: id}
	}
	out := make([]string, len(n.fixedDeps))
	copy(out, n.fixedDeps)
	return out, nil
}

// Level returns a component's derived level.
func (g *Graph) Level(id string) (int, error) {
	n, ok := g.nodes[id]
	if !ok {
		return 0, &api.UnknownComponentError{ID: id}
	}
	return n.level, nil
}

// MaxLevel returns the highest level in the graph.
func (g *Graph) MaxLevel() int { return g.maxLevel }

// IsWildcard reports whether a component declares the all-enabled
// dependency.
func (g *Graph) IsWildcard(id string) bool {
	n, ok := g.nodes[id]
	return ok && n.wildcard
}

// Dependents returns the components that directly consume id's output,
// including every wildcard component when id is itself non-wildcard.
// Output is in registration order.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &api.UnknownComponentError{ID: id}
	}

	direct := make(map[string]bool, len(n.dependents))
	for _, depID := range n.dependents {
		direct[depID] = true
	}
	if !n.wildcard {
		for _, wID := range g.wildcards {
			if wID != id {
				direct[wID] = true
			}
		}
	}

	var out []string
	for _, candidate := range g.order {
		if direct[candidate] {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// AffectedClosure returns id plus every component transitively depending
// on it, in registration order. This is the recompute set when id's
// params change.
func (g *Graph) AffectedClosure(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, &api.UnknownComponentError{ID: id}
	}

	seen := map[string]bool{id: true}
	frontier := []string{id}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		dependents, _ := g.Dependents(current)
		for _, depID := range dependents {
			if !seen[depID] {
				seen[depID] = true
				frontier = append(frontier, depID)
			}
		}
	}

	var out []string
	for _, candidate := range g.order {
		if seen[candidate] {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// TopologicalOrder orders the candidate set so every component appears
// after all of its in-set dependencies. Dependencies outside the set are
// treated as already satisfied. Equal-level components order by
// registration, so two runs over the same input produce identical output.
func (g *Graph) TopologicalOrder(candidates []string) ([]string, error) {
	inSet := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		if _, ok := g.nodes[id]; !ok {
			return nil, &api.UnknownComponentError{ID: id}
		}
		inSet[id] = true
	}

	// In-degree over the induced subgraph. A wildcard candidate has an
	// edge from every non-wildcard candidate.
	indegree := make(map[string]int, len(inSet))
	nonWildcardCount := 0
	for id := range inSet {
		if !g.nodes[id].wildcard {
			nonWildcardCount++
		}
	}
	for id := range inSet {
		n := g.nodes[id]
		if n.wildcard {
			indegree[id] = nonWildcardCount
			continue
		}
		for _, depID := range n.fixedDeps {
			if inSet[depID] {
				indegree[id]++
			}
		}
	}

	out := make([]string, 0, len(inSet))
	remaining := len(inSet)
	done := make(map[string]bool, len(inSet))
	for remaining > 0 {
		next := g.pickReady(inSet, done, indegree)
		if next == "" {
			// Unreachable on a validated graph; guard against misuse.
			return nil, fmt.Errorf("no schedulable component among %d remaining", remaining)
		}
		out = append(out, next)
		done[next] = true
		remaining--

		n := g.nodes[next]
		for _, depID := range n.dependents {
			// Wildcard in-degrees only track the all-enabled edges,
			// handled below.
			if inSet[depID] && !done[depID] && !g.nodes[depID].wildcard {
				indegree[depID]--
			}
		}
		if !n.wildcard {
			for _, wID := range g.wildcards {
				if inSet[wID] && !done[wID] {
					indegree[wID]--
				}
			}
		}
	}
	return out, nil
}

// pickReady selects the zero in-degree candidate with the lowest level,
// breaking ties by registration order.
func (g *Graph) pickReady(inSet, done map[string]bool, indegree map[string]int) string {
	best := ""
	bestLevel, bestPos := 0, 0
	for _, id := range g.order {
		if !inSet[id] || done[id] || indegree[id] != 0 {
			continue
		}
		n := g.nodes[id]
		if best == "" || n.level < bestLevel || (n.level == bestLevel && n.pos < bestPos) {
			best, bestLevel, bestPos = id, n.level, n.pos
		}
	}
	return best
}
