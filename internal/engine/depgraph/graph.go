// Package depgraph models one analysis run's dependency set as a graph.
// Nodes are keyed by dependency name and reference each other by name
// only; the graph owns all adjacency state.
package depgraph

import (
	"sort"

	"depscope/internal/shared/observability"
)

// Record is one resolved dependency fact supplied by an external
// dependency parser. The engine never mutates it.
type Record struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Ecosystem    string   `json:"ecosystem"`
	Direct       bool     `json:"is_direct"`
	Parent       string   `json:"parent,omitempty"`
	RequiredBy   []string `json:"required_by,omitempty"`
	UsedFeatures []string `json:"used_features,omitempty"`
}

// HasUsedFeatures reports whether any code-level usage was observed.
func (r Record) HasUsedFeatures() bool {
	return len(r.UsedFeatures) > 0
}

// FeatureSet returns the record's used features as a set.
func (r Record) FeatureSet() map[string]bool {
	set := make(map[string]bool, len(r.UsedFeatures))
	for _, f := range r.UsedFeatures {
		set[f] = true
	}
	return set
}

// Node wraps a Record with adjacency derived from parent/required_by
// relationships. Parents and Children hold names, not pointers, and are
// populated exactly once during Build.
type Node struct {
	Record   Record
	Parents  map[string]bool
	Children map[string]bool
}

// SortedParents returns the parent names in lexical order.
func (n *Node) SortedParents() []string {
	parents := make([]string, 0, len(n.Parents))
	for p := range n.Parents {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	return parents
}

// SortedChildren returns the child names in lexical order.
func (n *Node) SortedChildren() []string {
	children := make([]string, 0, len(n.Children))
	for c := range n.Children {
		children = append(children, c)
	}
	sort.Strings(children)
	return children
}

// Graph is a mapping from dependency name to node. It preserves input
// order so traversal output is deterministic for a given record list.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Build constructs the graph for one analysis run. An edge parent->child
// is added for each record's declared parent and for every required_by
// entry, both endpoints updated together. References to names absent
// from the input are ignored: the input may be a partial subgraph.
// Cycles are allowed here; traversals guard against them.
func Build(records []Record) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node, len(records)),
		order: make([]string, 0, len(records)),
	}

	for _, rec := range records {
		if _, exists := g.nodes[rec.Name]; exists {
			continue
		}
		g.nodes[rec.Name] = &Node{
			Record:   rec,
			Parents:  make(map[string]bool),
			Children: make(map[string]bool),
		}
		g.order = append(g.order, rec.Name)
	}

	for _, rec := range records {
		if rec.Parent != "" {
			g.addEdge(rec.Parent, rec.Name)
		}
		for _, parent := range rec.RequiredBy {
			g.addEdge(parent, rec.Name)
		}
	}

	observability.GraphNodes.Set(float64(len(g.nodes)))
	observability.GraphEdges.Set(float64(g.EdgeCount()))

	return g
}

func (g *Graph) addEdge(parent, child string) {
	p, ok := g.nodes[parent]
	if !ok {
		return
	}
	c, ok := g.nodes[child]
	if !ok {
		return
	}
	p.Children[child] = true
	c.Parents[parent] = true
}

// Node returns the node for a dependency name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns all node names in input order.
func (g *Graph) Names() []string {
	return g.order
}

// DirectNames returns the names of direct dependencies in input order.
func (g *Graph) DirectNames() []string {
	direct := make([]string, 0, len(g.order))
	for _, name := range g.order {
		if g.nodes[name].Record.Direct {
			direct = append(direct, name)
		}
	}
	return direct
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of parent->child edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.Children)
	}
	return count
}
