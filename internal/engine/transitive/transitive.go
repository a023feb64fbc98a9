// Package transitive walks the dependency graph for structurally
// wasteful patterns: long dependency chains, transitive dependencies
// shared by many parents, and transitive dependencies that behave like
// direct ones.
package transitive

import (
	"sort"

	"depscope/internal/engine/depgraph"
)

const (
	// DefaultMinChainLength is the node count at which a path counts as
	// a long chain.
	DefaultMinChainLength = 4
	// DefaultMinParents is the parent count at which a transitive
	// dependency counts as common.
	DefaultMinParents = 3
	// DefaultTopN bounds each finding list.
	DefaultTopN = 10
)

// Chain is a simple path from a direct dependency to a descendant.
type Chain struct {
	Root   string   `json:"root"`
	Leaf   string   `json:"leaf"`
	Path   []string `json:"path"`
	Length int      `json:"length"`
}

// CommonDependency is a transitive dependency required by many parents.
type CommonDependency struct {
	Name        string   `json:"name"`
	Parents     []string `json:"parents"`
	ParentCount int      `json:"parent_count"`
	Ecosystem   string   `json:"ecosystem"`
	Version     string   `json:"version"`
}

// IndirectDependency is a transitive dependency that behaves enough
// like a direct one to warrant promotion.
type IndirectDependency struct {
	Name              string   `json:"name"`
	DirectParents     []string `json:"direct_parents"`
	DirectParentCount int      `json:"direct_parent_count"`
	HasDirectUsage    bool     `json:"has_direct_usage"`
	Ecosystem         string   `json:"ecosystem"`
	Version           string   `json:"version"`
}

// Analysis bundles the three transitive findings.
type Analysis struct {
	Chains              []Chain
	CommonTransitive    []CommonDependency
	UnnecessaryIndirect []IndirectDependency
}

// Analyzer holds the traversal thresholds.
type Analyzer struct {
	MinChainLength int
	MinParents     int
	TopN           int
}

func New() *Analyzer {
	return &Analyzer{
		MinChainLength: DefaultMinChainLength,
		MinParents:     DefaultMinParents,
		TopN:           DefaultTopN,
	}
}

// Analyze runs all three traversals over a built graph.
func (a *Analyzer) Analyze(g *depgraph.Graph) Analysis {
	return Analysis{
		Chains:              a.LongChains(g),
		CommonTransitive:    a.CommonTransitive(g),
		UnnecessaryIndirect: a.UnnecessaryIndirect(g),
	}
}

// LongChains finds simple paths of MinChainLength or more nodes rooted
// at direct dependencies, via iterative DFS with an explicit stack.
// Nodes already on the current path are skipped, which both guards
// against cycles and bounds the search to simple paths; a per-root
// visited set bounds revisits. The longest TopN chains are returned,
// ties kept in discovery order.
func (a *Analyzer) LongChains(g *depgraph.Graph) []Chain {
	var chains []Chain

	for _, root := range g.DirectNames() {
		visited := make(map[string]bool)

		type frame struct {
			node string
			path []string
		}
		stack := []frame{{node: root, path: []string{root}}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if visited[top.node] {
				continue
			}
			visited[top.node] = true

			node, ok := g.Node(top.node)
			if !ok {
				continue
			}

			for _, child := range node.SortedChildren() {
				if containsName(top.path, child) {
					continue
				}

				path := make([]string, 0, len(top.path)+1)
				path = append(path, top.path...)
				path = append(path, child)
				stack = append(stack, frame{node: child, path: path})

				if len(path) >= a.MinChainLength {
					chains = append(chains, Chain{
						Root:   root,
						Leaf:   child,
						Path:   path,
						Length: len(path),
					})
				}
			}
		}
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].Length > chains[j].Length
	})

	return truncateChains(chains, a.TopN)
}

// CommonTransitive finds non-direct nodes with MinParents or more
// parents, most referenced first.
func (a *Analyzer) CommonTransitive(g *depgraph.Graph) []CommonDependency {
	var common []CommonDependency

	for _, name := range g.Names() {
		node, _ := g.Node(name)
		if node.Record.Direct {
			continue
		}
		if len(node.Parents) >= a.MinParents {
			common = append(common, CommonDependency{
				Name:        name,
				Parents:     node.SortedParents(),
				ParentCount: len(node.Parents),
				Ecosystem:   node.Record.Ecosystem,
				Version:     node.Record.Version,
			})
		}
	}

	sort.SliceStable(common, func(i, j int) bool {
		return common[i].ParentCount > common[j].ParentCount
	})

	if len(common) > a.TopN {
		common = common[:a.TopN]
	}
	return common
}

// UnnecessaryIndirect finds non-direct nodes with at least two direct
// parents, or with any direct parent plus observed code usage.
func (a *Analyzer) UnnecessaryIndirect(g *depgraph.Graph) []IndirectDependency {
	directSet := make(map[string]bool)
	for _, name := range g.DirectNames() {
		directSet[name] = true
	}

	var findings []IndirectDependency

	for _, name := range g.Names() {
		node, _ := g.Node(name)
		if node.Record.Direct {
			continue
		}

		var directParents []string
		for _, p := range node.SortedParents() {
			if directSet[p] {
				directParents = append(directParents, p)
			}
		}

		hasUsage := node.Record.HasUsedFeatures()
		if len(directParents) >= 2 || (hasUsage && len(directParents) >= 1) {
			findings = append(findings, IndirectDependency{
				Name:              name,
				DirectParents:     directParents,
				DirectParentCount: len(directParents),
				HasDirectUsage:    hasUsage,
				Ecosystem:         node.Record.Ecosystem,
				Version:           node.Record.Version,
			})
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].DirectParentCount > findings[j].DirectParentCount
	})

	if len(findings) > a.TopN {
		findings = findings[:a.TopN]
	}
	return findings
}

func truncateChains(chains []Chain, n int) []Chain {
	if len(chains) > n {
		return chains[:n]
	}
	return chains
}

func containsName(path []string, name string) bool {
	for _, p := range path {
		if p == name {
			return true
		}
	}
	return false
}
