// Package recommend turns raw analysis findings into ranked,
// human-readable recommendations and aggregate metrics.
package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"depscope/internal/engine/depgraph"
	"depscope/internal/engine/transitive"
	"depscope/internal/engine/versioncheck"
)

type Type string

const (
	TypeDuplicate            Type = "duplicate_functionality"
	TypeLongChain            Type = "long_dependency_chain"
	TypeCommonTransitive     Type = "common_transitive"
	TypeUnnecessaryIndirect  Type = "unnecessary_indirect"
	TypeVersionInconsistency Type = "version_inconsistency"
)

type Level string

const (
	Low    Level = "low"
	Medium Level = "medium"
	High   Level = "high"
)

// Caps on how many findings of each kind surface as recommendations.
const (
	topChains        = 3
	topCommon        = 3
	topIndirect      = 3
	topVersionIssues = 5
	maxChainCredit   = 10
)

type Recommendation struct {
	Type            Type   `json:"type"`
	Description     string `json:"description"`
	SuggestedAction string `json:"suggested_action"`
	Effort          Level  `json:"effort"`
	Savings         Level  `json:"savings"`
	Payload         any    `json:"payload,omitempty"`
}

// DuplicatePayload names the member to keep and the members to remove.
type DuplicatePayload struct {
	Keep   depgraph.Record   `json:"keep"`
	Remove []depgraph.Record `json:"remove"`
}

// Recommendations groups the output by analysis category, mirroring the
// shape callers persist and render.
type Recommendations struct {
	Duplicates []Recommendation `json:"duplicates"`
	Transitive []Recommendation `json:"transitive"`
	Versions   []Recommendation `json:"versions"`
}

// Total returns the number of recommendations across all categories.
func (r Recommendations) Total() int {
	return len(r.Duplicates) + len(r.Transitive) + len(r.Versions)
}

// Reduction estimates how many dependencies could be eliminated.
type Reduction struct {
	TotalDependencies int     `json:"total_dependencies"`
	PotentialRemovals int     `json:"potential_removals"`
	ReductionPercent  float64 `json:"reduction_percent"`
	DuplicateRemovals int     `json:"duplicate_removals"`
	ChainReduction    int     `json:"chain_reduction"`
}

type Metrics struct {
	TotalDependencies      int            `json:"total_dependencies"`
	DirectDependencies     int            `json:"direct_dependencies"`
	TransitiveDependencies int            `json:"transitive_dependencies"`
	DuplicateGroups        int            `json:"duplicate_groups"`
	PotentialRemovals      int            `json:"potential_removals"`
	TransitiveChains       int            `json:"transitive_chains"`
	VersionInconsistencies int            `json:"version_inconsistencies"`
	EstimatedReduction     Reduction      `json:"estimated_reduction"`
	Ecosystems             []string       `json:"ecosystems"`
	EcosystemCounts        map[string]int `json:"ecosystem_counts"`
}

// Duplicates converts duplicate groups into consolidation
// recommendations. The keep candidate is the first member after a
// stable sort by directness then observed usage; removing a direct
// dependency is rated a high saving. Effort is always medium: nothing
// in this domain is safe to remove automatically.
func Duplicates(groups [][]depgraph.Record) []Recommendation {
	recs := make([]Recommendation, 0, len(groups))

	for _, group := range groups {
		sorted := make([]depgraph.Record, len(group))
		copy(sorted, group)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Direct != sorted[j].Direct {
				return sorted[i].Direct
			}
			return len(sorted[i].UsedFeatures) > len(sorted[j].UsedFeatures)
		})

		keep := sorted[0]
		remove := sorted[1:]

		savings := Medium
		for _, rec := range remove {
			if rec.Direct {
				savings = High
				break
			}
		}

		recs = append(recs, Recommendation{
			Type: TypeDuplicate,
			Description: fmt.Sprintf("Multiple dependencies with similar functionality found: %s",
				joinNames(group)),
			SuggestedAction: fmt.Sprintf("Consider consolidating on %s and removing %s",
				keep.Name, joinNames(remove)),
			Effort:  Medium,
			Savings: savings,
			Payload: DuplicatePayload{Keep: keep, Remove: remove},
		})
	}

	return recs
}

// Transitive converts the transitive findings: the longest chains, the
// most shared transitive dependencies, and the indirect dependencies
// that behave like direct ones.
func Transitive(analysis transitive.Analysis) []Recommendation {
	var recs []Recommendation

	for _, chain := range capChains(analysis.Chains, topChains) {
		recs = append(recs, Recommendation{
			Type:        TypeLongChain,
			Description: fmt.Sprintf("Long dependency chain detected (%d levels)", chain.Length),
			SuggestedAction: fmt.Sprintf("Consider flattening dependency chain from %s to %s",
				chain.Root, chain.Leaf),
			Effort:  Medium,
			Savings: Medium,
			Payload: chain,
		})
	}

	for _, dep := range capCommon(analysis.CommonTransitive, topCommon) {
		recs = append(recs, Recommendation{
			Type: TypeCommonTransitive,
			Description: fmt.Sprintf("%s is used as a transitive dependency by %d packages",
				dep.Name, dep.ParentCount),
			SuggestedAction: fmt.Sprintf("Consider adding %s as a direct dependency to standardize version",
				dep.Name),
			Effort:  Low,
			Savings: Medium,
			Payload: dep,
		})
	}

	for _, dep := range capIndirect(analysis.UnnecessaryIndirect, topIndirect) {
		reason := fmt.Sprintf("it is a common dependency of %d direct dependencies", dep.DirectParentCount)
		if dep.HasDirectUsage {
			reason = "it is used directly in code"
		}
		recs = append(recs, Recommendation{
			Type:            TypeUnnecessaryIndirect,
			Description:     fmt.Sprintf("%s is an indirect dependency, but %s", dep.Name, reason),
			SuggestedAction: fmt.Sprintf("Consider adding %s as a direct dependency", dep.Name),
			Effort:          Low,
			Savings:         Low,
			Payload:         dep,
		})
	}

	return recs
}

// Versions converts the top version inconsistencies into
// standardization recommendations. Aligning a direct dependency is low
// effort; chasing a transitive pin through parents is not.
func Versions(inconsistencies []versioncheck.Inconsistency) []Recommendation {
	capped := inconsistencies
	if len(capped) > topVersionIssues {
		capped = capped[:topVersionIssues]
	}

	recs := make([]Recommendation, 0, len(capped))
	for _, inc := range capped {
		effort := Medium
		if inc.Direct {
			effort = Low
		}
		recs = append(recs, Recommendation{
			Type: TypeVersionInconsistency,
			Description: fmt.Sprintf("%s is used with %d different versions",
				inc.Name, inc.VersionCount),
			SuggestedAction: fmt.Sprintf("Standardize on version %s", inc.LatestVersion),
			Effort:          effort,
			Savings:         Medium,
			Payload:         inc,
		})
	}

	return recs
}

// BuildMetrics aggregates run counters and the estimated reduction
// potential. The reduction percent is 0 for an empty input.
func BuildMetrics(
	records []depgraph.Record,
	groups [][]depgraph.Record,
	analysis transitive.Analysis,
	inconsistencies []versioncheck.Inconsistency,
) Metrics {
	total := len(records)
	direct := 0
	ecosystemCounts := make(map[string]int)
	var ecosystems []string
	for _, rec := range records {
		if rec.Direct {
			direct++
		}
		if _, seen := ecosystemCounts[rec.Ecosystem]; !seen {
			ecosystems = append(ecosystems, rec.Ecosystem)
		}
		ecosystemCounts[rec.Ecosystem]++
	}

	duplicateRemovals := 0
	for _, group := range groups {
		duplicateRemovals += len(group) - 1
	}

	chainReduction := len(analysis.Chains)
	if chainReduction > maxChainCredit {
		chainReduction = maxChainCredit
	}

	removals := duplicateRemovals + chainReduction
	percent := 0.0
	if total > 0 {
		percent = math.Round(float64(removals)/float64(total)*100*100) / 100
	}

	return Metrics{
		TotalDependencies:      total,
		DirectDependencies:     direct,
		TransitiveDependencies: total - direct,
		DuplicateGroups:        len(groups),
		PotentialRemovals:      duplicateRemovals,
		TransitiveChains:       len(analysis.Chains),
		VersionInconsistencies: len(inconsistencies),
		EstimatedReduction: Reduction{
			TotalDependencies: total,
			PotentialRemovals: removals,
			ReductionPercent:  percent,
			DuplicateRemovals: duplicateRemovals,
			ChainReduction:    chainReduction,
		},
		Ecosystems:      ecosystems,
		EcosystemCounts: ecosystemCounts,
	}
}

func joinNames(records []depgraph.Record) string {
	names := make([]string, 0, len(records))
	for _, rec := range records {
		names = append(names, rec.Name)
	}
	return strings.Join(names, ", ")
}

func capChains(chains []transitive.Chain, n int) []transitive.Chain {
	if len(chains) > n {
		return chains[:n]
	}
	return chains
}

func capCommon(deps []transitive.CommonDependency, n int) []transitive.CommonDependency {
	if len(deps) > n {
		return deps[:n]
	}
	return deps
}

func capIndirect(deps []transitive.IndirectDependency, n int) []transitive.IndirectDependency {
	if len(deps) > n {
		return deps[:n]
	}
	return deps
}
