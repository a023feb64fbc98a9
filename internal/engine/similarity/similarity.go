// Package similarity finds dependencies that likely provide duplicate
// functionality. Candidates are clustered by normalized-name similarity
// within a single ecosystem, then confirmed against observed feature
// usage when any is available.
package similarity

import (
	"sort"
	"strings"

	"depscope/internal/engine/depgraph"
)

// DefaultThreshold is the similarity cutoff used both for name-based
// clustering and for feature-usage confirmation.
const DefaultThreshold = 0.75

// substringFloor is the minimum similarity assigned when one normalized
// name contains the other; containment usually signals a rewrite or a
// forked variant of the same package.
const substringFloor = 0.8

var (
	namePrefixes = []string{"node-", "py-", "python-", "js-", "react-", "vue-"}
	nameSuffixes = []string{"-js", "-py", "-node", "-lib", "-utils", "-tools"}
)

// Analyzer clusters dependencies into possible-duplicate groups.
type Analyzer struct {
	threshold float64
}

func New(threshold float64) *Analyzer {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Analyzer{threshold: threshold}
}

// DuplicateGroups returns groups of records (each of size >= 2) judged
// likely to provide overlapping functionality. Cross-ecosystem
// comparisons are never attempted. Clustering is greedy and single-link
// in input order; the order dependence is part of the contract.
func (a *Analyzer) DuplicateGroups(records []depgraph.Record) [][]depgraph.Record {
	var groups [][]depgraph.Record

	for _, partition := range partitionByEcosystem(records) {
		if len(partition) < 2 {
			continue
		}

		for _, cluster := range a.clusterByName(partition) {
			confirmed := a.confirmByUsage(cluster)
			if len(confirmed) > 1 {
				groups = append(groups, confirmed)
			}
		}
	}

	return groups
}

// partitionByEcosystem splits records per ecosystem, preserving first-seen
// ecosystem order and input order within each partition.
func partitionByEcosystem(records []depgraph.Record) [][]depgraph.Record {
	byEco := make(map[string][]depgraph.Record)
	var ecoOrder []string
	for _, rec := range records {
		if _, seen := byEco[rec.Ecosystem]; !seen {
			ecoOrder = append(ecoOrder, rec.Ecosystem)
		}
		byEco[rec.Ecosystem] = append(byEco[rec.Ecosystem], rec)
	}

	partitions := make([][]depgraph.Record, 0, len(ecoOrder))
	for _, eco := range ecoOrder {
		partitions = append(partitions, byEco[eco])
	}
	return partitions
}

// clusterByName groups records whose names are pairwise similar to at
// least one existing cluster member. Single-link, insertion-order
// greedy: each unclustered record seeds a cluster and absorbs every
// later unclustered record within the threshold of any current member.
func (a *Analyzer) clusterByName(records []depgraph.Record) [][]depgraph.Record {
	n := len(records)

	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := NameSimilarity(records[i].Name, records[j].Name)
			sim[i][j] = s
			sim[j][i] = s
		}
	}

	var clusters [][]depgraph.Record
	visited := make([]bool, n)

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}

		group := []int{i}
		visited[i] = true

		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			// group may grow while j advances; later candidates are
			// checked against every member absorbed so far.
			for _, member := range group {
				if sim[member][j] >= a.threshold {
					group = append(group, j)
					visited[j] = true
					break
				}
			}
		}

		if len(group) > 1 {
			cluster := make([]depgraph.Record, 0, len(group))
			for _, idx := range group {
				cluster = append(cluster, records[idx])
			}
			clusters = append(clusters, cluster)
		}
	}

	return clusters
}

// confirmByUsage refines a name-based cluster with feature-usage
// overlap. With no usage data at all, or with usage data for only one
// member, the name-based cluster stands as-is. Otherwise members with
// recorded features are compared pairwise by Jaccard similarity and the
// group shrinks to those appearing in at least one qualifying pair;
// zero qualifying pairs rejects the cluster.
func (a *Analyzer) confirmByUsage(cluster []depgraph.Record) []depgraph.Record {
	withFeatures := make([]depgraph.Record, 0, len(cluster))
	for _, rec := range cluster {
		if rec.HasUsedFeatures() {
			withFeatures = append(withFeatures, rec)
		}
	}

	if len(withFeatures) <= 1 {
		return cluster
	}

	featureSets := make([]map[string]bool, len(withFeatures))
	for i, rec := range withFeatures {
		featureSets[i] = rec.FeatureSet()
	}

	included := make(map[int]bool)
	for i := 0; i < len(withFeatures); i++ {
		for j := i + 1; j < len(withFeatures); j++ {
			if jaccard(featureSets[i], featureSets[j]) >= a.threshold {
				included[i] = true
				included[j] = true
			}
		}
	}

	if len(included) <= 1 {
		return nil
	}

	indices := make([]int, 0, len(included))
	for idx := range included {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	confirmed := make([]depgraph.Record, 0, len(indices))
	for _, idx := range indices {
		confirmed = append(confirmed, withFeatures[idx])
	}
	return confirmed
}

// NameSimilarity scores two dependency names in [0,1]. Names are
// normalized first; normalized names shorter than 3 characters are
// compared exactly to avoid false positives on tiny names. The score is
// symmetric.
func NameSimilarity(name1, name2 string) float64 {
	norm1 := normalizeName(name1)
	norm2 := normalizeName(name2)

	if len(norm1) < 3 || len(norm2) < 3 {
		if norm1 == norm2 {
			return 1.0
		}
		return 0.0
	}

	if norm1 == norm2 {
		return 1.0
	}

	similarity := ratio(norm1, norm2)

	if strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1) {
		if similarity < substringFloor {
			similarity = substringFloor
		}
	}

	return similarity
}

// normalizeName lowercases a name, strips at most one ecosystem
// convention prefix and one suffix, and replaces separators with spaces.
func normalizeName(name string) string {
	norm := strings.ToLower(name)

	for _, prefix := range namePrefixes {
		if strings.HasPrefix(norm, prefix) {
			norm = norm[len(prefix):]
			break
		}
	}

	for _, suffix := range nameSuffixes {
		if strings.HasSuffix(norm, suffix) {
			norm = norm[:len(norm)-len(suffix)]
			break
		}
	}

	norm = strings.ReplaceAll(norm, "-", " ")
	norm = strings.ReplaceAll(norm, "_", " ")

	return norm
}
