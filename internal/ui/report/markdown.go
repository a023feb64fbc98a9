package report

import (
	"fmt"
	"strings"

	"depscope/internal/engine/recommend"
)

// RenderMarkdown produces the human-facing report. Sections with no
// findings are omitted rather than rendered empty.
func RenderMarkdown(env Envelope) []byte {
	var buf strings.Builder

	buf.WriteString("# Dependency Consolidation Report\n\n")
	fmt.Fprintf(&buf, "- Run: `%s`\n", env.RunID)
	fmt.Fprintf(&buf, "- Generated: %s\n", env.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
	if env.ManifestPath != "" {
		fmt.Fprintf(&buf, "- Manifest: `%s`\n", env.ManifestPath)
	}
	if env.Version != "" {
		fmt.Fprintf(&buf, "- depscope %s\n", env.Version)
	}
	buf.WriteString("\n")

	writeSummary(&buf, env.Metrics)
	writeSection(&buf, "Duplicate Functionality", env.Recommendations.Duplicates)
	writeSection(&buf, "Transitive Dependencies", env.Recommendations.Transitive)
	writeSection(&buf, "Version Inconsistencies", env.Recommendations.Versions)

	if env.Recommendations.Total() == 0 {
		buf.WriteString("No consolidation opportunities found.\n")
	}

	return []byte(buf.String())
}

func writeSummary(buf *strings.Builder, m recommend.Metrics) {
	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("| --- | --- |\n")
	fmt.Fprintf(buf, "| Total dependencies | %d |\n", m.TotalDependencies)
	fmt.Fprintf(buf, "| Direct | %d |\n", m.DirectDependencies)
	fmt.Fprintf(buf, "| Transitive | %d |\n", m.TransitiveDependencies)
	fmt.Fprintf(buf, "| Duplicate groups | %d |\n", m.DuplicateGroups)
	fmt.Fprintf(buf, "| Long chains | %d |\n", m.TransitiveChains)
	fmt.Fprintf(buf, "| Version inconsistencies | %d |\n", m.VersionInconsistencies)
	fmt.Fprintf(buf, "| Potential removals | %d |\n", m.EstimatedReduction.PotentialRemovals)
	fmt.Fprintf(buf, "| Estimated reduction | %.2f%% |\n", m.EstimatedReduction.ReductionPercent)
	buf.WriteString("\n")

	if len(m.Ecosystems) > 0 {
		parts := make([]string, 0, len(m.Ecosystems))
		for _, eco := range m.Ecosystems {
			label := eco
			if label == "" {
				label = "(unspecified)"
			}
			parts = append(parts, fmt.Sprintf("%s: %d", label, m.EcosystemCounts[eco]))
		}
		fmt.Fprintf(buf, "Ecosystems: %s\n\n", strings.Join(parts, ", "))
	}
}

func writeSection(buf *strings.Builder, title string, recs []recommend.Recommendation) {
	if len(recs) == 0 {
		return
	}

	fmt.Fprintf(buf, "## %s\n\n", title)
	for _, rec := range recs {
		fmt.Fprintf(buf, "- **%s**\n", rec.Description)
		fmt.Fprintf(buf, "  - Suggested: %s\n", rec.SuggestedAction)
		fmt.Fprintf(buf, "  - Effort: %s, savings: %s\n", rec.Effort, rec.Savings)
	}
	buf.WriteString("\n")
}
