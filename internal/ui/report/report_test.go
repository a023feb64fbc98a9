package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"depscope/internal/engine/recommend"
)

func sampleEnvelope() Envelope {
	return Envelope{
		RunID:        "0d1f3c9a-8f4e-4a0a-9a52-0c7a2d3f8e11",
		GeneratedAt:  time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		Version:      "1.0.0",
		ManifestPath: "deps.json",
		Recommendations: recommend.Recommendations{
			Duplicates: []recommend.Recommendation{{
				Type:            recommend.TypeDuplicate,
				Description:     "Multiple dependencies with similar functionality found: lodash, lodash-es",
				SuggestedAction: "Consider consolidating on lodash and removing lodash-es",
				Effort:          recommend.Medium,
				Savings:         recommend.High,
			}},
			Versions: []recommend.Recommendation{{
				Type:            recommend.TypeVersionInconsistency,
				Description:     "left-pad is used with 2 different versions",
				SuggestedAction: "Standardize on version 1.3.0",
				Effort:          recommend.Low,
				Savings:         recommend.Medium,
			}},
		},
		Metrics: recommend.Metrics{
			TotalDependencies:      10,
			DirectDependencies:     4,
			TransitiveDependencies: 6,
			DuplicateGroups:        1,
			VersionInconsistencies: 1,
			EstimatedReduction: recommend.Reduction{
				PotentialRemovals: 1,
				ReductionPercent:  10.0,
			},
			Ecosystems:      []string{"nodejs"},
			EcosystemCounts: map[string]int{"nodejs": 10},
		},
	}
}

func TestRenderMarkdown(t *testing.T) {
	out := string(RenderMarkdown(sampleEnvelope()))

	for _, want := range []string{
		"# Dependency Consolidation Report",
		"## Summary",
		"## Duplicate Functionality",
		"## Version Inconsistencies",
		"Consider consolidating on lodash",
		"Standardize on version 1.3.0",
		"| Total dependencies | 10 |",
		"| Estimated reduction | 10.00% |",
		"nodejs: 10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	if strings.Contains(out, "## Transitive Dependencies") {
		t.Error("empty section should be omitted")
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	env := Envelope{RunID: "x", GeneratedAt: time.Now()}
	out := string(RenderMarkdown(env))

	if !strings.Contains(out, "No consolidation opportunities found.") {
		t.Error("expected empty-run notice")
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(sampleEnvelope())
	if err != nil {
		t.Fatal(err)
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.RunID != "0d1f3c9a-8f4e-4a0a-9a52-0c7a2d3f8e11" {
		t.Errorf("run id = %q", decoded.RunID)
	}
	if len(decoded.Recommendations.Duplicates) != 1 {
		t.Errorf("duplicates = %d", len(decoded.Recommendations.Duplicates))
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render("xml", sampleEnvelope()); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderDispatch(t *testing.T) {
	md, err := Render("markdown", sampleEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(md), "# Dependency Consolidation Report") {
		t.Error("markdown dispatch failed")
	}

	js, err := Render("json", sampleEnvelope())
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(js) {
		t.Error("json dispatch produced invalid JSON")
	}
}
