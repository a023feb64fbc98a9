package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"depscope/internal/data/history"
	"depscope/internal/data/manifest"
	"depscope/internal/engine/consolidate"
	"depscope/internal/ui/report"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[
  {"name": "lodash", "version": "4.17.21", "ecosystem": "nodejs", "is_direct": true, "used_features": ["map", "filter", "reduce", "zip"]},
  {"name": "lodash-es", "version": "4.17.0", "ecosystem": "nodejs", "parent": "build-tool", "used_features": ["map", "filter", "reduce"]},
  {"name": "app", "version": "1.0.0", "ecosystem": "nodejs", "is_direct": true},
  {"name": "build-tool", "version": "2.0.0", "ecosystem": "nodejs", "is_direct": true},
  {"name": "dep-a", "version": "1.0.0", "ecosystem": "nodejs", "parent": "app"},
  {"name": "dep-b", "version": "1.0.0", "ecosystem": "nodejs", "parent": "dep-a"},
  {"name": "dep-c", "version": "1.0.0", "ecosystem": "nodejs", "parent": "dep-b"},
  {"name": "left-pad", "version": "1.3.0", "ecosystem": "nodejs", "parent": "app"},
  {"name": "left-pad", "version": "1.1.0", "ecosystem": "nodejs", "parent": "dep-a"},
  {"name": "@types/node", "version": "20.0.0", "ecosystem": "nodejs", "parent": "build-tool"}
]`

func TestFullPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	manifestPath := filepath.Join(tmpDir, "deps.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(testManifest), 0o644))

	loader, err := manifest.NewLoader([]string{"@types/*"})
	require.NoError(t, err)

	records, err := loader.Load(manifestPath)
	require.NoError(t, err)
	assert.Len(t, records, 9, "one record should be excluded by glob")

	engine := consolidate.New(consolidate.Options{})
	recommendations, metrics := engine.Analyze(context.Background(), records)

	// lodash and lodash-es collapse into one duplicate group.
	require.NotEmpty(t, recommendations.Duplicates)
	assert.Contains(t, recommendations.Duplicates[0].Description, "lodash")

	// app -> dep-a -> dep-b -> dep-c reaches the chain threshold.
	assert.NotEmpty(t, recommendations.Transitive)

	// left-pad appears with two versions; the first record wins in the
	// graph but the consistency check sees both.
	require.NotEmpty(t, recommendations.Versions)
	assert.Contains(t, recommendations.Versions[0].SuggestedAction, "1.3.0")

	assert.Equal(t, 9, metrics.TotalDependencies)
	assert.Greater(t, metrics.EstimatedReduction.PotentialRemovals, 0)

	env := report.Envelope{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Version:         "test",
		ManifestPath:    manifestPath,
		Recommendations: recommendations,
		Metrics:         metrics,
	}

	markdown, err := report.Render("markdown", env)
	require.NoError(t, err)
	assert.Contains(t, string(markdown), "# Dependency Consolidation Report")
	assert.Contains(t, string(markdown), "lodash")

	store, err := history.Open(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveRun(history.Run{
		RunID:           env.RunID,
		Timestamp:       env.GeneratedAt,
		ManifestPath:    env.ManifestPath,
		Metrics:         metrics,
		Recommendations: recommendations,
	}))

	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, env.RunID, runs[0].RunID)
	assert.Equal(t, metrics.TotalDependencies, runs[0].Metrics.TotalDependencies)
}

func TestPipelineIsDeterministic(t *testing.T) {
	loader, err := manifest.NewLoader(nil)
	require.NoError(t, err)

	records, err := loader.Decode(strings.NewReader(testManifest))
	require.NoError(t, err)

	engine := consolidate.New(consolidate.Options{})

	first, firstMetrics := engine.Analyze(context.Background(), records)
	second, secondMetrics := engine.Analyze(context.Background(), records)

	assert.Equal(t, first, second)
	assert.Equal(t, firstMetrics, secondMetrics)
}
