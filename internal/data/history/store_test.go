package history

import (
	"path/filepath"
	"testing"
	"time"

	"depscope/internal/engine/recommend"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(manifest string) Run {
	return Run{
		RunID:        uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ManifestPath: manifest,
		Metrics: recommend.Metrics{
			TotalDependencies:      12,
			DirectDependencies:     4,
			TransitiveDependencies: 8,
			DuplicateGroups:        1,
			TransitiveChains:       2,
			VersionInconsistencies: 1,
			PotentialRemovals:      1,
			EstimatedReduction: recommend.Reduction{
				PotentialRemovals: 3,
				ReductionPercent:  25.0,
			},
		},
		Recommendations: recommend.Recommendations{
			Duplicates: []recommend.Recommendation{{
				Type:        recommend.TypeDuplicate,
				Description: "Multiple dependencies with similar functionality found: lodash, lodash-es",
				Effort:      recommend.Medium,
				Savings:     recommend.High,
			}},
		},
	}
}

func TestSaveAndRecentRuns(t *testing.T) {
	store := openTestStore(t)

	run := sampleRun("deps.json")
	require.NoError(t, store.SaveRun(run))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, "deps.json", got.ManifestPath)
	assert.Equal(t, 12, got.Metrics.TotalDependencies)
	assert.Equal(t, 25.0, got.Metrics.EstimatedReduction.ReductionPercent)
	require.Len(t, got.Recommendations.Duplicates, 1)
	assert.Equal(t, recommend.TypeDuplicate, got.Recommendations.Duplicates[0].Type)
}

func TestRecentRunsOrdering(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		run := sampleRun("deps.json")
		run.Timestamp = base.Add(time.Duration(i) * time.Hour)
		ids = append(ids, run.RunID)
		require.NoError(t, store.SaveRun(run))
	}

	runs, err := store.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].RunID)
	assert.Equal(t, ids[1], runs[1].RunID)
}

func TestSaveRunRejectsEmptyID(t *testing.T) {
	store := openTestStore(t)

	run := sampleRun("deps.json")
	run.RunID = "  "
	require.Error(t, store.SaveRun(run))
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun("deps.json")
		run.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.SaveRun(run))
	}

	require.NoError(t, store.Prune(2))

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestOpenRejectsDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(sampleRun("deps.json")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.RecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
