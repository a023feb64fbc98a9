// Package history persists per-run analysis summaries. The engine
// itself never writes here; the CLI records a row after each completed
// Analyze call so runs can be compared over time.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"depscope/internal/engine/recommend"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one persisted analysis summary.
type Run struct {
	RunID           string
	Timestamp       time.Time
	ManifestPath    string
	Metrics         recommend.Metrics
	Recommendations recommend.Recommendations
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun inserts one analysis summary row.
func (s *Store) SaveRun(run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.RunID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	recsJSON, err := json.Marshal(run.Recommendations)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}

	query := `
INSERT INTO analyses (
  run_id, ts_utc, manifest_path, total_dependencies, direct_dependencies,
  transitive_dependencies, duplicate_groups, transitive_chains,
  version_inconsistencies, potential_removals, reduction_percent,
  recommendations_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.ManifestPath,
			run.Metrics.TotalDependencies,
			run.Metrics.DirectDependencies,
			run.Metrics.TransitiveDependencies,
			run.Metrics.DuplicateGroups,
			run.Metrics.TransitiveChains,
			run.Metrics.VersionInconsistencies,
			run.Metrics.EstimatedReduction.PotentialRemovals,
			run.Metrics.EstimatedReduction.ReductionPercent,
			string(recsJSON),
		)
		return err
	})
}

// RecentRuns returns up to limit summaries, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit < 1 {
		limit = 1
	}

	rows, err := s.db.Query(`
SELECT run_id, ts_utc, manifest_path, total_dependencies, direct_dependencies,
       transitive_dependencies, duplicate_groups, transitive_chains,
       version_inconsistencies, potential_removals, reduction_percent,
       recommendations_json
FROM analyses
ORDER BY ts_utc DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			ts       string
			recsJSON string
		)
		if err := rows.Scan(
			&run.RunID,
			&ts,
			&run.ManifestPath,
			&run.Metrics.TotalDependencies,
			&run.Metrics.DirectDependencies,
			&run.Metrics.TransitiveDependencies,
			&run.Metrics.DuplicateGroups,
			&run.Metrics.TransitiveChains,
			&run.Metrics.VersionInconsistencies,
			&run.Metrics.EstimatedReduction.PotentialRemovals,
			&run.Metrics.EstimatedReduction.ReductionPercent,
			&recsJSON,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			run.Timestamp = parsed
		}
		if err := json.Unmarshal([]byte(recsJSON), &run.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations for run %s: %w", run.RunID, err)
		}

		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Prune keeps the newest keep rows and deletes the rest.
func (s *Store) Prune(keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		return fmt.Errorf("keep must be >= 1, got %d", keep)
	}

	return s.withRetry("prune runs", func() error {
		_, err := s.db.Exec(`
DELETE FROM analyses
WHERE run_id NOT IN (SELECT run_id FROM analyses ORDER BY ts_utc DESC LIMIT ?)`, keep)
		return err
	})
}

func (s *Store) withRetry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "SQLITE_BUSY") && !strings.Contains(err.Error(), "database is locked") {
			break
		}
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, err)
}
