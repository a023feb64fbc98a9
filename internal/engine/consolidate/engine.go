// Package consolidate composes the similarity, transitive and version
// consistency analyses into the engine's single entry point.
package consolidate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"depscope/internal/engine/depgraph"
	"depscope/internal/engine/recommend"
	"depscope/internal/engine/similarity"
	"depscope/internal/engine/transitive"
	"depscope/internal/engine/versioncheck"
	"depscope/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Options tune the analyses. Zero values fall back to the engine
// defaults, which match the reference thresholds.
type Options struct {
	SimilarityThreshold float64
	MinChainLength      int
	MinParents          int
	TopFindings         int
}

// Engine is safe for concurrent use: Analyze holds no shared mutable
// state across calls.
type Engine struct {
	similarity *similarity.Analyzer
	transitive *transitive.Analyzer
}

func New(opts Options) *Engine {
	trans := transitive.New()
	if opts.MinChainLength > 0 {
		trans.MinChainLength = opts.MinChainLength
	}
	if opts.MinParents > 0 {
		trans.MinParents = opts.MinParents
	}
	if opts.TopFindings > 0 {
		trans.TopN = opts.TopFindings
	}

	return &Engine{
		similarity: similarity.New(opts.SimilarityThreshold),
		transitive: trans,
	}
}

// Analyze runs the full consolidation analysis over one resolved
// dependency set. It is a pure function of its input: no I/O, no state
// kept across calls, and no errors for malformed input — dangling
// references and unparseable versions degrade gracefully. The three
// analyses read independent views of the input and run concurrently,
// each writing only its own result.
func (e *Engine) Analyze(ctx context.Context, records []depgraph.Record) (recommend.Recommendations, recommend.Metrics) {
	_, span := observability.Tracer.Start(ctx, "consolidate.Analyze",
		trace.WithAttributes(attribute.Int("dependency_count", len(records))))
	defer span.End()

	graph := depgraph.Build(records)

	var (
		wg              sync.WaitGroup
		groups          [][]depgraph.Record
		analysis        transitive.Analysis
		inconsistencies []versioncheck.Inconsistency
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		defer stageTimer("similarity")()
		groups = e.similarity.DuplicateGroups(records)
	}()
	go func() {
		defer wg.Done()
		defer stageTimer("transitive")()
		analysis = e.transitive.Analyze(graph)
	}()
	go func() {
		defer wg.Done()
		defer stageTimer("version_consistency")()
		inconsistencies = versioncheck.Check(records)
	}()
	wg.Wait()

	recommendations := recommend.Recommendations{
		Duplicates: recommend.Duplicates(groups),
		Transitive: recommend.Transitive(analysis),
		Versions:   recommend.Versions(inconsistencies),
	}
	metrics := recommend.BuildMetrics(records, groups, analysis, inconsistencies)

	observability.RecommendationsTotal.WithLabelValues("duplicates").Add(float64(len(recommendations.Duplicates)))
	observability.RecommendationsTotal.WithLabelValues("transitive").Add(float64(len(recommendations.Transitive)))
	observability.RecommendationsTotal.WithLabelValues("versions").Add(float64(len(recommendations.Versions)))

	slog.Debug("consolidation analysis complete",
		"dependencies", metrics.TotalDependencies,
		"duplicate_groups", metrics.DuplicateGroups,
		"chains", metrics.TransitiveChains,
		"version_inconsistencies", metrics.VersionInconsistencies,
		"recommendations", recommendations.Total(),
	)

	return recommendations, metrics
}

func stageTimer(stage string) func() {
	start := time.Now()
	return func() {
		observability.AnalysisDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}
