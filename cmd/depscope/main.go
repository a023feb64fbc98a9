// # cmd/depscope/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"depscope/internal/core/config"
	"depscope/internal/data/history"
	"depscope/internal/data/manifest"
	"depscope/internal/engine/consolidate"
	"depscope/internal/shared/observability"
	"depscope/internal/ui/report"
	"depscope/internal/watcher"

	"github.com/google/uuid"
)

var (
	configPath  = flag.String("config", "./depscope.toml", "Path to config file")
	input       = flag.String("input", "", "Manifest file to analyze (overrides config)")
	format      = flag.String("format", "", "Report format: markdown or json (overrides config)")
	out         = flag.String("out", "", "Write report to file instead of stdout (overrides config)")
	watch       = flag.Bool("watch", false, "Re-run analysis when the manifest changes")
	metricsAddr = flag.String("metrics-addr", "", "Serve /metrics and /health on this address in watch mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	version     = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("depscope v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg)

	app, err := newApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*watch {
		if err := app.RunOnce(ctx); err != nil {
			slog.Error("analysis failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runWatch(ctx, cfg, app); err != nil && ctx.Err() == nil {
		slog.Error("watch mode failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig falls back to built-in defaults when the default config
// path does not exist; an explicitly named config must load.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./depscope.toml" && os.IsNotExist(err) {
			slog.Debug("no config file found, using defaults")
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if *input != "" {
		cfg.Input.Manifest = *input
	}
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *out != "" {
		cfg.Report.Out = *out
	}
	if *metricsAddr != "" {
		cfg.Observability.MetricsAddr = *metricsAddr
	}
}

func runWatch(ctx context.Context, cfg *config.Config, app *App) error {
	if cfg.Observability.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Observability.MetricsAddr)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	shutdownTracing, err := observability.InitTracing(ctx, VERSION)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = shutdownTracing(shutdownCtx)
		}()
	}

	// Initial run before waiting for changes.
	if err := app.RunOnce(ctx); err != nil {
		slog.Error("initial analysis failed", "error", err)
	}

	w, err := watcher.New(cfg.Input.Manifest, cfg.Watch.Debounce, cfg.Watch.RunsPerMinute, func() {
		observability.ManifestReloadsTotal.Inc()
		if err := app.RunOnce(ctx); err != nil {
			slog.Error("analysis failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	return w.Run(ctx)
}

// App ties the loader, engine, renderer and history store together.
type App struct {
	cfg    *config.Config
	loader *manifest.Loader
	engine *consolidate.Engine
	store  *history.Store
}

func newApp(cfg *config.Config) (*App, error) {
	loader, err := manifest.NewLoader(cfg.Exclude.Names)
	if err != nil {
		return nil, err
	}

	engine := consolidate.New(consolidate.Options{
		SimilarityThreshold: cfg.Analysis.SimilarityThreshold,
		MinChainLength:      cfg.Analysis.MinChainLength,
		MinParents:          cfg.Analysis.MinParents,
		TopFindings:         cfg.Analysis.TopFindings,
	})

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
	}

	return &App{cfg: cfg, loader: loader, engine: engine, store: store}, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// RunOnce loads the manifest, analyzes it, renders the report and
// records the run.
func (a *App) RunOnce(ctx context.Context) error {
	start := time.Now()

	records, err := a.loader.Load(a.cfg.Input.Manifest)
	if err != nil {
		return err
	}

	recommendations, metrics := a.engine.Analyze(ctx, records)

	env := report.Envelope{
		RunID:           uuid.NewString(),
		GeneratedAt:     time.Now().UTC(),
		Version:         VERSION,
		ManifestPath:    a.cfg.Input.Manifest,
		Recommendations: recommendations,
		Metrics:         metrics,
	}

	rendered, err := report.Render(a.cfg.Report.Format, env)
	if err != nil {
		return err
	}

	if a.cfg.Report.Out != "" {
		if err := os.WriteFile(a.cfg.Report.Out, rendered, 0o644); err != nil {
			return fmt.Errorf("write report %q: %w", a.cfg.Report.Out, err)
		}
	} else {
		fmt.Print(string(rendered))
	}

	a.recordRun(env)

	slog.Info("analysis complete",
		"run_id", env.RunID,
		"dependencies", metrics.TotalDependencies,
		"recommendations", recommendations.Total(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// recordRun persists history on a best-effort basis: a broken history
// store must not fail the analysis.
func (a *App) recordRun(env report.Envelope) {
	if a.store == nil {
		return
	}

	run := history.Run{
		RunID:           env.RunID,
		Timestamp:       env.GeneratedAt,
		ManifestPath:    env.ManifestPath,
		Metrics:         env.Metrics,
		Recommendations: env.Recommendations,
	}
	if err := a.store.SaveRun(run); err != nil {
		observability.HistoryWriteErrorsTotal.Inc()
		slog.Warn("failed to record run history", "error", err)
		return
	}
	if err := a.store.Prune(a.cfg.History.Keep); err != nil {
		slog.Warn("failed to prune run history", "error", err)
	}
}
