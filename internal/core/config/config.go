package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Input         Input         `toml:"input"`
	Exclude       Exclude       `toml:"exclude"`
	Analysis      Analysis      `toml:"analysis"`
	Watch         Watch         `toml:"watch"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
	Report        Report        `toml:"report"`
}

type Input struct {
	Manifest string `toml:"manifest"`
}

type Exclude struct {
	Names []string `toml:"names"` // Glob patterns for dependency names to drop before analysis
}

type Analysis struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MinChainLength      int     `toml:"min_chain_length"`
	MinParents          int     `toml:"min_parents"`
	TopFindings         int     `toml:"top_findings"`
}

type Watch struct {
	Debounce      time.Duration `toml:"debounce"`
	RunsPerMinute int           `toml:"runs_per_minute"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	Keep    int    `toml:"keep"`
}

type Observability struct {
	MetricsAddr string `toml:"metrics_addr"`
}

type Report struct {
	Format string `toml:"format"`
	Out    string `toml:"out"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateAnalysis(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}
	if err := validateReport(&cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Input.Manifest) == "" {
		cfg.Input.Manifest = "deps.json"
	}

	if cfg.Analysis.SimilarityThreshold == 0 {
		cfg.Analysis.SimilarityThreshold = 0.75
	}
	if cfg.Analysis.MinChainLength == 0 {
		cfg.Analysis.MinChainLength = 4
	}
	if cfg.Analysis.MinParents == 0 {
		cfg.Analysis.MinParents = 3
	}
	if cfg.Analysis.TopFindings == 0 {
		cfg.Analysis.TopFindings = 10
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RunsPerMinute == 0 {
		cfg.Watch.RunsPerMinute = 12
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/depscope.db"
	}
	if cfg.History.Keep == 0 {
		cfg.History.Keep = 50
	}

	if strings.TrimSpace(cfg.Report.Format) == "" {
		cfg.Report.Format = "markdown"
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	a := cfg.Analysis
	if a.SimilarityThreshold <= 0 || a.SimilarityThreshold > 1 {
		return fmt.Errorf("analysis.similarity_threshold must be in (0, 1], got %v", a.SimilarityThreshold)
	}
	if a.MinChainLength < 2 {
		return fmt.Errorf("analysis.min_chain_length must be >= 2, got %d", a.MinChainLength)
	}
	if a.MinParents < 1 {
		return fmt.Errorf("analysis.min_parents must be >= 1, got %d", a.MinParents)
	}
	if a.TopFindings < 1 {
		return fmt.Errorf("analysis.top_findings must be >= 1, got %d", a.TopFindings)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history.enabled=true")
	}
	if cfg.History.Keep < 1 {
		return fmt.Errorf("history.keep must be >= 1, got %d", cfg.History.Keep)
	}
	return nil
}

func validateReport(cfg *Config) error {
	format := strings.ToLower(strings.TrimSpace(cfg.Report.Format))
	switch format {
	case "markdown", "json":
	default:
		return fmt.Errorf("report.format must be one of: markdown, json")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Names {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.names[%d] must not be empty", i)
		}
	}
	return nil
}
