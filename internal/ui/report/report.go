// Package report renders one analysis run for humans (markdown) or
// tooling (JSON).
package report

import (
	"fmt"
	"time"

	"depscope/internal/engine/recommend"
)

// Envelope wraps one run's output with enough provenance to compare
// runs later.
type Envelope struct {
	RunID           string                    `json:"run_id"`
	GeneratedAt     time.Time                 `json:"generated_at"`
	Version         string                    `json:"version"`
	ManifestPath    string                    `json:"manifest_path"`
	Recommendations recommend.Recommendations `json:"recommendations"`
	Metrics         recommend.Metrics         `json:"metrics"`
}

// Render dispatches on format. Formats are validated by config, so an
// unknown value here is a programming error, not user input.
func Render(format string, env Envelope) ([]byte, error) {
	switch format {
	case "markdown":
		return RenderMarkdown(env), nil
	case "json":
		return RenderJSON(env)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
