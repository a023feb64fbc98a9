// Package manifest reads resolved dependency facts produced by external
// dependency parsers. The engine itself performs no I/O; everything the
// analysis consumes enters through this loader.
package manifest

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"depscope/internal/core/errors"
	"depscope/internal/engine/depgraph"
	"depscope/internal/shared/observability"

	"github.com/gobwas/glob"
)

type Loader struct {
	exclude []glob.Glob
}

// NewLoader compiles the name exclude patterns. An invalid pattern is a
// configuration problem and fails loudly.
func NewLoader(excludeNames []string) (*Loader, error) {
	compiled := make([]glob.Glob, 0, len(excludeNames))
	for _, pattern := range excludeNames {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+pattern)
		}
		compiled = append(compiled, g)
	}
	return &Loader{exclude: compiled}, nil
}

// Load reads a JSON manifest file and returns the records that survive
// the exclude filters.
func (l *Loader) Load(path string) ([]depgraph.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeNotFound, "manifest not found"),
				errors.CtxPath, path)
		}
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeInternal, "open manifest"),
			errors.CtxPath, path)
	}
	defer f.Close()

	records, err := l.Decode(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return records, nil
}

// Decode parses a JSON array of dependency records. Records without a
// name are rejected: downstream analyses key everything by name.
func (l *Loader) Decode(r io.Reader) ([]depgraph.Record, error) {
	var records []depgraph.Record
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(err, errors.CodeDecodeError, "decode dependency manifest")
	}

	for i, rec := range records {
		if rec.Name == "" {
			derr := &errors.DomainError{Code: errors.CodeValidationError, Message: "manifest record missing name"}
			return nil, derr.WithContext("index", i)
		}
	}

	kept := make([]depgraph.Record, 0, len(records))
	excluded := 0
	for _, rec := range records {
		if l.isExcluded(rec.Name) {
			excluded++
			continue
		}
		kept = append(kept, rec)
	}

	if excluded > 0 {
		observability.ManifestRecordsExcluded.Add(float64(excluded))
		slog.Debug("manifest records excluded", "count", excluded)
	}

	return kept, nil
}

func (l *Loader) isExcluded(name string) bool {
	for _, g := range l.exclude {
		if g.Match(name) {
			return true
		}
	}
	return false
}
