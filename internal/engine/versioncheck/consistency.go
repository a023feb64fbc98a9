// Package versioncheck flags dependency names resolved to more than one
// version within a single analyzed set.
package versioncheck

import (
	"sort"

	"depscope/internal/engine/depgraph"
	"depscope/internal/engine/version"
)

// OriginDirect and OriginUnknown label where a version requirement came
// from when no parent is recorded.
const (
	OriginDirect  = "direct"
	OriginUnknown = "unknown"
)

// Inconsistency reports one name resolved to multiple versions.
type Inconsistency struct {
	Name          string              `json:"name"`
	Ecosystem     string              `json:"ecosystem"`
	Versions      []string            `json:"versions"`
	LatestVersion string              `json:"latest_version"`
	VersionPaths  map[string][]string `json:"version_paths"`
	VersionCount  int                 `json:"version_count"`
	Direct        bool                `json:"is_direct"`
}

// Check groups records by name and reports every group holding two or
// more distinct version strings. Versions are sorted ascending by the
// version total order, so LatestVersion is the highest. Results are
// ordered direct-first, then by distinct version count descending.
func Check(records []depgraph.Record) []Inconsistency {
	byName := make(map[string][]depgraph.Record)
	var nameOrder []string
	for _, rec := range records {
		if _, seen := byName[rec.Name]; !seen {
			nameOrder = append(nameOrder, rec.Name)
		}
		byName[rec.Name] = append(byName[rec.Name], rec)
	}

	var inconsistencies []Inconsistency

	for _, name := range nameOrder {
		group := byName[name]
		if len(group) <= 1 {
			continue
		}

		versions := distinctVersions(group)
		if len(versions) <= 1 {
			continue
		}

		sort.SliceStable(versions, func(i, j int) bool {
			return version.Compare(versions[i], versions[j]) < 0
		})

		paths := make(map[string][]string)
		for _, rec := range group {
			paths[rec.Version] = append(paths[rec.Version], origin(rec))
		}

		direct := false
		for _, rec := range group {
			if rec.Direct {
				direct = true
				break
			}
		}

		inconsistencies = append(inconsistencies, Inconsistency{
			Name:          name,
			Ecosystem:     group[0].Ecosystem,
			Versions:      versions,
			LatestVersion: versions[len(versions)-1],
			VersionPaths:  paths,
			VersionCount:  len(versions),
			Direct:        direct,
		})
	}

	sort.SliceStable(inconsistencies, func(i, j int) bool {
		if inconsistencies[i].Direct != inconsistencies[j].Direct {
			return inconsistencies[i].Direct
		}
		return inconsistencies[i].VersionCount > inconsistencies[j].VersionCount
	})

	return inconsistencies
}

// distinctVersions keeps first-seen order so equal-ranking versions sort
// deterministically.
func distinctVersions(group []depgraph.Record) []string {
	seen := make(map[string]bool, len(group))
	var versions []string
	for _, rec := range group {
		if !seen[rec.Version] {
			seen[rec.Version] = true
			versions = append(versions, rec.Version)
		}
	}
	return versions
}

func origin(rec depgraph.Record) string {
	switch {
	case rec.Parent != "":
		return rec.Parent
	case rec.Direct:
		return OriginDirect
	default:
		return OriginUnknown
	}
}
