// Package version provides a tolerant version parser and a total order
// over version strings. It accepts non-semver input (missing components,
// suffixes, non-numeric tokens) and never fails: anything unparseable
// degrades to zero components.
package version

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// suffix separators stripped from a component before numeric parsing,
// checked in this order ("3-rc1" -> "3").
var suffixSeparators = []string{"-", "+", "~"}

const cacheSize = 4096

// parseCache memoizes parsed tuples. Parsing is deterministic, so the
// cache never changes results, only repeated-string cost.
var parseCache, _ = lru.New[string, []int](cacheSize)

// Parse converts a version string into a comparable integer tuple.
// A leading "v" is stripped, components are split on ".", trailing
// suffixes introduced by "-", "+" or "~" are dropped, and non-numeric
// components become 0. The result always has at least 3 components.
func Parse(v string) []int {
	if cached, ok := parseCache.Get(v); ok {
		out := make([]int, len(cached))
		copy(out, cached)
		return out
	}

	trimmed := strings.TrimPrefix(v, "v")

	parts := make([]int, 0, 3)
	for _, component := range strings.Split(trimmed, ".") {
		for _, sep := range suffixSeparators {
			if idx := strings.Index(component, sep); idx >= 0 {
				component = component[:idx]
				break
			}
		}

		n, err := strconv.Atoi(component)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}

	for len(parts) < 3 {
		parts = append(parts, 0)
	}

	stored := make([]int, len(parts))
	copy(stored, parts)
	parseCache.Add(v, stored)

	return parts
}

// Compare returns -1, 0 or 1 ordering a against b. Components are
// compared pairwise with zero padding; when all compared components are
// equal, the version with more components is greater ("1.2.3.0" >
// "1.2.3"). If neither side yields a usable tuple the comparison falls
// back to lexicographic order.
func Compare(a, b string) int {
	av := Parse(a)
	bv := Parse(b)

	if len(av) == 0 && len(bv) == 0 {
		return strings.Compare(a, b)
	}

	n := len(av)
	if len(bv) > n {
		n = len(bv)
	}

	for i := 0; i < n; i++ {
		x, y := 0, 0
		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(av) < len(bv):
		return -1
	case len(av) > len(bv):
		return 1
	}
	return 0
}

// Max returns the highest version among candidates according to
// Compare, or "" for an empty slice.
func Max(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if Compare(c, best) > 0 {
			best = c
		}
	}
	return best
}
