package similarity

// ratio computes the Ratcliff/Obershelp similarity of two strings: twice
// the number of matching characters over the combined length, where
// matches are found by recursively locating the longest common substring
// and matching the pieces to its left and right. Equivalent to Python's
// difflib.SequenceMatcher ratio without junk heuristics, which the
// clustering thresholds were tuned against.
func ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ar, br)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingRunes(a[:ai], b[:bi])
	matched += matchingRunes(a[ai+size:], b[bi+size:])
	return matched
}

// longestMatch returns the leftmost longest common substring of a and b
// as (start in a, start in b, length).
func longestMatch(a, b []rune) (int, int, int) {
	bestA, bestB, bestSize := 0, 0, 0
	prev := make(map[int]int)

	for i := 0; i < len(a); i++ {
		current := make(map[int]int)
		for j := 0; j < len(b); j++ {
			if a[i] != b[j] {
				continue
			}
			length := prev[j-1] + 1
			current[j] = length
			if length > bestSize {
				bestA = i - length + 1
				bestB = j - length + 1
				bestSize = length
			}
		}
		prev = current
	}

	return bestA, bestB, bestSize
}

// jaccard computes |A∩B| / |A∪B| for two feature sets. Empty sets never
// count as similar.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for f := range a {
		if b[f] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
