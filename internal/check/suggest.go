package check

import "prog8core/internal/scope"

// suggestName finds the closest visible name to the misspelled name the
// checker just rejected, for attachment as a NameError's WithHelp text.
// Returns "" when nothing within the distance threshold is visible.
func suggestName(sc *scope.Scope, name string) string {
	if sc == nil {
		return ""
	}
	best := ""
	bestDist := -1
	threshold := maxSuggestDistance(name)
	for _, candidate := range sc.VisibleNames() {
		if candidate == name {
			continue
		}
		d := levenshtein(name, candidate)
		if d > threshold {
			continue
		}
		if bestDist == -1 || d < bestDist {
			bestDist, best = d, candidate
		}
	}
	return best
}

// maxSuggestDistance scales the accepted edit distance with name length so a
// one-letter typo in a long identifier still matches, while short names
// don't spuriously suggest unrelated short names.
func maxSuggestDistance(name string) int {
	switch {
	case len(name) <= 3:
		return 1
	case len(name) <= 8:
		return 2
	default:
		return 3
	}
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
