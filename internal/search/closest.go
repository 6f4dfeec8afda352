package search

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Closest returns the candidate nearest to s by edit distance, or "" when none
// is close enough to be a typo of s
func Closest(s string, candidates []string) string {
	if s == "" {
		return ""
	}

	best, bestDist := "", -1
	for _, cand := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(s), strings.ToLower(cand))
		if bestDist < 0 || d < bestDist {
			best, bestDist = cand, d
		}
	}
	if bestDist < 0 || bestDist > max(2, len(best)/3) {
		return ""
	}
	return best
}
