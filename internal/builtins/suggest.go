package builtins

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxEditDistance bounds the typo distance of a suggestion that is not a
// fuzzy subsequence match.
const maxEditDistance = 2

// Suggest returns the candidate closest to name, if any is close enough to
// be worth a "did you mean".
func Suggest(name string, candidates []string) (string, bool) {
	if name == "" || len(candidates) == 0 {
		return "", false
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}
	best, bestDist := "", maxEditDistance+1
	for _, c := range candidates {
		d := fuzzy.LevenshteinDistance(name, c)
		if d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	if bestDist > maxEditDistance {
		return "", false
	}
	return best, true
}

// DidYouMean formats a suggestion suffix for a diagnostic message, or "".
func DidYouMean(name string, candidates []string) string {
	if s, ok := Suggest(name, candidates); ok {
		return "; did you mean '" + s + "'?"
	}
	return ""
}
