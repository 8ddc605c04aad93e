package result

import (
	"slices"

	"github.com/bastiangx/rankserve/pkg/match"
)

// limitURLs drops URL matches beyond maxURLs. When there are not enough
// search matches to fill maxMatches, the URL allowance grows to fill the gap.
func limitURLs(ms []match.Match, maxMatches, maxURLs int, cmp Comparator) []match.Match {
	searches := 0
	for i := range ms {
		if ms[i].Type.IsSearch() && cmp.DemotedRelevance(&ms[i]) > 0 {
			searches++
		}
	}
	if maxMatches > searches && maxMatches-searches > maxURLs {
		maxURLs = maxMatches - searches
	}

	urls := 0
	return slices.DeleteFunc(ms, func(m match.Match) bool {
		if m.Type.IsSearch() {
			return false
		}
		urls++
		return urls > maxURLs
	})
}

// numMatches returns how many of the sorted matches survive the active count policy.
func (r *Result) numMatches(zeroSuggest bool, cmp Comparator) int {
	if !zeroSuggest && r.opts.DynamicMaxMatches {
		return numMatchesPerURLCount(r.matches, r.opts.MaxMatches, r.opts.DynamicMaxMatchesLimit, r.opts.DynamicURLCutoff, cmp)
	}
	return numMatchesStatic(r.matches, r.opts.maxMatches(zeroSuggest), cmp)
}

// numMatchesStatic stops at the policy cap or the first non-positive demoted relevance.
func numMatchesStatic(ms []match.Match, limit int, cmp Comparator) int {
	n := 0
	for n < len(ms) && n < limit && cmp.DemotedRelevance(&ms[n]) > 0 {
		n++
	}
	return n
}

// numMatchesPerURLCount allows up to increased matches while no more than
// urlCutoff URL matches have been seen, and base matches after that.
func numMatchesPerURLCount(ms []match.Match, base, increased, urlCutoff int, cmp Comparator) int {
	increased = max(increased, base)
	n, urls := 0, 0
	for i := range ms {
		if cmp.DemotedRelevance(&ms[i]) <= 0 {
			break
		}
		if !ms[i].Type.IsSearch() {
			urls++
		}
		limit := base
		if urls <= urlCutoff {
			limit = increased
		}
		if n >= limit {
			break
		}
		n++
	}
	return n
}
