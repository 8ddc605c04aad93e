package result

import (
	"slices"

	"github.com/bastiangx/rankserve/pkg/match"
)

// Deduplicate collapses matches that share a dedup key into the best one and
// returns the survivors in their original relative order. Losers, together
// with any duplicates they carried, end up flattened in the survivor's
// Duplicates. Matches without a stripped destination are left alone.
func Deduplicate(ms []match.Match) []match.Match {
	if len(ms) < 2 {
		return ms
	}

	groups := make(map[match.DedupKey][]int, len(ms))
	var order []match.DedupKey
	for i := range ms {
		key, ok := ms[i].Key()
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	dropped := make([]bool, len(ms))
	for _, key := range order {
		members := groups[key]
		if len(members) == 1 {
			continue
		}
		slices.SortStableFunc(members, func(a, b int) int {
			switch {
			case match.BetterDuplicate(&ms[a], &ms[b]):
				return -1
			case match.BetterDuplicate(&ms[b], &ms[a]):
				return 1
			}
			return 0
		})

		best := &ms[members[0]]
		var nested []match.Match
		for _, j := range members[1:] {
			loser := ms[j]
			nested = append(nested, loser.Duplicates...)
			loser.Duplicates = nil
			best.UpgradeFrom(&loser)
			best.Duplicates = append(best.Duplicates, loser)
			dropped[j] = true
		}
		best.Duplicates = append(best.Duplicates, nested...)
	}

	out := make([]match.Match, 0, len(ms))
	for i := range ms {
		if !dropped[i] {
			out = append(out, ms[i])
		}
	}
	return out
}

// Deduplicate collapses duplicates in place. See the package-level Deduplicate.
func (r *Result) Deduplicate() {
	r.matches = Deduplicate(r.matches)
}
