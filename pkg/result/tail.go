package result

import (
	"slices"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// cullTailSuggestions keeps tail suggestions and regular suggestions from
// being shown together below the default row.
//
//	no tail matches                                  -> unchanged
//	no default non-tail, a default tail              -> drop non-tail
//	default non-tail plus other non-tail             -> drop tail
//	default non-tail is the only non-tail            -> keep tail, not default
//	no default at all, some non-tail                 -> drop tail
func cullTailSuggestions(ms []match.Match) []match.Match {
	var tails, nonTails int
	var defaultTail, defaultNonTail bool
	for i := range ms {
		if ms[i].Type.IsTail() {
			tails++
			defaultTail = defaultTail || ms[i].AllowedToBeDefault
		} else {
			nonTails++
			defaultNonTail = defaultNonTail || ms[i].AllowedToBeDefault
		}
	}

	switch {
	case tails == 0:
		return ms
	case !defaultNonTail && defaultTail:
		log.Debugf("Culling %d non-tail matches, tail suggestion is default", nonTails)
		return slices.DeleteFunc(ms, func(m match.Match) bool { return !m.Type.IsTail() })
	case defaultNonTail && nonTails > 1:
		return slices.DeleteFunc(ms, func(m match.Match) bool { return m.Type.IsTail() })
	case defaultNonTail:
		for i := range ms {
			if ms[i].Type.IsTail() {
				ms[i].AllowedToBeDefault = false
			}
		}
		return ms
	case nonTails > 0:
		return slices.DeleteFunc(ms, func(m match.Match) bool { return m.Type.IsTail() })
	}
	return ms
}
