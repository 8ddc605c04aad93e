package result

import (
	"cmp"
	"slices"

	"github.com/bastiangx/rankserve/pkg/match"
)

// ungroupedSection sorts before every configured section.
const ungroupedSection = -1

// section returns the display section of m. Groups without metadata share section 0.
func (r *Result) section(m *match.Match) int {
	if m.SuggestionGroupID == match.GroupNone {
		return ungroupedSection
	}
	if g, ok := r.groups[m.SuggestionGroupID]; ok {
		return g.Section
	}
	return 0
}

// groupBySection stable-sorts ms by display section. Membership is unchanged.
func (r *Result) groupBySection(ms []match.Match) {
	slices.SortStableFunc(ms, func(a, b match.Match) int {
		return cmp.Compare(r.section(&a), r.section(&b))
	})
}

// searchVsURLRank puts searches and history clusters ahead of URLs.
func searchVsURLRank(m *match.Match) int {
	if m.Type.IsSearch() || m.Type == match.HistoryCluster {
		return 0
	}
	return 1
}

func groupSearchVsURL(ms []match.Match) {
	slices.SortStableFunc(ms, func(a, b match.Match) int {
		return cmp.Compare(searchVsURLRank(&a), searchVsURLRank(&b))
	})
}
