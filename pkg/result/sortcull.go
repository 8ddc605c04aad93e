package result

import (
	"slices"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// SortAndCull turns the working set into the final ordered result of a pass.
//
// preserve, when non-nil, names the default match of the previous pass. If
// an eligible match with the same destination and fill text is still
// present it stays at the top regardless of its relevance.
func (r *Result) SortAndCull(in match.Input, engines *match.SearchEngines, preserve *match.Match) {
	r.engines = engines
	for i := range r.matches {
		r.matches[i].ComputeStrippedDestination(engines)
	}

	cmp := NewComparator(r.opts.Demotions, in.Page)

	if r.opts.DemoteOnDeviceSearch {
		demoteOnDeviceSearch(r.matches)
	}
	r.matches = cullTailSuggestions(r.matches)
	r.matches = Deduplicate(r.matches)
	slices.SortStableFunc(r.matches, func(a, b match.Match) int { return cmp.Compare(&a, &b) })

	top, preserved := findTopMatch(r.matches, in, preserve)
	if top > 0 {
		rotateToFront(r.matches, top)
	}
	if !preserved {
		r.matches = discourageTopEntity(r.matches)
	}
	r.matches = limitHistoryClusters(r.matches)

	zero := in.IsZeroSuggest()
	if r.opts.MaxURLMatches > 0 {
		r.matches = limitURLs(r.matches, r.opts.maxMatches(zero), r.opts.MaxURLMatches, cmp)
	}

	// The count walks the relevance order; grouping only reorders the survivors.
	r.matches = r.matches[:r.numMatches(zero, cmp)]
	switch {
	case zero:
		r.groupBySection(r.matches)
	case len(r.matches) > 2:
		if r.opts.GroupSearchVsURL {
			groupSearchVsURL(r.matches[1:])
		}
		r.groupBySection(r.matches[1:])
	}
	log.Debugf("SortAndCull kept %d matches for %q", len(r.matches), in.Text)
}

// findTopMatch returns the index of the match that should be default and
// whether it was chosen because it matched preserve. It returns -1 when no
// match is allowed to be default.
func findTopMatch(ms []match.Match, in match.Input, preserve *match.Match) (int, bool) {
	if preserve != nil {
		for i := range ms {
			if ms[i].AllowedToBeDefault && sameDefault(&ms[i], preserve) {
				return i, true
			}
		}
	}

	// Search-only surfaces keep the first eligible match, normally the verbatim search.
	if in.Page.IsSearchOnly() && in.Kind != match.InputURL {
		for i := range ms {
			if ms[i].AllowedToBeDefault {
				return i, false
			}
		}
		return -1, false
	}

	best := -1
	for i := range ms {
		if ms[i].AllowedToBeDefault && (best < 0 || ms[i].Relevance > ms[best].Relevance) {
			best = i
		}
	}
	return best, false
}

func sameDefault(m, preserve *match.Match) bool {
	if m.FillIntoEdit != preserve.FillIntoEdit {
		return false
	}
	if m.StrippedDestination != "" && preserve.StrippedDestination != "" {
		return m.StrippedDestination == preserve.StrippedDestination
	}
	return m.Destination == preserve.Destination
}

// rotateToFront moves ms[i] to position 0 and shifts ms[:i] down by one.
func rotateToFront(ms []match.Match, i int) {
	m := ms[i]
	copy(ms[1:i+1], ms[:i])
	ms[0] = m
}

// discourageTopEntity replaces a top entity suggestion by its plain search
// duplicate, so accepting the default does not carry entity-only side
// effects. A server-provided specialised search is preferred over a generic one.
func discourageTopEntity(ms []match.Match) []match.Match {
	if len(ms) == 0 || ms[0].Type != match.SearchSuggestEntity {
		return ms
	}
	top := &ms[0]
	pick := -1
	for i := range top.Duplicates {
		d := &top.Duplicates[i]
		if d.Type == match.SearchSuggestEntity || !d.Type.IsSearch() || !d.AllowedToBeDefault {
			continue
		}
		if d.Type.IsSpecializedSearch() && d.ProviderClass == match.ProviderSearch {
			pick = i
			break
		}
		if pick < 0 {
			pick = i
		}
	}
	if pick < 0 {
		return ms
	}

	promoted := top.Duplicates[pick]
	top.Duplicates = slices.Delete(top.Duplicates, pick, pick+1)
	if promoted.EntityID == "" {
		promoted.EntityID = top.EntityID
	}
	log.Debugf("Promoted %s duplicate over top entity %q", promoted.Type, top.Contents)
	return slices.Insert(ms, 0, promoted)
}

// limitHistoryClusters keeps only the first history cluster match.
func limitHistoryClusters(ms []match.Match) []match.Match {
	seen := false
	return slices.DeleteFunc(ms, func(m match.Match) bool {
		if m.Type != match.HistoryCluster {
			return false
		}
		if seen {
			return true
		}
		seen = true
		return false
	})
}

// demoteOnDeviceSearch lowers on-device search suggestions until the best of
// them ranks below the worst remote search suggestion.
func demoteOnDeviceSearch(ms []match.Match) {
	minRemote, maxOnDevice := -1, -1
	var onDevice []int
	for i := range ms {
		m := &ms[i]
		if !m.Type.IsSearch() || m.Type.IsTrivial() {
			continue
		}
		switch m.ProviderClass {
		case match.ProviderSearch:
			if minRemote < 0 || m.Relevance < minRemote {
				minRemote = m.Relevance
			}
		case match.ProviderOnDevice:
			onDevice = append(onDevice, i)
			maxOnDevice = max(maxOnDevice, m.Relevance)
		}
	}
	if minRemote < 0 || len(onDevice) == 0 || maxOnDevice < minRemote {
		return
	}
	offset := maxOnDevice - minRemote + 1
	for _, i := range onDevice {
		ms[i].Relevance = max(ms[i].Relevance-offset, 0)
	}
}
