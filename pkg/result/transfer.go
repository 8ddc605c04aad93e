package result

import (
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// ProviderStatus reports whether a provider has finished for the current input.
type ProviderStatus interface {
	Done(id match.ProviderID) bool
}

// TransferOldMatches carries matches of the previous pass into r so the list
// does not jump while providers are still running. old is not modified.
//
// Each provider keeps at least as many matches as it had before: missing
// slots are filled with that provider's lowest-ranked old matches whose
// destination it did not produce again. Transferred matches are capped one
// point below the provider's best new default-eligible match so they can
// never replace the intended default.
func (r *Result) TransferOldMatches(in match.Input, old *Result, status ProviderStatus) {
	if old == nil || old.Empty() {
		return
	}

	candidates := make([]match.Match, 0, old.Size())
	for i := range old.matches {
		m := &old.matches[i]
		if r.opts.DropDoneProviderMatches && status != nil && status.Done(m.Provider) {
			continue
		}
		if !m.Type.IsTransferable() {
			continue
		}
		candidates = append(candidates, m.Clone())
	}
	if len(candidates) == 0 {
		return
	}

	if r.Empty() {
		for i := range candidates {
			candidates[i].FromPrevious = true
		}
		r.matches = candidates
		r.revalidateTransferred(in)
		log.Debugf("Adopted %d matches from the previous pass", len(candidates))
		return
	}

	// Old matches were stripped by the previous SortAndCull; strip the
	// fresh ones the same way so scheme and www variants compare equal.
	for i := range r.matches {
		r.matches[i].ComputeStrippedDestination(old.engines)
	}
	fresh := byProvider(r.matches)
	var providers []match.ProviderID
	stale := make(map[match.ProviderID][]match.Match)
	for _, m := range candidates {
		if _, ok := stale[m.Provider]; !ok {
			providers = append(providers, m.Provider)
		}
		stale[m.Provider] = append(stale[m.Provider], m)
	}
	for _, p := range providers {
		r.mergeByProvider(stale[p], fresh[p])
	}
	r.revalidateTransferred(in)
}

func byProvider(ms []match.Match) map[match.ProviderID][]match.Match {
	out := make(map[match.ProviderID][]match.Match)
	for _, m := range ms {
		out[m.Provider] = append(out[m.Provider], m)
	}
	return out
}

// mergeByProvider copies old matches, lowest ranked first, until the provider
// is back to its previous count.
func (r *Result) mergeByProvider(old, fresh []match.Match) {
	if len(fresh) >= len(old) {
		return
	}
	limit := r.transferCap(fresh) - 1
	delta := len(old) - len(fresh)
	for i := len(old) - 1; i >= 0 && delta > 0; i-- {
		m := old[i]
		if hasDestination(fresh, &m) {
			continue
		}
		m.Relevance = min(m.Relevance, limit)
		m.FromPrevious = true
		r.matches = append(r.matches, m)
		delta--
	}
}

// transferCap is the relevance transferred matches must stay below: the
// provider's best new default-eligible match, else the best fresh
// default-eligible match overall, else the best fresh match.
func (r *Result) transferCap(fresh []match.Match) int {
	if best, ok := bestDefaultRelevance(fresh); ok {
		return best
	}
	var current []match.Match
	for _, m := range r.matches {
		if !m.FromPrevious {
			current = append(current, m)
		}
	}
	if best, ok := bestDefaultRelevance(current); ok {
		return best
	}
	best := 0
	for i, m := range current {
		if i == 0 || m.Relevance > best {
			best = m.Relevance
		}
	}
	return best
}

func bestDefaultRelevance(ms []match.Match) (int, bool) {
	best, found := 0, false
	for _, m := range ms {
		if m.AllowedToBeDefault && (!found || m.Relevance > best) {
			best, found = m.Relevance, true
		}
	}
	return best, found
}

func hasDestination(ms []match.Match, old *match.Match) bool {
	for i := range ms {
		m := &ms[i]
		if m.StrippedDestination != "" && old.StrippedDestination != "" {
			if m.StrippedDestination == old.StrippedDestination {
				return true
			}
			continue
		}
		if m.Destination == old.Destination {
			return true
		}
	}
	return false
}

// revalidateTransferred re-checks default eligibility of transferred matches
// against the current input.
func (r *Result) revalidateTransferred(in match.Input) {
	for i := range r.matches {
		m := &r.matches[i]
		if !m.FromPrevious {
			continue
		}
		if in.PreventInlineAutocomplete && m.InlineAutocompletion != "" {
			m.InlineAutocompletion = ""
			m.AllowedToBeDefault = false
		}
		if r.opts.PreventDefaultOnTransferred {
			m.AllowedToBeDefault = false
		}
	}
}
