// Package match defines the candidate suggestion model shared by providers and the ranking core.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// GroupID tags a match with a UI suggestion group. GroupNone means ungrouped.
type GroupID int

const GroupNone GroupID = 0

// Match is one candidate suggestion produced by a provider.
type Match struct {
	Provider      ProviderID    `msgpack:"provider"`
	ProviderClass ProviderClass `msgpack:"class"`

	Relevance          int  `msgpack:"r"`
	Type               Type `msgpack:"t"`
	AllowedToBeDefault bool `msgpack:"dflt"`

	// Destination is the URL opened when the match is chosen.
	Destination string `msgpack:"u"`
	// StrippedDestination is the canonical identity; see StripDestination.
	StrippedDestination string `msgpack:"su,omitempty"`

	FillIntoEdit         string `msgpack:"fill,omitempty"`
	InlineAutocompletion string `msgpack:"inline,omitempty"`
	Contents             string `msgpack:"c"`
	Description          string `msgpack:"d,omitempty"`
	// SwapContentsAndDescription asks the renderer to show Description as the primary line.
	SwapContentsAndDescription bool `msgpack:"swap,omitempty"`

	// EntityID is the knowledge-graph cross reference of entity suggestions.
	EntityID string `msgpack:"entity,omitempty"`

	FromPrevious      bool            `msgpack:"prev,omitempty"`
	SuggestionGroupID GroupID         `msgpack:"g,omitempty"`
	Signals           *ScoringSignals `msgpack:"signals,omitempty"`

	// Duplicates holds matches folded into this one. It is never nested.
	Duplicates []Match `msgpack:"dups,omitempty"`
}

// IsCalculator reports whether m is a calculator answer. Calculator answers
// never dedupe against plain matches with the same destination.
func (m *Match) IsCalculator() bool { return m.Type == Calculator }

// DedupKey is the identity two matches must share to be duplicates.
type DedupKey struct {
	Destination  string
	IsCalculator bool
}

// Key returns m's dedup key. ok is false when m has no stripped destination
// and therefore never dedupes.
func (m *Match) Key() (key DedupKey, ok bool) {
	if m.StrippedDestination == "" {
		return DedupKey{}, false
	}
	return DedupKey{Destination: m.StrippedDestination, IsCalculator: m.IsCalculator()}, true
}

// ComputeStrippedDestination fills StrippedDestination from Destination.
func (m *Match) ComputeStrippedDestination(engines *SearchEngines) {
	m.StrippedDestination = StripDestination(m.Destination, engines)
}

// Clone returns a deep copy of m, including duplicates and signals.
func (m Match) Clone() Match {
	m.Signals = m.Signals.Clone()
	if m.Duplicates != nil {
		dups := make([]Match, len(m.Duplicates))
		for i := range m.Duplicates {
			dups[i] = m.Duplicates[i].Clone()
		}
		m.Duplicates = dups
	}
	return m
}

// BetterDuplicate reports whether a should survive over b when both share a dedup key.
//
// Order: provider class priority, then an entity over a plain suggestion with
// the same fill text, then default eligibility, then relevance. Callers use a
// stable sort so equal matches keep encounter order.
func BetterDuplicate(a, b *Match) bool {
	if pa, pb := a.ProviderClass.DedupPriority(), b.ProviderClass.DedupPriority(); pa != pb {
		return pa > pb
	}
	if a.FillIntoEdit == b.FillIntoEdit {
		aEntity, bEntity := a.Type == SearchSuggestEntity, b.Type == SearchSuggestEntity
		if aEntity != bEntity {
			return aEntity
		}
	}
	if a.AllowedToBeDefault != b.AllowedToBeDefault {
		return a.AllowedToBeDefault
	}
	return a.Relevance > b.Relevance
}

// UpgradeFrom absorbs the better properties of a duplicate that is about to
// be folded into m. It does not move dup into m.Duplicates.
func (m *Match) UpgradeFrom(dup *Match) {
	if dup.Relevance > m.Relevance {
		m.Relevance = dup.Relevance
	}

	sameFill := m.FillIntoEdit == dup.FillIntoEdit

	// Entities take over default eligibility from the plain suggestion they replace.
	if m.Type == SearchSuggestEntity && sameFill && dup.AllowedToBeDefault {
		m.AllowedToBeDefault = true
		if m.InlineAutocompletion == "" {
			m.InlineAutocompletion = dup.InlineAutocompletion
		}
	}

	// A suggestion the user has searched before is shown as history.
	if (m.Type == SearchSuggest || m.Type == SearchWhatYouTyped) && sameFill && dup.Type == SearchHistory {
		m.Type = SearchHistory
	}

	if m.Description == "" && dup.Description != "" {
		m.Description = dup.Description
		m.SwapContentsAndDescription = dup.SwapContentsAndDescription
	}
	if m.SuggestionGroupID == GroupNone {
		m.SuggestionGroupID = dup.SuggestionGroupID
	}
	if m.EntityID == "" {
		m.EntityID = dup.EntityID
	}

	m.Signals = m.Signals.Merge(dup.Signals)
}

// SanitizeText strips control characters and applies NFKC. It is the form
// every text field must be in before it reaches the ranking core.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFKC.String(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Sanitize rewrites the text fields of m in place and reports whether any changed.
func (m *Match) Sanitize() bool {
	changed := false
	for _, f := range []*string{&m.Contents, &m.Description, &m.FillIntoEdit, &m.InlineAutocompletion} {
		if clean := SanitizeText(*f); clean != *f {
			*f = clean
			changed = true
		}
	}
	return changed
}
