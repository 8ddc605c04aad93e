package provider

import (
	"github.com/bastiangx/rankserve/pkg/match"
)

const (
	verbatimURLRelevance          = 1200
	verbatimSearchRelevance       = 1300
	verbatimSearchForURLRelevance = 1000
)

// Verbatim answers with what the user typed, as a URL and/or a search.
type Verbatim struct {
	id             match.ProviderID
	searchTemplate string
}

// NewVerbatim returns a verbatim provider searching with searchTemplate.
func NewVerbatim(id match.ProviderID, searchTemplate string) *Verbatim {
	return &Verbatim{id: id, searchTemplate: searchTemplate}
}

func (v *Verbatim) ID() match.ProviderID       { return v.id }
func (v *Verbatim) Class() match.ProviderClass { return match.ProviderVerbatim }

// Start returns a search-what-you-typed match and, for URL-shaped input, a
// url-what-you-typed match. Empty input yields nothing.
func (v *Verbatim) Start(in match.Input) []match.Match {
	if in.IsZeroSuggest() {
		return nil
	}
	kind := in.Kind
	if kind == match.InputUnknown {
		kind = match.ClassifyInput(in.Text)
	}

	var out []match.Match
	if kind == match.InputURL {
		dest := FixupURL(in.Text)
		out = append(out, match.Match{
			Provider:           v.id,
			ProviderClass:      match.ProviderVerbatim,
			Relevance:          verbatimURLRelevance,
			Type:               match.URLWhatYouTyped,
			AllowedToBeDefault: true,
			Destination:        dest,
			FillIntoEdit:       in.Text,
			Contents:           dest,
		})
	}

	if v.searchTemplate != "" {
		rel := verbatimSearchRelevance
		if kind == match.InputURL {
			rel = verbatimSearchForURLRelevance
		}
		out = append(out, match.Match{
			Provider:           v.id,
			ProviderClass:      match.ProviderVerbatim,
			Relevance:          rel,
			Type:               match.SearchWhatYouTyped,
			AllowedToBeDefault: true,
			Destination:        SearchURL(v.searchTemplate, in.Text),
			FillIntoEdit:       in.Text,
			Contents:           in.Text,
		})
	}
	return out
}
