package result

import (
	"fmt"
	"strings"

	"github.com/bastiangx/rankserve/pkg/match"
)

var testEngines = match.NewSearchEngines(
	match.SearchEngine{Keyword: "google.com", Template: "https://www.google.com/search?q={searchTerms}"},
)

func typed(text string) match.Input {
	return match.Input{Text: text, Kind: match.InputQuery, Page: match.PageOther}
}

func urlMatch(provider match.ProviderID, rel int, dest string, dflt bool) match.Match {
	return match.Match{
		Provider:           provider,
		ProviderClass:      match.ProviderHistory,
		Relevance:          rel,
		Type:               match.HistoryURL,
		AllowedToBeDefault: dflt,
		Destination:        dest,
		FillIntoEdit:       dest,
		Contents:           dest,
	}
}

func searchMatch(provider match.ProviderID, rel int, terms string, dflt bool) match.Match {
	return match.Match{
		Provider:           provider,
		ProviderClass:      match.ProviderSearch,
		Relevance:          rel,
		Type:               match.SearchSuggest,
		AllowedToBeDefault: dflt,
		Destination:        "https://www.google.com/search?q=" + terms,
		FillIntoEdit:       terms,
		Contents:           terms,
	}
}

// numbered returns n URL matches with decreasing relevance starting at top.
func numbered(provider match.ProviderID, n, top int) []match.Match {
	out := make([]match.Match, n)
	for i := range n {
		dest := fmt.Sprintf("https://%s-site%d.example/", strings.ToLower(string(provider)), i)
		out[i] = urlMatch(provider, top-i*10, dest, false)
	}
	return out
}

func relevances(r *Result) []int {
	out := make([]int, r.Size())
	for i := range r.Size() {
		out[i] = r.MatchAt(i).Relevance
	}
	return out
}

func contents(r *Result) []string {
	out := make([]string, r.Size())
	for i := range r.Size() {
		out[i] = r.MatchAt(i).Contents
	}
	return out
}

// fakeStatus reports providers listed in done as finished.
type fakeStatus map[match.ProviderID]bool

func (s fakeStatus) Done(id match.ProviderID) bool { return s[id] }
