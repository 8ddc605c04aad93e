package match

import "strings"

// PageClassification identifies the surface the user is typing into.
type PageClassification int

const (
	PageOther PageClassification = iota
	PageBlank
	PageNTP
	PageNTPRealbox
	PageNTPFakebox
	PageSearchResults
	PageAppHome
	numPages
)

var pageNames = [numPages]string{
	PageOther:         "other",
	PageBlank:         "blank",
	PageNTP:           "ntp",
	PageNTPRealbox:    "ntp_realbox",
	PageNTPFakebox:    "ntp_fakebox",
	PageSearchResults: "search_results",
	PageAppHome:       "app_home",
}

func (p PageClassification) String() string {
	if p < 0 || p >= numPages {
		return "other"
	}
	return pageNames[p]
}

// ParsePage maps a config/wire name to a page classification.
func ParsePage(name string) (PageClassification, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range pageNames {
		if n == name {
			return PageClassification(i), true
		}
	}
	return PageOther, false
}

// IsSearchOnly reports surfaces where URL navigation is unlikely.
func (p PageClassification) IsSearchOnly() bool {
	return p == PageNTPRealbox || p == PageNTPFakebox
}

// InputKind is the classifier's guess at what the user typed.
type InputKind int

const (
	InputUnknown InputKind = iota
	InputURL
	InputQuery
	InputEmpty
)

func (k InputKind) String() string {
	switch k {
	case InputURL:
		return "url"
	case InputQuery:
		return "query"
	case InputEmpty:
		return "empty"
	}
	return "unknown"
}

// ParseInputKind maps a wire name to an InputKind.
func ParseInputKind(name string) InputKind {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "url":
		return InputURL
	case "query":
		return InputQuery
	case "empty":
		return InputEmpty
	}
	return InputUnknown
}

// Input is the context one ranking pass runs against.
type Input struct {
	Text                      string
	Kind                      InputKind
	Page                      PageClassification
	PreventInlineAutocomplete bool
	// FocusOnly marks an on-focus request that should be answered with zero-input suggestions.
	FocusOnly bool
}

// IsZeroSuggest reports whether this is a zero-input (on-focus) pass.
func (in Input) IsZeroSuggest() bool {
	return in.FocusOnly || in.Kind == InputEmpty || strings.TrimSpace(in.Text) == ""
}

// ClassifyInput makes a coarse URL-vs-query guess for text typed into the box.
func ClassifyInput(text string) InputKind {
	t := strings.TrimSpace(text)
	switch {
	case t == "":
		return InputEmpty
	case strings.Contains(t, " "):
		return InputQuery
	case strings.Contains(t, "://"):
		return InputURL
	}
	host := t
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return InputURL
	}
	if dot := strings.LastIndexByte(host, '.'); dot > 0 && dot < len(host)-1 {
		return InputURL
	}
	return InputQuery
}
