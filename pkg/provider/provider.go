// Package provider contains the in-process match providers shipped with rankserve.
//
// Providers answer synchronously: Start returns the provider's complete
// matches for the input. Remote or slow providers live outside this
// process and deliver their batches through the server protocol.
package provider

import (
	"net/url"
	"strings"

	"github.com/bastiangx/rankserve/pkg/match"
)

// Provider produces candidate matches for an input.
type Provider interface {
	ID() match.ProviderID
	Class() match.ProviderClass
	Start(in match.Input) []match.Match
}

// SearchURL fills the {searchTerms} slot of an engine template.
func SearchURL(template, terms string) string {
	return strings.Replace(template, "{searchTerms}", url.QueryEscape(strings.TrimSpace(terms)), 1)
}

// FixupURL turns URL-shaped input into an absolute URL.
func FixupURL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(text, "://") {
		return text
	}
	return "http://" + text
}

// displayURL drops the scheme and a leading www. for matching against typed text.
func displayURL(raw string) string {
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	return strings.TrimPrefix(strings.ToLower(s), "www.")
}
