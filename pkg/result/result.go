/*
Package result merges, deduplicates and ranks autocomplete matches.

A Result holds the ordered matches of one input session. Every provider
pass rebuilds it in three steps:

	r := result.New(opts)
	r.AppendMatches(fresh)                      // matches from all providers
	r.TransferOldMatches(input, previous, done) // keep the list visually stable
	r.SortAndCull(input, engines, previous.DefaultMatch())

After SortAndCull the first match is the default match when it is allowed
to be default. Nothing in this package blocks, spawns goroutines or
returns errors; a Result must only be used by the goroutine that owns the
session.
*/
package result

import (
	"fmt"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
)

// GroupConfig describes how a suggestion group is presented.
type GroupConfig struct {
	Section int    `msgpack:"section" toml:"section"`
	Header  string `msgpack:"header,omitempty" toml:"header"`
}

// Result is the ordered, deduplicated match list of one input session.
type Result struct {
	opts    Options
	matches []match.Match
	groups  map[match.GroupID]GroupConfig
	// engines is what the last SortAndCull stripped destinations with.
	engines *match.SearchEngines
}

// New returns an empty Result governed by opts.
func New(opts Options) *Result {
	return &Result{opts: opts, groups: make(map[match.GroupID]GroupConfig)}
}

// Options returns the policy this Result was built with.
func (r *Result) Options() Options { return r.opts }

// Size returns the number of matches.
func (r *Result) Size() int { return len(r.matches) }

// Empty reports whether there are no matches.
func (r *Result) Empty() bool { return len(r.matches) == 0 }

// MatchAt returns the match at index i. It panics when i is out of range;
// callers are expected to stay within Size.
func (r *Result) MatchAt(i int) *match.Match {
	if i < 0 || i >= len(r.matches) {
		panic(fmt.Sprintf("result: match index %d out of range [0,%d)", i, len(r.matches)))
	}
	return &r.matches[i]
}

// Matches returns the ordered matches. The slice is owned by r.
func (r *Result) Matches() []match.Match { return r.matches }

// DefaultMatch returns the first match when it is allowed to be default, or nil.
func (r *Result) DefaultMatch() *match.Match {
	if len(r.matches) == 0 || !r.matches[0].AllowedToBeDefault {
		return nil
	}
	return &r.matches[0]
}

// HasCopiedMatches reports whether any match was transferred from an earlier pass.
func (r *Result) HasCopiedMatches() bool {
	for i := range r.matches {
		if r.matches[i].FromPrevious {
			return true
		}
	}
	return false
}

// AppendMatches adds provider output to the working set. Text fields are
// expected to be sanitised already; anything that is not gets cleaned here.
func (r *Result) AppendMatches(ms []match.Match) {
	for _, m := range ms {
		m = m.Clone()
		if m.Sanitize() {
			log.Debugf("Sanitized text of match %q from provider %q", m.Destination, m.Provider)
		}
		if !m.Type.IsSearch() && m.Description != "" {
			m.SwapContentsAndDescription = true
		}
		r.matches = append(r.matches, m)
	}
}

// MergeSuggestionGroups adds group presentation metadata. Existing ids are overwritten.
func (r *Result) MergeSuggestionGroups(groups map[match.GroupID]GroupConfig) {
	for id, g := range groups {
		r.groups[id] = g
	}
}

// Group returns the presentation metadata of id.
func (r *Result) Group(id match.GroupID) (GroupConfig, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// Reset drops all matches and groups.
func (r *Result) Reset() {
	r.matches = nil
	r.groups = make(map[match.GroupID]GroupConfig)
}

// Swap exchanges contents with other. Options are exchanged as well.
func (r *Result) Swap(other *Result) {
	*r, *other = *other, *r
}

// Clone returns a deep copy.
func (r *Result) Clone() *Result {
	c := New(r.opts)
	c.matches = make([]match.Match, len(r.matches))
	for i := range r.matches {
		c.matches[i] = r.matches[i].Clone()
	}
	c.MergeSuggestionGroups(r.groups)
	c.engines = r.engines
	return c
}
