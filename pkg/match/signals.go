package match

import "cmp"

// ScoringSignals carries per-match features consumed by secondary scoring.
// Every field is optional; nil means "not reported by the provider".
type ScoringSignals struct {
	TypedCount                    *int   `msgpack:"typed_count,omitempty" toml:"typed_count"`
	VisitCount                    *int   `msgpack:"visit_count,omitempty" toml:"visit_count"`
	ElapsedTimeLastVisitSecs      *int64 `msgpack:"elapsed_last_visit,omitempty" toml:"elapsed_last_visit"`
	ShortcutVisitCount            *int   `msgpack:"shortcut_visit_count,omitempty" toml:"shortcut_visit_count"`
	ShortestShortcutLength        *int   `msgpack:"shortest_shortcut_len,omitempty" toml:"shortest_shortcut_len"`
	ElapsedTimeLastShortcutSecs   *int64 `msgpack:"elapsed_last_shortcut,omitempty" toml:"elapsed_last_shortcut"`
	NumBookmarksOfURL             *int   `msgpack:"num_bookmarks,omitempty" toml:"num_bookmarks"`
	FirstBookmarkTitleMatchPos    *int   `msgpack:"first_bookmark_title_pos,omitempty" toml:"first_bookmark_title_pos"`
	TotalBookmarkTitleMatchLength *int   `msgpack:"bookmark_title_match_len,omitempty" toml:"bookmark_title_match_len"`
	FirstURLMatchPosition         *int   `msgpack:"first_url_match_pos,omitempty" toml:"first_url_match_pos"`
	TotalURLMatchLength           *int   `msgpack:"url_match_len,omitempty" toml:"url_match_len"`
	TotalTitleMatchLength         *int   `msgpack:"title_match_len,omitempty" toml:"title_match_len"`
	LengthOfURL                   *int   `msgpack:"url_len,omitempty" toml:"url_len"`
	SiteEngagement                *int   `msgpack:"site_engagement,omitempty" toml:"site_engagement"`
	HostMatchAtWordBoundary       *bool  `msgpack:"host_word_boundary,omitempty" toml:"host_word_boundary"`
	HasNonSchemeWWWMatch          *bool  `msgpack:"non_scheme_www,omitempty" toml:"non_scheme_www"`
	IsHostOnly                    *bool  `msgpack:"host_only,omitempty" toml:"host_only"`
	AllowedToBeDefault            *bool  `msgpack:"allowed_default,omitempty" toml:"allowed_default"`
}

// MergeRule names how one signal field combines across duplicates.
type MergeRule string

const (
	PreferLarger  MergeRule = "larger"
	PreferSmaller MergeRule = "smaller"
	PreferTrue    MergeRule = "any"
)

// SignalMergeRules documents the combine rule of every field. Each rule is
// commutative: a nil side always yields the other side.
//
//	counts, lengths of matched text, engagement: larger wins
//	elapsed times, first-match positions, shortcut and URL length: smaller wins
//	boolean features: true wins
var SignalMergeRules = map[string]MergeRule{
	"TypedCount":                    PreferLarger,
	"VisitCount":                    PreferLarger,
	"ElapsedTimeLastVisitSecs":      PreferSmaller,
	"ShortcutVisitCount":            PreferLarger,
	"ShortestShortcutLength":        PreferSmaller,
	"ElapsedTimeLastShortcutSecs":   PreferSmaller,
	"NumBookmarksOfURL":             PreferLarger,
	"FirstBookmarkTitleMatchPos":    PreferSmaller,
	"TotalBookmarkTitleMatchLength": PreferLarger,
	"FirstURLMatchPosition":         PreferSmaller,
	"TotalURLMatchLength":           PreferLarger,
	"TotalTitleMatchLength":         PreferLarger,
	"LengthOfURL":                   PreferSmaller,
	"SiteEngagement":                PreferLarger,
	"HostMatchAtWordBoundary":       PreferTrue,
	"HasNonSchemeWWWMatch":          PreferTrue,
	"IsHostOnly":                    PreferTrue,
	"AllowedToBeDefault":            PreferTrue,
}

// Merge combines s and other field by field and returns a new bundle.
// Neither input is modified. Merge(a, b) equals Merge(b, a).
func (s *ScoringSignals) Merge(other *ScoringSignals) *ScoringSignals {
	switch {
	case s == nil && other == nil:
		return nil
	case s == nil:
		return other.Clone()
	case other == nil:
		return s.Clone()
	}
	return &ScoringSignals{
		TypedCount:                    larger(s.TypedCount, other.TypedCount),
		VisitCount:                    larger(s.VisitCount, other.VisitCount),
		ElapsedTimeLastVisitSecs:      smaller(s.ElapsedTimeLastVisitSecs, other.ElapsedTimeLastVisitSecs),
		ShortcutVisitCount:            larger(s.ShortcutVisitCount, other.ShortcutVisitCount),
		ShortestShortcutLength:        smaller(s.ShortestShortcutLength, other.ShortestShortcutLength),
		ElapsedTimeLastShortcutSecs:   smaller(s.ElapsedTimeLastShortcutSecs, other.ElapsedTimeLastShortcutSecs),
		NumBookmarksOfURL:             larger(s.NumBookmarksOfURL, other.NumBookmarksOfURL),
		FirstBookmarkTitleMatchPos:    smaller(s.FirstBookmarkTitleMatchPos, other.FirstBookmarkTitleMatchPos),
		TotalBookmarkTitleMatchLength: larger(s.TotalBookmarkTitleMatchLength, other.TotalBookmarkTitleMatchLength),
		FirstURLMatchPosition:         smaller(s.FirstURLMatchPosition, other.FirstURLMatchPosition),
		TotalURLMatchLength:           larger(s.TotalURLMatchLength, other.TotalURLMatchLength),
		TotalTitleMatchLength:         larger(s.TotalTitleMatchLength, other.TotalTitleMatchLength),
		LengthOfURL:                   smaller(s.LengthOfURL, other.LengthOfURL),
		SiteEngagement:                larger(s.SiteEngagement, other.SiteEngagement),
		HostMatchAtWordBoundary:       either(s.HostMatchAtWordBoundary, other.HostMatchAtWordBoundary),
		HasNonSchemeWWWMatch:          either(s.HasNonSchemeWWWMatch, other.HasNonSchemeWWWMatch),
		IsHostOnly:                    either(s.IsHostOnly, other.IsHostOnly),
		AllowedToBeDefault:            either(s.AllowedToBeDefault, other.AllowedToBeDefault),
	}
}

// Clone returns a deep copy.
func (s *ScoringSignals) Clone() *ScoringSignals {
	if s == nil {
		return nil
	}
	return &ScoringSignals{
		TypedCount:                    clonePtr(s.TypedCount),
		VisitCount:                    clonePtr(s.VisitCount),
		ElapsedTimeLastVisitSecs:      clonePtr(s.ElapsedTimeLastVisitSecs),
		ShortcutVisitCount:            clonePtr(s.ShortcutVisitCount),
		ShortestShortcutLength:        clonePtr(s.ShortestShortcutLength),
		ElapsedTimeLastShortcutSecs:   clonePtr(s.ElapsedTimeLastShortcutSecs),
		NumBookmarksOfURL:             clonePtr(s.NumBookmarksOfURL),
		FirstBookmarkTitleMatchPos:    clonePtr(s.FirstBookmarkTitleMatchPos),
		TotalBookmarkTitleMatchLength: clonePtr(s.TotalBookmarkTitleMatchLength),
		FirstURLMatchPosition:         clonePtr(s.FirstURLMatchPosition),
		TotalURLMatchLength:           clonePtr(s.TotalURLMatchLength),
		TotalTitleMatchLength:         clonePtr(s.TotalTitleMatchLength),
		LengthOfURL:                   clonePtr(s.LengthOfURL),
		SiteEngagement:                clonePtr(s.SiteEngagement),
		HostMatchAtWordBoundary:       clonePtr(s.HostMatchAtWordBoundary),
		HasNonSchemeWWWMatch:          clonePtr(s.HasNonSchemeWWWMatch),
		IsHostOnly:                    clonePtr(s.IsHostOnly),
		AllowedToBeDefault:            clonePtr(s.AllowedToBeDefault),
	}
}

func larger[T cmp.Ordered](a, b *T) *T {
	switch {
	case a == nil:
		return clonePtr(b)
	case b == nil:
		return clonePtr(a)
	}
	v := max(*a, *b)
	return &v
}

func smaller[T cmp.Ordered](a, b *T) *T {
	switch {
	case a == nil:
		return clonePtr(b)
	case b == nil:
		return clonePtr(a)
	}
	v := min(*a, *b)
	return &v
}

func either(a, b *bool) *bool {
	switch {
	case a == nil:
		return clonePtr(b)
	case b == nil:
		return clonePtr(a)
	}
	v := *a || *b
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a convenience for building optional signal values.
func Ptr[T any](v T) *T { return &v }
