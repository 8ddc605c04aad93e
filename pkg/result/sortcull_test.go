package result

import (
	"fmt"
	"testing"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranked(opts Options, in match.Input, preserve *match.Match, ms ...match.Match) *Result {
	r := New(opts)
	r.AppendMatches(ms)
	r.SortAndCull(in, testEngines, preserve)
	return r
}

func TestSortAndCullPicksEligibleDefault(t *testing.T) {
	r := ranked(DefaultOptions(), typed("a"), nil,
		urlMatch("h", 500, "https://five.example/", true),
		urlMatch("h", 800, "https://eight.example/", false),
	)

	assert.Equal(t, []int{500, 800}, relevances(r))
	require.NotNil(t, r.DefaultMatch())
	assert.Equal(t, 500, r.DefaultMatch().Relevance)
}

func TestSortAndCullNoEligibleDefault(t *testing.T) {
	r := ranked(DefaultOptions(), typed("a"), nil,
		urlMatch("h", 500, "https://five.example/", false),
		urlMatch("h", 800, "https://eight.example/", false),
	)
	assert.Equal(t, []int{800, 500}, relevances(r))
	assert.Nil(t, r.DefaultMatch())
}

func TestSortAndCullDefaultStability(t *testing.T) {
	kept := urlMatch("h", 500, "https://kept.example/", true)
	preserve := kept.Clone()
	preserve.ComputeStrippedDestination(testEngines)

	r := ranked(DefaultOptions(), typed("k"), &preserve,
		urlMatch("h", 1400, "https://best.example/", true),
		kept,
		urlMatch("h", 900, "https://other.example/", true),
	)
	assert.Equal(t, "https://kept.example/", r.MatchAt(0).Destination)

	t.Run("missing target falls back to max relevance", func(t *testing.T) {
		gone := urlMatch("h", 100, "https://gone.example/", true)
		r := ranked(DefaultOptions(), typed("k"), &gone,
			urlMatch("h", 900, "https://other.example/", true),
			urlMatch("h", 1400, "https://best.example/", true),
		)
		assert.Equal(t, "https://best.example/", r.MatchAt(0).Destination)
	})

	t.Run("ineligible target is not preserved", func(t *testing.T) {
		stale := kept
		stale.AllowedToBeDefault = false
		r := ranked(DefaultOptions(), typed("k"), &preserve,
			urlMatch("h", 1400, "https://best.example/", true),
			stale,
		)
		assert.Equal(t, "https://best.example/", r.MatchAt(0).Destination)
	})
}

func TestSortAndCullSearchOnlySurface(t *testing.T) {
	opts := DefaultOptions()
	opts.Demotions = DemotionTable{
		match.PageNTPRealbox: {match.HistoryURL: 0.5},
		match.PageOther:      {match.HistoryURL: 0.5},
	}
	verbatim := searchMatch("v", 1000, "apple", true)
	verbatim.Type = match.SearchWhatYouTyped
	hist := urlMatch("h", 1200, "https://apple.example/", true)

	realbox := typed("apple")
	realbox.Page = match.PageNTPRealbox
	r := ranked(opts, realbox, nil, verbatim, hist)
	assert.Equal(t, match.SearchWhatYouTyped, r.MatchAt(0).Type, "first eligible in demoted order")

	r = ranked(opts, typed("apple"), nil, verbatim, hist)
	assert.Equal(t, match.HistoryURL, r.MatchAt(0).Type, "max raw relevance elsewhere")
}

func TestSortAndCullDiscouragesTopEntity(t *testing.T) {
	entity := searchMatch("s", 1300, "paris", true)
	entity.Type = match.SearchSuggestEntity
	entity.EntityID = "/m/05qtj"
	entity.Description = "Capital of France"
	plain := searchMatch("s", 1200, "paris", true)
	other := urlMatch("h", 900, "https://paris.example/", false)

	r := ranked(DefaultOptions(), typed("pari"), nil, entity, plain, other)

	require.GreaterOrEqual(t, r.Size(), 2)
	assert.Equal(t, match.SearchSuggest, r.MatchAt(0).Type)
	assert.Equal(t, "/m/05qtj", r.MatchAt(0).EntityID)
	assert.Equal(t, match.SearchSuggestEntity, r.MatchAt(1).Type)
	assert.Empty(t, r.MatchAt(1).Duplicates)
}

func TestSortAndCullDiscouragePrefersSpecializedServerSearch(t *testing.T) {
	top := match.Match{
		Type:               match.SearchSuggestEntity,
		AllowedToBeDefault: true,
		Duplicates: []match.Match{
			{Type: match.SearchSuggest, AllowedToBeDefault: true, ProviderClass: match.ProviderHistory, Contents: "generic"},
			{Type: match.SearchSuggestPersonalized, AllowedToBeDefault: true, ProviderClass: match.ProviderSearch, Contents: "server"},
		},
	}
	out := discourageTopEntity([]match.Match{top})
	require.Len(t, out, 2)
	assert.Equal(t, "server", out[0].Contents)
	assert.Len(t, out[1].Duplicates, 1)
}

func TestCullTailSuggestions(t *testing.T) {
	tail := func(dflt bool) match.Match {
		m := searchMatch("s", 500, "…tail", dflt)
		m.Type = match.SearchSuggestTail
		return m
	}
	plain := func(dflt bool) match.Match { return searchMatch("s", 600, "plain", dflt) }

	tests := []struct {
		name      string
		in        []match.Match
		wantTails int
		wantPlain int
		tailDflt  bool
	}{
		{"no tails", []match.Match{plain(true), plain(false)}, 0, 2, false},
		{"only tail is default", []match.Match{plain(false), tail(true), tail(false)}, 2, 0, true},
		{"default plain and more plain", []match.Match{plain(true), plain(false), tail(true)}, 0, 2, false},
		{"default plain is the only plain", []match.Match{plain(true), tail(true), tail(true)}, 2, 1, false},
		{"no default at all", []match.Match{plain(false), tail(false)}, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := cullTailSuggestions(tt.in)
			tails, plains := 0, 0
			for _, m := range out {
				if m.Type.IsTail() {
					tails++
					if !tt.tailDflt {
						assert.False(t, m.AllowedToBeDefault)
					}
				} else {
					plains++
				}
			}
			assert.Equal(t, tt.wantTails, tails)
			assert.Equal(t, tt.wantPlain, plains)
		})
	}
}

func TestSortAndCullTailKeptWithSingleDefault(t *testing.T) {
	t1 := searchMatch("s", 1500, "…ing one", true)
	t1.Type = match.SearchSuggestTail
	t2 := searchMatch("s", 1400, "…ing two", true)
	t2.Type = match.SearchSuggestTail

	r := ranked(DefaultOptions(), typed("someth"), nil, searchMatch("v", 1000, "someth", true), t1, t2)

	require.Equal(t, 3, r.Size())
	assert.Equal(t, "someth", r.MatchAt(0).Contents)
	for i := 1; i < 3; i++ {
		assert.True(t, r.MatchAt(i).Type.IsTail())
		assert.False(t, r.MatchAt(i).AllowedToBeDefault)
	}
}

func TestSortAndCullURLLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxMatches = 8
	opts.MaxURLMatches = 2

	var ms []match.Match
	for i := range 6 {
		ms = append(ms, searchMatch("s", 1000-i*10, fmt.Sprintf("query%d", i), i == 0))
	}
	for i, rel := range []int{700, 950, 500, 800} {
		ms = append(ms, urlMatch("h", rel, fmt.Sprintf("https://u%d.example/", i), false))
	}

	r := ranked(opts, typed("q"), nil, ms...)

	require.Equal(t, 8, r.Size())
	var urls []int
	searches := 0
	for _, m := range r.Matches() {
		if m.Type.IsSearch() {
			searches++
		} else {
			urls = append(urls, m.Relevance)
		}
	}
	assert.Equal(t, 6, searches)
	assert.ElementsMatch(t, []int{950, 800}, urls)
}

func TestURLLimitGrowsWhenSearchesAreScarce(t *testing.T) {
	ms := append([]match.Match{searchMatch("s", 900, "one", true)}, numbered("h", 6, 800)...)
	out := limitURLs(ms, 5, 2, Comparator{})
	assert.Len(t, out, 5, "1 search leaves room for 4 URLs")
}

func TestSortAndCullSizeBounds(t *testing.T) {
	t.Run("static", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxMatches = 5
		r := ranked(opts, typed("s"), nil, numbered("h", 12, 900)...)
		assert.Equal(t, 5, r.Size())
	})

	t.Run("zero suggest", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxZeroSuggestMatches = 3
		r := ranked(opts, match.Input{Page: match.PageNTP}, nil, numbered("h", 12, 900)...)
		assert.Equal(t, 3, r.Size())
	})

	t.Run("stops at non-positive demoted relevance", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Demotions = DemotionTable{match.PageOther: {match.SearchSuggest: 0}}
		r := ranked(opts, typed("s"), nil,
			urlMatch("h", 900, "https://a.example/", true),
			searchMatch("s", 1000, "zeroed", false),
			urlMatch("h", 0, "https://b.example/", false),
		)
		assert.Equal(t, 1, r.Size())
	})

	t.Run("dynamic", func(t *testing.T) {
		opts := DefaultOptions()
		opts.DynamicMaxMatches = true
		opts.MaxMatches = 8
		opts.DynamicMaxMatchesLimit = 10
		opts.DynamicURLCutoff = 2

		var searches []match.Match
		for i := range 12 {
			searches = append(searches, searchMatch("s", 1000-i, fmt.Sprintf("q%02d", i), false))
		}
		r := ranked(opts, typed("q"), nil, searches...)
		assert.Equal(t, 10, r.Size(), "few URLs allow the increased limit")

		r = ranked(opts, typed("q"), nil, numbered("h", 12, 900)...)
		assert.Equal(t, 8, r.Size(), "many URLs fall back to the base limit")
		assert.LessOrEqual(t, r.Size(), opts.DynamicMaxMatchesLimit)
	})
}

func TestSortAndCullGrouping(t *testing.T) {
	groups := map[match.GroupID]GroupConfig{
		1: {Section: 2, Header: "Trending"},
		2: {Section: 1, Header: "Recent"},
	}
	grouped := func(m match.Match, g match.GroupID) match.Match {
		m.SuggestionGroupID = g
		return m
	}

	t.Run("zero input trims by relevance then groups", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxZeroSuggestMatches = 3
		r := New(opts)
		r.MergeSuggestionGroups(groups)
		r.AppendMatches([]match.Match{
			grouped(searchMatch("z", 900, "trend a", false), 1),
			grouped(searchMatch("z", 800, "trend b", false), 1),
			grouped(searchMatch("z", 700, "recent a", false), 2),
			searchMatch("z", 600, "plain", false),
		})
		r.SortAndCull(match.Input{Page: match.PageNTP}, testEngines, nil)

		assert.Equal(t, []string{"recent a", "trend a", "trend b"}, contents(r))
	})

	t.Run("zero input keeps positive matches behind an ungrouped zero", func(t *testing.T) {
		r := New(DefaultOptions())
		r.MergeSuggestionGroups(groups)
		r.AppendMatches([]match.Match{
			grouped(searchMatch("z", 900, "trend a", false), 1),
			grouped(searchMatch("z", 800, "trend b", false), 1),
			searchMatch("z", 0, "zero", false),
		})
		r.SortAndCull(match.Input{Page: match.PageNTP}, testEngines, nil)

		assert.Equal(t, []string{"trend a", "trend b"}, contents(r))
	})

	t.Run("typed input trims then groups below default", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaxMatches = 4
		r := New(opts)
		r.MergeSuggestionGroups(groups)
		r.AppendMatches([]match.Match{
			grouped(searchMatch("s", 1000, "top", true), 1),
			grouped(searchMatch("s", 900, "trend", false), 1),
			grouped(searchMatch("s", 800, "recent", false), 2),
			searchMatch("s", 700, "plain", false),
			searchMatch("s", 100, "culled", false),
		})
		r.SortAndCull(typed("t"), testEngines, nil)

		assert.Equal(t, []string{"top", "plain", "recent", "trend"}, contents(r))
	})

	t.Run("unknown group shares section zero", func(t *testing.T) {
		r := New(DefaultOptions())
		r.MergeSuggestionGroups(groups)
		m := grouped(searchMatch("s", 1, "x", false), 99)
		assert.Equal(t, 0, r.section(&m))
		m.SuggestionGroupID = match.GroupNone
		assert.Equal(t, ungroupedSection, r.section(&m))
	})
}

func TestSortAndCullSearchAboveURL(t *testing.T) {
	r := ranked(DefaultOptions(), typed("ex"), nil,
		urlMatch("h", 1200, "https://example.com/", true),
		urlMatch("h", 1100, "https://example.org/", false),
		searchMatch("s", 1000, "example", false),
		urlMatch("h", 900, "https://example.net/", false),
	)
	assert.Equal(t, []int{1200, 1000, 1100, 900}, relevances(r))

	opts := DefaultOptions()
	opts.GroupSearchVsURL = false
	r = ranked(opts, typed("ex"), nil,
		urlMatch("h", 1200, "https://example.com/", true),
		urlMatch("h", 1100, "https://example.org/", false),
		searchMatch("s", 1000, "example", false),
	)
	assert.Equal(t, []int{1200, 1100, 1000}, relevances(r))
}

func TestSortAndCullLimitsHistoryClusters(t *testing.T) {
	c1 := urlMatch("c", 900, "https://clusters.example/1", false)
	c1.Type = match.HistoryCluster
	c2 := urlMatch("c", 800, "https://clusters.example/2", false)
	c2.Type = match.HistoryCluster

	r := ranked(DefaultOptions(), typed("c"), nil, c1, c2, urlMatch("h", 700, "https://x.example/", true))
	clusters := 0
	for _, m := range r.Matches() {
		if m.Type == match.HistoryCluster {
			clusters++
		}
	}
	assert.Equal(t, 1, clusters)
}

func TestSortAndCullDemotesOnDeviceSearch(t *testing.T) {
	remote := searchMatch("remote", 600, "remote", false)
	local := searchMatch("device", 800, "local", false)
	local.ProviderClass = match.ProviderOnDevice

	r := ranked(DefaultOptions(), typed("r"), nil, local, remote)
	require.Equal(t, 2, r.Size())
	assert.Equal(t, "remote", r.MatchAt(0).Contents)
	assert.Equal(t, 599, r.MatchAt(1).Relevance)

	opts := DefaultOptions()
	opts.DemoteOnDeviceSearch = false
	r = ranked(opts, typed("r"), nil, local, remote)
	assert.Equal(t, "local", r.MatchAt(0).Contents)
}

func TestDemoteOnDeviceSearchIgnoresTrivialSearches(t *testing.T) {
	other := searchMatch("other", 300, "elsewhere", false)
	other.Type = match.SearchOtherEngine
	local := searchMatch("device", 800, "local", false)
	local.ProviderClass = match.ProviderOnDevice

	ms := []match.Match{other, local}
	demoteOnDeviceSearch(ms)
	assert.Equal(t, 800, ms[1].Relevance, "another-engine search is not a remote suggestion")

	remote := searchMatch("remote", 600, "remote", false)
	ms = []match.Match{other, local, remote}
	demoteOnDeviceSearch(ms)
	assert.Equal(t, 599, ms[1].Relevance)
}

func TestSortAndCullDedupsAcrossProviders(t *testing.T) {
	r := ranked(DefaultOptions(), typed("ex"), nil,
		urlMatch("history", 900, "https://www.example.com/", true),
		urlMatch("bookmarks", 700, "http://example.com/#top", false),
	)
	require.Equal(t, 1, r.Size())
	assert.Equal(t, "http://example.com/", r.MatchAt(0).StrippedDestination)
	assert.Len(t, r.MatchAt(0).Duplicates, 1)
}

func TestComparatorBreaksTiesOnDestination(t *testing.T) {
	a := urlMatch("h", 700, "https://b.example/", false)
	a.Contents = "Same title"
	b := urlMatch("h", 700, "https://a.example/", false)
	b.Contents = "Same title"

	r := ranked(DefaultOptions(), typed("s"), nil, a, b)
	require.Equal(t, 2, r.Size())
	assert.Equal(t, "https://a.example/", r.MatchAt(0).Destination)

	r = ranked(DefaultOptions(), typed("s"), nil, b, a)
	assert.Equal(t, "https://a.example/", r.MatchAt(0).Destination, "order does not depend on arrival")

	cmp := Comparator{}
	b.Relevance = 800
	assert.Negative(t, cmp.Compare(&b, &a))
}
