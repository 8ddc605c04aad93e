package provider

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleTemplate = "https://www.google.com/search?q={searchTerms}"

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testHistory(minRelevance, maxResults int) *History {
	h := NewHistory("history", googleTemplate, minRelevance, maxResults)
	h.now = func() time.Time { return fixedNow }
	h.Load(&Seed{
		Entries: []Entry{
			{URL: "https://www.example.com/", Title: "Example Domain", Visits: 10, Typed: 2, LastVisit: fixedNow.Add(-time.Hour)},
			{URL: "https://example.org/docs", Title: "Docs Home", Visits: 1, LastVisit: fixedNow.Add(-40 * 24 * time.Hour)},
			{URL: "https://golang.org/", Title: "The Go Programming Language", Visits: 30, Typed: 10},
		},
		Searches: []SearchEntry{
			{Terms: "weather today", Count: 3, LastSearch: fixedNow.Add(-time.Hour)},
		},
	})
	return h
}

func TestHistoryURLPrefix(t *testing.T) {
	h := testHistory(0, 0)
	got := h.Start(match.Input{Text: "exa", Kind: match.InputQuery})

	require.Len(t, got, 2)
	first := got[0]
	assert.Equal(t, "https://www.example.com/", first.Destination)
	assert.Equal(t, match.HistoryURL, first.Type)
	assert.Equal(t, 900+80+50, first.Relevance)
	assert.True(t, first.AllowedToBeDefault)
	assert.Equal(t, "mple.com/", first.InlineAutocompletion)
	assert.Equal(t, "example.com/", first.FillIntoEdit)
	require.NotNil(t, first.Signals)
	assert.Equal(t, 2, *first.Signals.TypedCount)
	assert.True(t, *first.Signals.IsHostOnly)

	second := got[1]
	assert.Equal(t, "https://example.org/docs", second.Destination)
	assert.Equal(t, 900+5-100, second.Relevance, "stale entries lose 100")
	assert.False(t, *second.Signals.IsHostOnly)
}

func TestHistoryPreventInline(t *testing.T) {
	h := testHistory(0, 0)

	got := h.Start(match.Input{Text: "exa", PreventInlineAutocomplete: true})
	require.NotEmpty(t, got)
	for _, m := range got {
		assert.False(t, m.AllowedToBeDefault)
		assert.Empty(t, m.InlineAutocompletion)
	}

	got = h.Start(match.Input{Text: "example.com/", PreventInlineAutocomplete: true})
	require.Len(t, got, 1)
	assert.True(t, got[0].AllowedToBeDefault, "exact match needs no inline completion")
}

func TestHistoryTitleMatch(t *testing.T) {
	h := testHistory(0, 0)

	got := h.Start(match.Input{Text: "programming lang"})
	require.Len(t, got, 1)
	assert.Equal(t, match.HistoryTitle, got[0].Type)
	assert.Equal(t, "https://golang.org/", got[0].Destination)
	assert.Equal(t, "The Go Programming Language", got[0].Description)
	assert.Equal(t, min(500+200+100, maxHistoryScore), got[0].Relevance)
	assert.False(t, got[0].AllowedToBeDefault)

	assert.Empty(t, h.Start(match.Input{Text: "programming rust"}))
}

func TestHistoryTitleSkipsURLMatches(t *testing.T) {
	h := testHistory(0, 0)
	got := h.Start(match.Input{Text: "example"})
	for _, m := range got {
		assert.Equal(t, match.HistoryURL, m.Type)
	}
}

func TestHistorySearches(t *testing.T) {
	h := testHistory(0, 0)
	got := h.Start(match.Input{Text: "Weath"})

	require.Len(t, got, 1)
	m := got[0]
	assert.Equal(t, match.SearchHistory, m.Type)
	assert.Equal(t, 1100+15, m.Relevance)
	assert.Equal(t, "https://www.google.com/search?q=weather+today", m.Destination)
	assert.Equal(t, "er today", m.InlineAutocompletion)
	assert.True(t, m.AllowedToBeDefault)
	assert.Equal(t, 3, *m.Signals.VisitCount)
}

func TestHistoryAddSearchAccumulates(t *testing.T) {
	h := testHistory(0, 0)
	h.AddSearch(SearchEntry{Terms: "WEATHER  today", Count: 17})

	got := h.Start(match.Input{Text: "weather"})
	require.Len(t, got, 1)
	assert.Equal(t, 1100+100, got[0].Relevance)
}

func TestHistoryZeroSuggest(t *testing.T) {
	h := testHistory(0, 0)
	got := h.Start(match.Input{Page: match.PageNTP})

	require.Len(t, got, 3)
	assert.Equal(t, "https://golang.org/", got[0].Destination)
	assert.Equal(t, 400+200+100, got[0].Relevance)
	for _, m := range got {
		assert.False(t, m.AllowedToBeDefault)
	}
}

func TestHistoryLimits(t *testing.T) {
	h := testHistory(950, 0)
	got := h.Start(match.Input{Text: "exa"})
	require.Len(t, got, 1)
	assert.Equal(t, "https://www.example.com/", got[0].Destination)

	h = testHistory(0, 1)
	assert.Len(t, h.Start(match.Input{Text: "exa"}), 1)
}

func TestHistoryWithoutSearchTemplate(t *testing.T) {
	h := NewHistory("history", "", 0, 0)
	h.AddSearch(SearchEntry{Terms: "weather", Count: 1})
	assert.Empty(t, h.Start(match.Input{Text: "wea"}))
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.toml")
	content := `
[[entry]]
url = "https://news.example/"
title = "Daily News"
visits = 4
typed = 1
last_visit = 2025-05-30T10:00:00Z

[[search]]
terms = "news today"
count = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Entries, 1)
	assert.Equal(t, "Daily News", seed.Entries[0].Title)
	assert.Equal(t, 4, seed.Entries[0].Visits)
	assert.Equal(t, time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC), seed.Entries[0].LastVisit.UTC())
	require.Len(t, seed.Searches, 1)
	assert.Equal(t, 2, seed.Searches[0].Count)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
