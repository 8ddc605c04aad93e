package result

import (
	"testing"

	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyResult(t *testing.T) {
	r := New(DefaultOptions())
	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Size())
	assert.Nil(t, r.DefaultMatch())
	assert.False(t, r.HasCopiedMatches())

	r.SortAndCull(typed(""), testEngines, nil)
	assert.True(t, r.Empty())
}

func TestMatchAtPanicsOutOfRange(t *testing.T) {
	r := New(DefaultOptions())
	r.AppendMatches([]match.Match{urlMatch("h", 100, "https://a.example/", true)})

	assert.NotPanics(t, func() { r.MatchAt(0) })
	assert.Panics(t, func() { r.MatchAt(1) })
	assert.Panics(t, func() { r.MatchAt(-1) })
}

func TestDefaultMatchRequiresEligibility(t *testing.T) {
	r := New(DefaultOptions())
	r.AppendMatches([]match.Match{urlMatch("h", 900, "https://a.example/", false)})
	assert.Nil(t, r.DefaultMatch())

	r = New(DefaultOptions())
	r.AppendMatches([]match.Match{urlMatch("h", 900, "https://a.example/", true)})
	require.NotNil(t, r.DefaultMatch())
	assert.Equal(t, "https://a.example/", r.DefaultMatch().Destination)
}

func TestAppendMatches(t *testing.T) {
	t.Run("swaps contents and description for non-search", func(t *testing.T) {
		m := urlMatch("h", 100, "https://a.example/", false)
		m.Description = "Example A"
		s := searchMatch("s", 100, "a", false)
		s.Description = "suggested"

		r := New(DefaultOptions())
		r.AppendMatches([]match.Match{m, s})
		assert.True(t, r.MatchAt(0).SwapContentsAndDescription)
		assert.False(t, r.MatchAt(1).SwapContentsAndDescription)
	})

	t.Run("sanitizes text", func(t *testing.T) {
		m := urlMatch("h", 100, "https://a.example/", false)
		m.Contents = "a\x07b"

		r := New(DefaultOptions())
		r.AppendMatches([]match.Match{m})
		assert.Equal(t, "ab", r.MatchAt(0).Contents)
	})

	t.Run("copies the input", func(t *testing.T) {
		ms := []match.Match{urlMatch("h", 100, "https://a.example/", false)}
		r := New(DefaultOptions())
		r.AppendMatches(ms)
		r.MatchAt(0).Relevance = 5
		assert.Equal(t, 100, ms[0].Relevance)
	})
}

func TestCloneSwapReset(t *testing.T) {
	r := New(DefaultOptions())
	r.MergeSuggestionGroups(map[match.GroupID]GroupConfig{1: {Section: 2, Header: "Recent"}})
	r.AppendMatches([]match.Match{urlMatch("h", 100, "https://a.example/", true)})

	c := r.Clone()
	c.MatchAt(0).Relevance = 1
	assert.Equal(t, 100, r.MatchAt(0).Relevance)
	g, ok := c.Group(1)
	require.True(t, ok)
	assert.Equal(t, "Recent", g.Header)

	other := New(DefaultOptions())
	r.Swap(other)
	assert.True(t, r.Empty())
	assert.Equal(t, 1, other.Size())

	other.Reset()
	assert.True(t, other.Empty())
	_, ok = other.Group(1)
	assert.False(t, ok)
}
