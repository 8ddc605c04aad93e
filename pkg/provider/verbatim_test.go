package provider

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bastiangx/rankserve/pkg/config"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbatim(t *testing.T) {
	v := NewVerbatim("verbatim", googleTemplate)

	tests := []struct {
		name  string
		input match.Input
		types []match.Type
		rels  []int
		dests []string
	}{
		{
			name:  "query",
			input: match.Input{Text: "hello world", Kind: match.InputQuery},
			types: []match.Type{match.SearchWhatYouTyped},
			rels:  []int{1300},
			dests: []string{"https://www.google.com/search?q=hello+world"},
		},
		{
			name:  "url",
			input: match.Input{Text: "example.com", Kind: match.InputURL},
			types: []match.Type{match.URLWhatYouTyped, match.SearchWhatYouTyped},
			rels:  []int{1200, 1000},
			dests: []string{"http://example.com", "https://www.google.com/search?q=example.com"},
		},
		{
			name:  "unknown kind is classified",
			input: match.Input{Text: "https://go.dev/doc"},
			types: []match.Type{match.URLWhatYouTyped, match.SearchWhatYouTyped},
			rels:  []int{1200, 1000},
			dests: []string{"https://go.dev/doc", "https://www.google.com/search?q=https%3A%2F%2Fgo.dev%2Fdoc"},
		},
		{
			name:  "zero input",
			input: match.Input{Page: match.PageNTP},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Start(tt.input)
			require.Len(t, got, len(tt.types))
			for i, m := range got {
				assert.Equal(t, tt.types[i], m.Type)
				assert.Equal(t, tt.rels[i], m.Relevance)
				assert.Equal(t, tt.dests[i], m.Destination)
				assert.True(t, m.AllowedToBeDefault)
				assert.Equal(t, match.ProviderVerbatim, m.ProviderClass)
				assert.Equal(t, tt.input.Text, m.FillIntoEdit)
			}
		})
	}
}

func TestVerbatimWithoutEngine(t *testing.T) {
	v := NewVerbatim("verbatim", "")
	assert.Empty(t, v.Start(match.Input{Text: "hello", Kind: match.InputQuery}))
	assert.Len(t, v.Start(match.Input{Text: "example.com", Kind: match.InputURL}), 1)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "https://duckduckgo.com/?q=a+b", SearchURL("https://duckduckgo.com/?q={searchTerms}", "  a b "))
	assert.Equal(t, "http://example.com", FixupURL(" example.com "))
	assert.Equal(t, "ftp://files.example", FixupURL("ftp://files.example"))
	assert.Equal(t, "", FixupURL("  "))
	assert.Equal(t, "example.com/path", displayURL("HTTPS://WWW.Example.com/path"))
}

func TestBuiltin(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		providers, err := Builtin(config.DefaultConfig())
		require.NoError(t, err)
		require.Len(t, providers, 2)
		assert.Equal(t, VerbatimID, providers[0].ID())
		assert.Equal(t, HistoryID, providers[1].ID())
		assert.Equal(t, match.ProviderHistory, providers[1].Class())
	})

	t.Run("seed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[entry]]\nurl = \"https://seeded.example/\"\nvisits = 3\n"), 0644))

		cfg := config.DefaultConfig()
		cfg.History.SeedFile = path
		providers, err := Builtin(cfg)
		require.NoError(t, err)

		got := providers[1].Start(match.Input{Text: "seed", Kind: match.InputQuery})
		require.Len(t, got, 1)
		assert.Equal(t, "https://seeded.example/", got[0].Destination)
	})

	t.Run("missing seed file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.History.SeedFile = filepath.Join(t.TempDir(), "nope.toml")
		_, err := Builtin(cfg)
		assert.Error(t, err)
	})
}
