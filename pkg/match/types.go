package match

import "strings"

// Type classifies a match. It drives demotion, grouping and culling policy.
type Type int

const (
	URLWhatYouTyped Type = iota
	HistoryURL
	HistoryTitle
	HistoryBody
	HistoryKeyword
	NavSuggest
	SearchWhatYouTyped
	SearchHistory
	SearchSuggest
	SearchSuggestEntity
	SearchSuggestTail
	SearchSuggestPersonalized
	SearchSuggestProfile
	SearchOtherEngine
	BookmarkTitle
	NavSuggestPersonalized
	Calculator
	ClipboardURL
	VoiceSuggest
	DocumentSuggestion
	Pedal
	HistoryCluster
	TileSuggestion
	TileNavSuggest
	OpenTab
	StarterPack
	numTypes
)

var typeNames = [numTypes]string{
	URLWhatYouTyped:           "url_what_you_typed",
	HistoryURL:                "history_url",
	HistoryTitle:              "history_title",
	HistoryBody:               "history_body",
	HistoryKeyword:            "history_keyword",
	NavSuggest:                "navsuggest",
	SearchWhatYouTyped:        "search_what_you_typed",
	SearchHistory:             "search_history",
	SearchSuggest:             "search_suggest",
	SearchSuggestEntity:       "search_suggest_entity",
	SearchSuggestTail:         "search_suggest_tail",
	SearchSuggestPersonalized: "search_suggest_personalized",
	SearchSuggestProfile:      "search_suggest_profile",
	SearchOtherEngine:         "search_other_engine",
	BookmarkTitle:             "bookmark_title",
	NavSuggestPersonalized:    "navsuggest_personalized",
	Calculator:                "calculator",
	ClipboardURL:              "clipboard_url",
	VoiceSuggest:              "voice_suggest",
	DocumentSuggestion:        "document",
	Pedal:                     "pedal",
	HistoryCluster:            "history_cluster",
	TileSuggestion:            "tile_suggestion",
	TileNavSuggest:            "tile_navsuggest",
	OpenTab:                   "open_tab",
	StarterPack:               "starter_pack",
}

func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "unknown"
	}
	return typeNames[t]
}

// ParseType maps a config/wire name back to a Type.
func ParseType(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// IsSearch reports whether t navigates to a search results page rather than a URL.
func (t Type) IsSearch() bool {
	switch t {
	case SearchWhatYouTyped, SearchHistory, SearchSuggest, SearchOtherEngine,
		VoiceSuggest, Calculator:
		return true
	}
	return t.IsSpecializedSearch()
}

// IsSpecializedSearch reports server-provided search types with a richer presentation.
func (t Type) IsSpecializedSearch() bool {
	switch t {
	case SearchSuggestEntity, SearchSuggestTail, SearchSuggestPersonalized,
		SearchSuggestProfile, TileSuggestion:
		return true
	}
	return false
}

// IsTrivial reports searches that only echo the typed text or send it to another engine.
func (t Type) IsTrivial() bool { return t == SearchWhatYouTyped || t == SearchOtherEngine }

// IsTail reports whether t is a tail (partial text) suggestion.
func (t Type) IsTail() bool { return t == SearchSuggestTail }

// IsTransferable reports whether a match of this type may be carried into a later pass.
// Tile layouts cannot be mixed with list rows without visual artifacts.
func (t Type) IsTransferable() bool {
	return t != TileSuggestion && t != TileNavSuggest
}
