package match

import "strings"

// ProviderID is an opaque identifier assigned by the caller to one provider instance.
// The ranking core only compares ids; it never holds provider references.
type ProviderID string

// ProviderClass is the closed set of provider kinds the ranking core distinguishes.
type ProviderClass int

const (
	ProviderUnknown ProviderClass = iota
	ProviderHistory
	ProviderBookmark
	ProviderShortcuts
	ProviderSearch
	ProviderOnDevice
	ProviderZeroSuggest
	ProviderClipboard
	ProviderCalculator
	ProviderHistoryCluster
	ProviderVerbatim
	ProviderDocument
	numProviderClasses
)

var providerClassNames = [numProviderClasses]string{
	ProviderUnknown:        "unknown",
	ProviderHistory:        "history",
	ProviderBookmark:       "bookmark",
	ProviderShortcuts:      "shortcuts",
	ProviderSearch:         "search",
	ProviderOnDevice:       "on_device",
	ProviderZeroSuggest:    "zero_suggest",
	ProviderClipboard:      "clipboard",
	ProviderCalculator:     "calculator",
	ProviderHistoryCluster: "history_cluster",
	ProviderVerbatim:       "verbatim",
	ProviderDocument:       "document",
}

func (c ProviderClass) String() string {
	if c < 0 || c >= numProviderClasses {
		return "unknown"
	}
	return providerClassNames[c]
}

// ParseProviderClass maps a wire name to a ProviderClass. Unknown names map to ProviderUnknown.
func ParseProviderClass(name string) ProviderClass {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range providerClassNames {
		if n == name {
			return ProviderClass(i)
		}
	}
	return ProviderUnknown
}

// dedupPriority ranks provider classes when choosing a duplicate survivor.
// Higher wins before relevance is considered.
var dedupPriority = [numProviderClasses]int{
	ProviderDocument: 1,
}

// DedupPriority returns the provider class rank used during deduplication.
func (c ProviderClass) DedupPriority() int {
	if c < 0 || c >= numProviderClasses {
		return 0
	}
	return dedupPriority[c]
}
