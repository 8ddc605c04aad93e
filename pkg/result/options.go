package result

import "github.com/bastiangx/rankserve/pkg/match"

// Options is the flat policy surface of the ranking core. A Result reads it
// at construction and never consults process-wide state.
type Options struct {
	// MaxMatches caps typed-input results.
	MaxMatches int
	// MaxZeroSuggestMatches caps on-focus results.
	MaxZeroSuggestMatches int
	// MaxURLMatches limits URL-type matches. Zero disables the limit.
	MaxURLMatches int

	// DynamicMaxMatches lets typed-input results grow to DynamicMaxMatchesLimit
	// while at most DynamicURLCutoff URL matches have been counted.
	DynamicMaxMatches      bool
	DynamicMaxMatchesLimit int
	DynamicURLCutoff       int

	// DropDoneProviderMatches skips old matches of finished providers during transfer.
	DropDoneProviderMatches bool
	// PreventDefaultOnTransferred makes every transferred match ineligible for default.
	PreventDefaultOnTransferred bool
	// DemoteOnDeviceSearch pushes on-device search suggestions below remote ones.
	DemoteOnDeviceSearch bool
	// GroupSearchVsURL orders searches above URLs below the default row for typed input.
	GroupSearchVsURL bool

	Demotions DemotionTable
}

// DefaultOptions mirrors the shipped configuration.
func DefaultOptions() Options {
	return Options{
		MaxMatches:              8,
		MaxZeroSuggestMatches:   8,
		MaxURLMatches:           0,
		DynamicMaxMatches:       false,
		DynamicMaxMatchesLimit:  10,
		DynamicURLCutoff:        2,
		DropDoneProviderMatches: true,
		DemoteOnDeviceSearch:    true,
		GroupSearchVsURL:        true,
	}
}

func (o Options) maxMatches(zeroSuggest bool) int {
	if zeroSuggest {
		return o.MaxZeroSuggestMatches
	}
	return o.MaxMatches
}

// DemotionTable maps a page classification to per-type relevance multipliers.
type DemotionTable map[match.PageClassification]map[match.Type]float64

// For returns the multipliers that apply on page, or nil.
func (t DemotionTable) For(page match.PageClassification) map[match.Type]float64 {
	if t == nil {
		return nil
	}
	return t[page]
}
