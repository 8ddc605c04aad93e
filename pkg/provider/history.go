package provider

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bastiangx/rankserve/pkg/match"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry is one visited URL.
type Entry struct {
	URL       string    `toml:"url"`
	Title     string    `toml:"title"`
	Visits    int       `toml:"visits"`
	Typed     int       `toml:"typed"`
	LastVisit time.Time `toml:"last_visit"`
}

// SearchEntry is one past search.
type SearchEntry struct {
	Terms      string    `toml:"terms"`
	Count      int       `toml:"count"`
	LastSearch time.Time `toml:"last_search"`
}

// Seed is the on-disk history format.
type Seed struct {
	Entries  []Entry       `toml:"entry"`
	Searches []SearchEntry `toml:"search"`
}

// LoadSeed reads a history seed file.
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("reading history seed %s: %w", path, err)
	}
	return &seed, nil
}

const (
	staleAfter        = 30 * 24 * time.Hour
	inlineBase        = 900
	titleBase         = 500
	zeroSuggestBase   = 400
	searchHistoryBase = 1100
	maxHistoryScore   = 1399
)

// History serves URL, title and past-search matches from patricia tries.
type History struct {
	id             match.ProviderID
	searchTemplate string
	minRelevance   int
	maxResults     int
	now            func() time.Time

	mu       sync.RWMutex
	urls     *patricia.Trie // display URL -> []*Entry
	titles   *patricia.Trie // folded title word -> []*Entry
	searches *patricia.Trie // normalized terms -> *SearchEntry
	entries  []*Entry
}

// NewHistory returns an empty history provider.
func NewHistory(id match.ProviderID, searchTemplate string, minRelevance, maxResults int) *History {
	return &History{
		id:             id,
		searchTemplate: searchTemplate,
		minRelevance:   minRelevance,
		maxResults:     maxResults,
		now:            time.Now,
		urls:           patricia.NewTrie(),
		titles:         patricia.NewTrie(),
		searches:       patricia.NewTrie(),
	}
}

func (h *History) ID() match.ProviderID       { return h.id }
func (h *History) Class() match.ProviderClass { return match.ProviderHistory }

// Load indexes every entry of seed.
func (h *History) Load(seed *Seed) {
	for i := range seed.Entries {
		h.AddEntry(seed.Entries[i])
	}
	for i := range seed.Searches {
		h.AddSearch(seed.Searches[i])
	}
	log.Debugf("History indexed %d urls and %d searches", len(seed.Entries), len(seed.Searches))
}

// AddEntry indexes a visited URL by its display form and title words.
func (h *History) AddEntry(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := &e
	h.entries = append(h.entries, entry)
	appendItem(h.urls, displayURL(e.URL), entry)
	for _, word := range strings.Fields(match.NormalizeTerms(e.Title)) {
		appendItem(h.titles, word, entry)
	}
}

// AddSearch indexes a past search. Repeated terms accumulate their count.
func (h *History) AddSearch(s SearchEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := patricia.Prefix(match.NormalizeTerms(s.Terms))
	if existing, ok := h.searches.Get(key).(*SearchEntry); ok {
		existing.Count += s.Count
		if s.LastSearch.After(existing.LastSearch) {
			existing.LastSearch = s.LastSearch
		}
		return
	}
	h.searches.Insert(key, &s)
}

func appendItem(trie *patricia.Trie, key string, e *Entry) {
	if key == "" {
		return
	}
	p := patricia.Prefix(key)
	if existing, ok := trie.Get(p).([]*Entry); ok {
		if !slices.Contains(existing, e) {
			trie.Set(p, append(existing, e))
		}
		return
	}
	trie.Insert(p, []*Entry{e})
}

// Start returns history matches for in, best first, at most maxResults.
func (h *History) Start(in match.Input) []match.Match {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	var out []match.Match
	if in.IsZeroSuggest() {
		out = h.mostVisited(now)
	} else {
		out = append(out, h.urlMatches(in, now)...)
		out = append(out, h.titleMatches(in, now, out)...)
		out = append(out, h.searchMatches(in, now)...)
	}

	out = slices.DeleteFunc(out, func(m match.Match) bool { return m.Relevance < h.minRelevance })
	slices.SortStableFunc(out, func(a, b match.Match) int { return cmp.Compare(b.Relevance, a.Relevance) })
	if h.maxResults > 0 && len(out) > h.maxResults {
		out = out[:h.maxResults]
	}
	return out
}

func (h *History) urlMatches(in match.Input, now time.Time) []match.Match {
	typed := displayURL(strings.TrimSpace(in.Text))
	if typed == "" {
		return nil
	}
	var out []match.Match
	err := h.urls.VisitSubtree(patricia.Prefix(typed), func(p patricia.Prefix, item patricia.Item) error {
		display := string(p)
		for _, e := range item.([]*Entry) {
			completion := display[len(typed):]
			m := h.entryMatch(e, match.HistoryURL, scoreEntry(e, inlineBase, now), now)
			m.FillIntoEdit = display
			if !in.PreventInlineAutocomplete || completion == "" {
				m.AllowedToBeDefault = true
				m.InlineAutocompletion = completion
			}
			m.Signals.FirstURLMatchPosition = match.Ptr(0)
			m.Signals.TotalURLMatchLength = match.Ptr(len(typed))
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting history url trie: %v", err)
	}
	return out
}

// titleMatches returns entries whose title contains every typed word.
// Entries already matched by URL are skipped.
func (h *History) titleMatches(in match.Input, now time.Time, byURL []match.Match) []match.Match {
	words := strings.Fields(match.NormalizeTerms(in.Text))
	if len(words) == 0 {
		return nil
	}
	seen := make(map[*Entry]bool)
	for _, m := range byURL {
		for _, e := range h.entries {
			if e.URL == m.Destination {
				seen[e] = true
			}
		}
	}

	var out []match.Match
	err := h.titles.VisitSubtree(patricia.Prefix(words[0]), func(_ patricia.Prefix, item patricia.Item) error {
		for _, e := range item.([]*Entry) {
			if seen[e] {
				continue
			}
			seen[e] = true
			title := match.NormalizeTerms(e.Title)
			if !containsAll(title, words[1:]) {
				continue
			}
			m := h.entryMatch(e, match.HistoryTitle, scoreEntry(e, titleBase, now), now)
			m.FillIntoEdit = displayURL(e.URL)
			m.Signals.TotalTitleMatchLength = match.Ptr(len(strings.Join(words, "")))
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting history title trie: %v", err)
	}
	return out
}

func (h *History) searchMatches(in match.Input, now time.Time) []match.Match {
	if h.searchTemplate == "" {
		return nil
	}
	typed := match.NormalizeTerms(in.Text)
	if typed == "" {
		return nil
	}
	var out []match.Match
	err := h.searches.VisitSubtree(patricia.Prefix(typed), func(p patricia.Prefix, item patricia.Item) error {
		s := item.(*SearchEntry)
		terms := string(p)
		rel := searchHistoryBase + min(s.Count*5, 100)
		if !s.LastSearch.IsZero() && now.Sub(s.LastSearch) > staleAfter {
			rel -= 100
		}
		completion := terms[len(typed):]
		m := match.Match{
			Provider:      h.id,
			ProviderClass: match.ProviderHistory,
			Relevance:     rel,
			Type:          match.SearchHistory,
			Destination:   SearchURL(h.searchTemplate, terms),
			FillIntoEdit:  terms,
			Contents:      terms,
			Signals: &match.ScoringSignals{
				VisitCount: match.Ptr(s.Count),
			},
		}
		if !in.PreventInlineAutocomplete || completion == "" {
			m.AllowedToBeDefault = true
			m.InlineAutocompletion = completion
		}
		if !s.LastSearch.IsZero() {
			m.Signals.ElapsedTimeLastVisitSecs = match.Ptr(int64(now.Sub(s.LastSearch).Seconds()))
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting search history trie: %v", err)
	}
	return out
}

// mostVisited answers on-focus requests with the most visited URLs.
func (h *History) mostVisited(now time.Time) []match.Match {
	out := make([]match.Match, 0, len(h.entries))
	for _, e := range h.entries {
		m := h.entryMatch(e, match.HistoryURL, scoreEntry(e, zeroSuggestBase, now), now)
		m.FillIntoEdit = displayURL(e.URL)
		out = append(out, m)
	}
	return out
}

func (h *History) entryMatch(e *Entry, t match.Type, rel int, now time.Time) match.Match {
	signals := &match.ScoringSignals{
		TypedCount:  match.Ptr(e.Typed),
		VisitCount:  match.Ptr(e.Visits),
		LengthOfURL: match.Ptr(len(e.URL)),
		IsHostOnly:  match.Ptr(isHostOnly(e.URL)),
	}
	if !e.LastVisit.IsZero() {
		signals.ElapsedTimeLastVisitSecs = match.Ptr(int64(now.Sub(e.LastVisit).Seconds()))
	}
	return match.Match{
		Provider:      h.id,
		ProviderClass: match.ProviderHistory,
		Relevance:     rel,
		Type:          t,
		Destination:   e.URL,
		Contents:      e.URL,
		Description:   e.Title,
		Signals:       signals,
	}
}

func scoreEntry(e *Entry, base int, now time.Time) int {
	score := base + min(e.Typed*40, 200) + min(e.Visits*5, 100)
	if !e.LastVisit.IsZero() && now.Sub(e.LastVisit) > staleAfter {
		score -= 100
	}
	return min(score, maxHistoryScore)
}

func containsAll(s string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(s, w) {
			return false
		}
	}
	return true
}

func isHostOnly(raw string) bool {
	d := displayURL(raw)
	i := strings.IndexByte(d, '/')
	return i < 0 || i == len(d)-1
}
