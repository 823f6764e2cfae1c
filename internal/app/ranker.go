package app

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tour_map/internal/domain"
)

const (
	// MinKeywordLen is the shortest trimmed keyword worth a lookup.
	MinKeywordLen = 2
	// MaxSuggestions caps every suggestion list.
	MaxSuggestions = 10
)

// normalizeKeyword trims and case-folds kw. ok is false when the keyword is
// too short to search for.
func normalizeKeyword(kw string) (string, bool) {
	kw = strings.TrimSpace(kw)
	if utf8.RuneCountInString(kw) < MinKeywordLen {
		return "", false
	}
	return strings.ToLower(kw), true
}

// RankArtists extracts distinct performers from resp whose name contains
// keyword, exact matches first and then alphabetical, at most
// MaxSuggestions of them. Performers are identified by ID; the first name
// seen for an ID is kept.
func RankArtists(resp domain.SearchResponse, keyword string) []domain.Suggestion {
	kw, ok := normalizeKeyword(keyword)
	if !ok {
		return []domain.Suggestion{}
	}

	seen := make(map[string]struct{})
	var matches []domain.Suggestion
	for _, ev := range resp.Events() {
		for _, a := range ev.Attractions() {
			if a.ID == "" || a.Name == "" {
				continue
			}
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			if strings.Contains(strings.ToLower(a.Name), kw) {
				matches = append(matches, domain.Suggestion{ID: a.ID, Name: a.Name})
			}
		}
	}

	// collate.Collator keeps internal buffers; one per call.
	col := collate.New(language.Und)
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := strings.ToLower(matches[i].Name), strings.ToLower(matches[j].Name)
		ae, be := a == kw, b == kw
		if ae != be {
			return ae
		}
		return col.CompareString(a, b) < 0
	})

	if len(matches) > MaxSuggestions {
		matches = matches[:MaxSuggestions]
	}
	if matches == nil {
		return []domain.Suggestion{}
	}
	return matches
}

// EventNames returns up to MaxSuggestions distinct, non-empty event names in
// upstream order.
func EventNames(resp domain.SearchResponse) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, ev := range resp.Events() {
		if ev.Name == "" {
			continue
		}
		if _, dup := seen[ev.Name]; dup {
			continue
		}
		seen[ev.Name] = struct{}{}
		out = append(out, ev.Name)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
