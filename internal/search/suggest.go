package search

import (
	"sort"
	"strings"

	"github.com/meridian-advisory/insights-api/internal/content"
)

// Suggestion limit bounds.
const (
	minSuggestLimit     = 1
	maxSuggestLimit     = 20
	defaultSuggestLimit = 8
)

// Suggester scoring weights, mirroring the search engine's ranking model.
const (
	suggestPrefixBonus    = 2.0
	suggestSubstringBonus = 1.0
	suggestFreqDivisor    = 10.0
)

// keyword tracks one known tag with its display form and corpus frequency.
type keyword struct {
	display string
	norm    string
	freq    int
}

// Suggester ranks the report index's tags against a partial query.
type Suggester struct {
	keywords []keyword
}

// NewSuggester builds the tag frequency table from the report index. Tags
// that normalize identically are folded together; the first display form
// wins.
func NewSuggester(idx *content.Index) *Suggester {
	byNorm := make(map[string]*keyword)
	order := make([]string, 0)

	for _, r := range idx.Reports() {
		for _, t := range r.Taggings {
			norm := Normalize(t)
			if norm == "" {
				continue
			}
			if kw, ok := byNorm[norm]; ok {
				kw.freq++
				continue
			}
			byNorm[norm] = &keyword{display: t, norm: norm, freq: 1}
			order = append(order, norm)
		}
	}

	s := &Suggester{keywords: make([]keyword, 0, len(order))}
	for _, norm := range order {
		s.keywords = append(s.keywords, *byNorm[norm])
	}
	return s
}

// Suggest returns up to limit keywords for the query. An empty query returns
// the most frequent tags; ties break alphabetically on the display form.
func (s *Suggester) Suggest(query string, limit int) []string {
	limit = clampSuggestLimit(limit)
	norm := Normalize(query)

	if norm == "" {
		return s.topByFrequency(limit)
	}
	return s.ranked(norm, limit)
}

func clampSuggestLimit(limit int) int {
	if limit == 0 {
		return defaultSuggestLimit
	}
	if limit < minSuggestLimit {
		return minSuggestLimit
	}
	if limit > maxSuggestLimit {
		return maxSuggestLimit
	}
	return limit
}

func (s *Suggester) topByFrequency(limit int) []string {
	kws := make([]keyword, len(s.keywords))
	copy(kws, s.keywords)

	sort.SliceStable(kws, func(i, j int) bool {
		if kws[i].freq != kws[j].freq {
			return kws[i].freq > kws[j].freq
		}
		return kws[i].display < kws[j].display
	})

	return displayNames(kws, limit)
}

func (s *Suggester) ranked(norm string, limit int) []string {
	type rankedKeyword struct {
		keyword
		score float64
	}

	var hits []rankedKeyword
	for _, kw := range s.keywords {
		if !strings.Contains(kw.norm, norm) {
			continue
		}
		score := suggestSubstringBonus + freqBonus(kw.freq)
		if strings.HasPrefix(kw.norm, norm) {
			score += suggestPrefixBonus
		}
		hits = append(hits, rankedKeyword{keyword: kw, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].freq != hits[j].freq {
			return hits[i].freq > hits[j].freq
		}
		return hits[i].display < hits[j].display
	})

	kws := make([]keyword, len(hits))
	for i, h := range hits {
		kws[i] = h.keyword
	}
	return displayNames(kws, limit)
}

// freqBonus converts a raw tag frequency into a score bonus capped at 1.0.
func freqBonus(freq int) float64 {
	bonus := float64(freq) / suggestFreqDivisor
	if bonus > 1.0 {
		return 1.0
	}
	return bonus
}

func displayNames(kws []keyword, limit int) []string {
	if len(kws) > limit {
		kws = kws[:limit]
	}
	names := make([]string, len(kws))
	for i, kw := range kws {
		names[i] = kw.display
	}
	return names
}
