package search_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/search"
)

// suggesterWithFreqs builds a suggester whose tag table contains each keyword
// with exactly the given frequency.
func suggesterWithFreqs(t *testing.T, freqs map[string]int) *search.Suggester {
	t.Helper()

	var reports []domain.Report
	i := 0
	for tag, n := range freqs {
		for range n {
			reports = append(reports, report(
				fmt.Sprintf("r-%d", i), fmt.Sprintf("Report %d", i), "", "Technology", "2026-01-01", tag))
			i++
		}
	}
	return search.NewSuggester(buildIndex(t, reports, nil))
}

func TestSuggest_EmptyQueryTopFrequency(t *testing.T) {
	s := suggesterWithFreqs(t, map[string]int{"AI": 5, "Cloud": 5, "Energy": 2})

	got := s.Suggest("", 2)
	assert.Equal(t, []string{"AI", "Cloud"}, got, "frequency ties break alphabetically")

	got = s.Suggest("", 10)
	assert.Equal(t, []string{"AI", "Cloud", "Energy"}, got)
}

func TestSuggest_PrefixBeatsSubstring(t *testing.T) {
	s := suggesterWithFreqs(t, map[string]int{"Energy": 2, "Renewable Energy": 5})

	got := s.Suggest("en", 10)
	assert.Equal(t, []string{"Energy", "Renewable Energy"}, got,
		"prefix match outranks a more frequent substring match")
}

func TestSuggest_SubstringMatching(t *testing.T) {
	s := suggesterWithFreqs(t, map[string]int{"AI": 3, "Retail": 1, "Cloud": 2})

	got := s.Suggest("ai", 10)
	assert.Equal(t, []string{"AI", "Retail"}, got)
}

func TestSuggest_NoMatches(t *testing.T) {
	s := suggesterWithFreqs(t, map[string]int{"AI": 1})

	assert.Empty(t, s.Suggest("xyz", 10))
}

func TestSuggest_QueryNormalized(t *testing.T) {
	s := suggesterWithFreqs(t, map[string]int{"Oil & Gas": 3})

	assert.Equal(t, []string{"Oil & Gas"}, s.Suggest("  OIL  ", 5),
		"display form is preserved even though matching is normalized")
}

func TestSuggest_LimitClamping(t *testing.T) {
	freqs := make(map[string]int, 30)
	for i := range 30 {
		freqs[fmt.Sprintf("Tag%02d", i)] = 1
	}
	s := suggesterWithFreqs(t, freqs)

	assert.Len(t, s.Suggest("", 0), 8, "zero limit uses the default")
	assert.Len(t, s.Suggest("", -4), 1, "negative limit clamps to one")
	assert.Len(t, s.Suggest("", 500), 20, "limit caps at twenty")
}

func TestSuggest_FoldsEquivalentTags(t *testing.T) {
	idx := buildIndex(t, []domain.Report{
		report("a", "A", "", "Tech", "2026-01-01", "Oil & Gas"),
		report("b", "B", "", "Tech", "2026-01-02", "oil gas"),
		report("c", "C", "", "Tech", "2026-01-03", "Mining"),
	}, nil)
	s := search.NewSuggester(idx)

	got := s.Suggest("", 10)
	assert.Equal(t, []string{"Oil & Gas", "Mining"}, got,
		"tags that normalize identically fold into the first display form")
}
