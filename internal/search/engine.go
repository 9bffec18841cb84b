// Package search implements the in-process site search engine and the keyword
// suggester. Candidates are built once from the immutable content indexes, so
// an Engine is safe for concurrent use.
package search

import (
	"sort"
	"strings"

	"github.com/meridian-advisory/insights-api/internal/content"
)

// Scopes restrict the candidate pool.
const (
	ScopeAll      = "all"
	ScopeInsights = "insights"
	ScopeNewsroom = "newsroom"
)

// Modes select the matching strategy. Empty mode is auto-selected from the
// normalized query length.
const (
	ModeSuggest = "suggest"
	ModePrefix  = "prefix"
	ModeFull    = "full"
)

// Result types.
const (
	TypePage    = "page"
	TypeReport  = "report"
	TypeArticle = "article"
)

// Pagination bounds.
const (
	minLimit     = 1
	maxLimit     = 50
	defaultLimit = 10
)

// Query-length thresholds for mode auto-selection.
const (
	suggestMaxLen = 1
	prefixMaxLen  = 3
)

// Scoring weights per the ranking model: a prefix match dominates a plain
// substring match, and popularity only breaks near-ties.
const (
	prefixWeight    = 2.0
	substringWeight = 1.0
	maxPopularity   = 1.0
)

// popularityDivisor scales raw tag-frequency sums into the [0,1] bonus.
const popularityDivisor = 20.0

// Request is a single search invocation.
type Request struct {
	Scope  string `form:"scope"  json:"scope"`
	Query  string `form:"q"      json:"query"`
	Limit  int    `form:"limit"  json:"limit"`
	Offset int    `form:"offset" json:"offset"`
	Mode   string `form:"mode"   json:"mode,omitempty"`
}

// Result is one search hit. Ephemeral, computed per request.
type Result struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Href     string   `json:"href"`
	Snippet  string   `json:"snippet,omitempty"`
	Industry string   `json:"industry,omitempty"`
	Date     string   `json:"date,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Response is the search endpoint envelope.
type Response struct {
	Scope   string   `json:"scope"`
	Query   string   `json:"query"`
	Mode    string   `json:"mode"`
	Results []Result `json:"results"`
}

// candidate is a precomputed searchable entry.
type candidate struct {
	result     Result
	scope      string
	normTitle  string
	normDesc   string
	normInd    string
	normTags   []string
	popularity float64
}

// Engine scores site pages, reports, and newsroom articles against a query.
type Engine struct {
	candidates []candidate
	curated    map[string][]Result
}

// staticPage describes a fixed site destination included in search.
type staticPage struct {
	title string
	href  string
	desc  string
}

var staticPages = []staticPage{
	{"About Us", "/about", "Who we are and how we work"},
	{"Careers", "/careers", "Open roles and life at the firm"},
	{"Contact", "/contact", "Talk to our team"},
	{"Industries", "/industries", "Sectors we cover"},
	{"Newsroom", "/newsroom", "Press releases and firm news"},
	{"Reports", "/reports", "Research reports and market outlooks"},
	{"Services", "/services", "Advisory and research services"},
}

// NewEngine builds the candidate pool and curated suggestions from the
// content index.
func NewEngine(idx *content.Index) *Engine {
	tagFreq := tagFrequencies(idx)

	e := &Engine{}
	for _, p := range staticPages {
		e.candidates = append(e.candidates, candidate{
			result: Result{
				ID:      "page:" + p.href,
				Type:    TypePage,
				Title:   p.title,
				Href:    p.href,
				Snippet: p.desc,
			},
			scope:     ScopeAll,
			normTitle: Normalize(p.title),
			normDesc:  Normalize(p.desc),
		})
	}

	for _, r := range idx.Reports() {
		freqSum := 0
		normTags := make([]string, 0, len(r.Taggings))
		for _, t := range r.Taggings {
			normTags = append(normTags, Normalize(t))
			freqSum += tagFreq[Normalize(t)]
		}
		e.candidates = append(e.candidates, candidate{
			result: Result{
				ID:       "report:" + r.Slug,
				Type:     TypeReport,
				Title:    r.Title,
				Href:     "/reports/" + r.Slug,
				Snippet:  r.Description,
				Industry: r.Industry,
				Date:     r.Date,
				Tags:     r.Taggings,
			},
			scope:      ScopeInsights,
			normTitle:  Normalize(r.Title),
			normDesc:   Normalize(r.Description),
			normInd:    Normalize(r.Industry),
			normTags:   normTags,
			popularity: popularityBonus(freqSum),
		})
	}

	for _, a := range idx.Articles() {
		freqSum := 0
		normTags := make([]string, 0, len(a.Tags))
		for _, t := range a.Tags {
			normTags = append(normTags, Normalize(t))
			freqSum += tagFreq[Normalize(t)]
		}
		e.candidates = append(e.candidates, candidate{
			result: Result{
				ID:       "article:" + a.Slug,
				Type:     TypeArticle,
				Title:    a.Title,
				Href:     "/newsroom/" + a.Slug,
				Snippet:  a.Summary,
				Industry: a.Industry,
				Date:     a.Date,
				Tags:     a.Tags,
			},
			scope:      ScopeNewsroom,
			normTitle:  Normalize(a.Title),
			normDesc:   Normalize(a.Summary),
			normInd:    Normalize(a.Industry),
			normTags:   normTags,
			popularity: popularityBonus(freqSum),
		})
	}

	e.curated = e.buildCurated()
	return e
}

func popularityBonus(freqSum int) float64 {
	bonus := float64(freqSum) / popularityDivisor
	if bonus > maxPopularity {
		return maxPopularity
	}
	return bonus
}

func tagFrequencies(idx *content.Index) map[string]int {
	freq := make(map[string]int)
	for _, r := range idx.Reports() {
		for _, t := range r.Taggings {
			freq[Normalize(t)]++
		}
	}
	return freq
}

// buildCurated assembles the fixed per-scope destination lists served in
// suggest mode. Reports and articles enter by recency; order is fixed at
// startup so repeated calls return identical lists.
func (e *Engine) buildCurated() map[string][]Result {
	curated := make(map[string][]Result, 3)

	pages := make([]Result, 0, len(staticPages))
	reports := make([]Result, 0)
	articles := make([]Result, 0)
	for _, c := range e.candidates {
		switch c.result.Type {
		case TypePage:
			pages = append(pages, c.result)
		case TypeReport:
			reports = append(reports, c.result)
		case TypeArticle:
			articles = append(articles, c.result)
		}
	}

	byDateDesc := func(rs []Result) {
		sort.SliceStable(rs, func(i, j int) bool {
			if rs[i].Date != rs[j].Date {
				return rs[i].Date > rs[j].Date
			}
			return rs[i].Title < rs[j].Title
		})
	}
	byDateDesc(reports)
	byDateDesc(articles)

	curated[ScopeInsights] = clip(reports, defaultLimit)
	curated[ScopeNewsroom] = clip(articles, defaultLimit)

	all := make([]Result, 0, len(pages)+defaultLimit)
	all = append(all, pages...)
	all = append(all, clip(reports, defaultLimit-len(pages))...)
	curated[ScopeAll] = clip(all, defaultLimit)

	return curated
}

func clip(rs []Result, n int) []Result {
	if n < 0 {
		n = 0
	}
	if len(rs) > n {
		return rs[:n]
	}
	return rs
}

// Search executes a search request. Output ordering is deterministic for
// identical inputs.
func (e *Engine) Search(req Request) Response {
	scope := normalizeScope(req.Scope)
	query := Normalize(req.Query)
	mode := selectMode(req.Mode, query)
	limit, offset := clampPagination(req.Limit, req.Offset)

	var results []Result
	switch mode {
	case ModeSuggest:
		results = e.curated[scope]
	case ModePrefix:
		results = e.prefixSearch(scope, query)
	default:
		results = e.fullSearch(scope, query)
	}

	return Response{
		Scope:   scope,
		Query:   strings.TrimSpace(req.Query),
		Mode:    mode,
		Results: paginate(results, limit, offset),
	}
}

func normalizeScope(scope string) string {
	switch scope {
	case ScopeInsights, ScopeNewsroom:
		return scope
	default:
		return ScopeAll
	}
}

func selectMode(mode, normQuery string) string {
	switch mode {
	case ModeSuggest, ModePrefix, ModeFull:
		return mode
	}
	switch n := len(normQuery); {
	case n <= suggestMaxLen:
		return ModeSuggest
	case n <= prefixMaxLen:
		return ModePrefix
	default:
		return ModeFull
	}
}

func clampPagination(limit, offset int) (int, int) {
	if limit == 0 {
		limit = defaultLimit
	}
	if limit < minLimit {
		limit = minLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func paginate(rs []Result, limit, offset int) []Result {
	if offset >= len(rs) {
		return []Result{}
	}
	rs = rs[offset:]
	return clip(rs, limit)
}

// inScope reports whether a candidate belongs to the requested scope.
// Static pages only appear in the "all" scope.
func (c *candidate) inScope(scope string) bool {
	return scope == ScopeAll || c.scope == scope
}

// scored pairs a candidate with its computed score for ranking.
type scored struct {
	result       Result
	score        float64
	matchedField string
}

func sortScored(hits []scored) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].matchedField != hits[j].matchedField {
			return hits[i].matchedField < hits[j].matchedField
		}
		return hits[i].result.ID < hits[j].result.ID
	})
}

func collect(hits []scored) []Result {
	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = h.result
	}
	return results
}

// prefixSearch matches candidates whose normalized title or tag starts with
// the query. Prefix matches rank above substring matches.
func (e *Engine) prefixSearch(scope, query string) []Result {
	if query == "" {
		return []Result{}
	}

	var hits []scored
	for i := range e.candidates {
		c := &e.candidates[i]
		if !c.inScope(scope) {
			continue
		}

		field, isPrefix := c.prefixMatch(query)
		if field == "" {
			continue
		}
		score := substringWeight
		if isPrefix {
			score = prefixWeight
		}
		hits = append(hits, scored{result: c.result, score: score, matchedField: field})
	}

	sortScored(hits)
	return collect(hits)
}

// prefixMatch returns the first matched field and whether it was a prefix
// match. An empty field means no match.
func (c *candidate) prefixMatch(query string) (string, bool) {
	if strings.HasPrefix(c.normTitle, query) {
		return c.normTitle, true
	}
	for _, t := range c.normTags {
		if strings.HasPrefix(t, query) {
			return t, true
		}
	}
	if strings.Contains(c.normTitle, query) {
		return c.normTitle, false
	}
	for _, t := range c.normTags {
		if strings.Contains(t, query) {
			return t, false
		}
	}
	return "", false
}

// fullSearch scans title, description, tags, and industry, scoring a weighted
// combination of prefix and substring matches plus the popularity bonus.
func (e *Engine) fullSearch(scope, query string) []Result {
	if query == "" {
		return []Result{}
	}

	var hits []scored
	for i := range e.candidates {
		c := &e.candidates[i]
		if !c.inScope(scope) {
			continue
		}

		score, field := c.fullScore(query)
		if score == 0 {
			continue
		}
		hits = append(hits, scored{
			result:       c.result,
			score:        score + c.popularity,
			matchedField: field,
		})
	}

	sortScored(hits)
	return collect(hits)
}

// fullScore computes the match score across all fields and returns the first
// matched field for deterministic tie-breaking. Scoring is boolean: matching
// as a prefix anywhere earns prefixWeight, matching as a substring anywhere
// earns substringWeight, so a title prefix hit always outranks a mid-string
// hit regardless of how many fields repeat the term.
func (c *candidate) fullScore(query string) (float64, string) {
	fields := make([]string, 0, 3+len(c.normTags))
	fields = append(fields, c.normTitle, c.normDesc, c.normInd)
	fields = append(fields, c.normTags...)

	matched := ""
	isPrefix := false
	for _, f := range fields {
		if f == "" || !strings.Contains(f, query) {
			continue
		}
		if matched == "" {
			matched = f
		}
		if strings.HasPrefix(f, query) {
			isPrefix = true
		}
	}
	if matched == "" {
		return 0, ""
	}

	score := substringWeight
	if isPrefix {
		score += prefixWeight
	}
	return score, matched
}
