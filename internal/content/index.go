// Package content loads the static JSON content indexes produced by the site
// build. The indexes are read once at startup and treated as immutable, so
// they are safe for unlimited concurrent readers.
package content

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meridian-advisory/insights-api/internal/domain"
)

// Index file names within the content directory.
const (
	reportsFile  = "reports.json"
	newsroomFile = "newsroom.json"
)

// Index holds the loaded content snapshots.
type Index struct {
	reports  []domain.Report
	articles []domain.NewsroomArticle
	bySlug   map[string]*domain.Report
}

// Load reads both index files from dir. A missing or corrupt file is a
// startup failure.
func Load(dir string) (*Index, error) {
	var reports []domain.Report
	if err := readJSON(filepath.Join(dir, reportsFile), &reports); err != nil {
		return nil, fmt.Errorf("load reports index: %w", err)
	}

	var articles []domain.NewsroomArticle
	if err := readJSON(filepath.Join(dir, newsroomFile), &articles); err != nil {
		return nil, fmt.Errorf("load newsroom index: %w", err)
	}

	idx := &Index{
		reports:  reports,
		articles: articles,
		bySlug:   make(map[string]*domain.Report, len(reports)),
	}
	for i := range idx.reports {
		idx.bySlug[idx.reports[i].Slug] = &idx.reports[i]
	}
	return idx, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Reports returns all reports. The slice must not be mutated.
func (i *Index) Reports() []domain.Report {
	return i.reports
}

// Articles returns all newsroom articles. The slice must not be mutated.
func (i *Index) Articles() []domain.NewsroomArticle {
	return i.articles
}

// ReportBySlug returns the report with the given slug.
func (i *Index) ReportBySlug(slug string) (*domain.Report, error) {
	r, ok := i.bySlug[slug]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}
