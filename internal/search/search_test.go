package search_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/insights-api/internal/content"
	"github.com/meridian-advisory/insights-api/internal/domain"
)

// buildIndex writes the given entries as content index files and loads them.
func buildIndex(t *testing.T, reports []domain.Report, articles []domain.NewsroomArticle) *content.Index {
	t.Helper()

	if reports == nil {
		reports = []domain.Report{}
	}
	if articles == nil {
		articles = []domain.NewsroomArticle{}
	}

	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "reports.json"), reports)
	writeJSON(t, filepath.Join(dir, "newsroom.json"), articles)

	idx, err := content.Load(dir)
	require.NoError(t, err)
	return idx
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func report(slug, title, desc, industry, date string, tags ...string) domain.Report {
	return domain.Report{
		Slug:          slug,
		Title:         title,
		Description:   desc,
		Industry:      industry,
		Type:          "report",
		ContentFormat: "web",
		Date:          date,
		Taggings:      tags,
	}
}

func article(slug, title, summary, industry, date string, tags ...string) domain.NewsroomArticle {
	return domain.NewsroomArticle{
		Slug:     slug,
		Title:    title,
		Summary:  summary,
		Industry: industry,
		Date:     date,
		Tags:     tags,
	}
}
