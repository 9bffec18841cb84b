package content_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/insights-api/internal/content"
	"github.com/meridian-advisory/insights-api/internal/domain"
)

const reportsFixture = `[
	{
		"slug": "global-ai-outlook",
		"title": "Global AI Outlook",
		"description": "How AI adoption reshapes the enterprise",
		"industry": "Technology",
		"type": "market-outlook",
		"contentFormat": "downloadable",
		"link": "/reports/global-ai-outlook.pdf",
		"date": "2026-05-01",
		"taggings": ["AI", "Cloud"]
	},
	{
		"slug": "energy-transition-brief",
		"title": "Energy Transition Brief",
		"description": "Grid investment trends",
		"industry": "Energy",
		"type": "brief",
		"contentFormat": "web",
		"link": "",
		"date": "2026-03-15",
		"taggings": ["Energy"]
	}
]`

const newsroomFixture = `[
	{
		"slug": "firm-expands-berlin",
		"title": "Firm Expands to Berlin",
		"industry": "Professional Services",
		"subheader": "New office opening",
		"tags": ["Growth"],
		"date": "2026-06-10",
		"summary": "We are opening a new office in Berlin."
	}
]`

func writeIndexDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reports.json"), []byte(reportsFixture), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "newsroom.json"), []byte(newsroomFixture), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	idx, err := content.Load(writeIndexDir(t))
	require.NoError(t, err)

	require.Len(t, idx.Reports(), 2)
	require.Len(t, idx.Articles(), 1)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := content.Load(t.TempDir())
	require.Error(t, err)
}

func TestLoad_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reports.json"), []byte("{not json"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "newsroom.json"), []byte("[]"), 0o600))

	_, err := content.Load(dir)
	require.Error(t, err)
}

func TestReportBySlug(t *testing.T) {
	idx, err := content.Load(writeIndexDir(t))
	require.NoError(t, err)

	report, err := idx.ReportBySlug("global-ai-outlook")
	require.NoError(t, err)
	require.Equal(t, "Global AI Outlook", report.Title)
	require.True(t, report.Downloadable())

	web, err := idx.ReportBySlug("energy-transition-brief")
	require.NoError(t, err)
	require.False(t, web.Downloadable())

	_, err = idx.ReportBySlug("nope")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}
