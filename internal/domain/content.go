package domain

// ContentFormatDownloadable marks a report that is delivered as a gated file.
const ContentFormatDownloadable = "downloadable"

// Report is a research report entry from the static content index.
// Immutable at request time.
type Report struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Industry      string   `json:"industry"`
	Type          string   `json:"type"`
	ContentFormat string   `json:"contentFormat"`
	Link          string   `json:"link"`
	Date          string   `json:"date"`
	Taggings      []string `json:"taggings"`
}

// Downloadable reports whether the report can be delivered via a signed URL.
func (r *Report) Downloadable() bool {
	return r.ContentFormat == ContentFormatDownloadable && r.Link != ""
}

// NewsroomArticle is a newsroom entry from the static content index.
type NewsroomArticle struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Industry  string   `json:"industry"`
	Subheader string   `json:"subheader"`
	Tags      []string `json:"tags"`
	Date      string   `json:"date"`
	Summary   string   `json:"summary"`
}
