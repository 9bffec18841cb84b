package domain

import (
	"time"

	"github.com/google/uuid"
)

// Form types accepted by the lead intake endpoint.
const (
	FormTypeDownloadable    = "downloadable-report"
	FormTypeNonDownloadable = "non-downloadable-report"
)

// ValidFormType reports whether ft is one of the accepted form types.
func ValidFormType(ft string) bool {
	return ft == FormTypeDownloadable || ft == FormTypeNonDownloadable
}

// Lead is a persisted form submission. Immutable after creation.
type Lead struct {
	ID             uuid.UUID `db:"id"`
	FullName       string    `db:"full_name"`
	Email          string    `db:"email"`
	Phone          string    `db:"phone"`
	ReportSlug     string    `db:"report_slug"`
	ReportTitle    string    `db:"report_title"`
	ReportIndustry string    `db:"report_industry"`
	FormType       string    `db:"form_type"`
	Source         string    `db:"source"`
	PagePath       string    `db:"page_path"`
	PageURL        string    `db:"page_url"`
	Referrer       string    `db:"referrer"`
	Meta           string    `db:"meta"` // whitelisted keys, JSON-encoded
	CreatedAt      time.Time `db:"created_at"`
}

// SubmissionIndex mirrors every lead into a denormalized row used by the
// admin listing. Written in the same transaction as the Lead.
type SubmissionIndex struct {
	ID        uuid.UUID `db:"id"`
	LeadID    uuid.UUID `db:"lead_id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	FormType  string    `db:"form_type"`
	Subject   string    `db:"subject"` // report title, falls back to slug
	Industry  string    `db:"industry"`
	CreatedAt time.Time `db:"created_at"`
}
