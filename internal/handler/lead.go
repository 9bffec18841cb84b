package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meridian-advisory/insights-api/internal/content"
	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/logger"
	"github.com/meridian-advisory/insights-api/internal/middleware"
	"github.com/meridian-advisory/insights-api/internal/notify"
	"github.com/meridian-advisory/insights-api/internal/storage"
)

// emailPattern accepts addr-spec shaped input; deliverability is not our
// problem here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// allowedMetaKeys is the whitelist applied to free-form submission metadata.
// Unknown keys are dropped silently, not rejected.
var allowedMetaKeys = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"gclid":        {},
	"variant":      {},
}

// leadRequest is the submission payload. The Website field is a honeypot:
// humans never see it, so any value means a bot filled the form.
type leadRequest struct {
	FullName       string            `json:"fullName"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	ReportSlug     string            `json:"reportSlug"`
	ReportTitle    string            `json:"reportTitle"`
	ReportIndustry string            `json:"reportIndustry"`
	FormType       string            `json:"formType"`
	Source         string            `json:"source"`
	PagePath       string            `json:"pagePath"`
	PageURL        string            `json:"pageUrl"`
	Referrer       string            `json:"referrer"`
	Meta           map[string]string `json:"meta"`
	Website        string            `json:"website"`
}

// validate checks required fields and enumerations. It returns a
// client-facing message, empty when valid.
func (r *leadRequest) validate() string {
	switch {
	case r.FullName == "":
		return "fullName is required"
	case r.Email == "":
		return "email is required"
	case !emailPattern.MatchString(r.Email):
		return "email is invalid"
	case r.ReportSlug == "":
		return "reportSlug is required"
	case !domain.ValidFormType(r.FormType):
		return "formType must be downloadable-report or non-downloadable-report"
	}
	return ""
}

// whitelistMeta keeps only the allowed metadata keys, JSON-encoded for
// storage. Empty input yields an empty string.
func whitelistMeta(meta map[string]string) string {
	if len(meta) == 0 {
		return ""
	}
	kept := make(map[string]string, len(meta))
	for k, v := range meta {
		if _, ok := allowedMetaKeys[k]; ok {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return ""
	}
	encoded, err := json.Marshal(kept)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// LeadHandler handles lead submissions.
type LeadHandler struct {
	index    *content.Index
	repo     *storage.Repository
	notifier *notify.Notifier
	metrics  *middleware.Metrics
	logger   logger.Logger
	tokenTTL time.Duration
}

// NewLeadHandler creates a LeadHandler.
func NewLeadHandler(
	index *content.Index,
	repo *storage.Repository,
	notifier *notify.Notifier,
	metrics *middleware.Metrics,
	log logger.Logger,
	tokenTTL time.Duration,
) *LeadHandler {
	return &LeadHandler{
		index:    index,
		repo:     repo,
		notifier: notifier,
		metrics:  metrics,
		logger:   log,
		tokenTTL: tokenTTL,
	}
}

// Submit handles POST /api/lead. A committed transaction always yields a
// success response; the async side effects never change the outcome.
func (h *LeadHandler) Submit(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	// Honeypot: report success, write nothing.
	if req.Website != "" {
		h.logger.Info("Honeypot triggered, discarding submission",
			logger.String("page_path", req.PagePath),
		)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	report, err := h.index.ReportBySlug(req.ReportSlug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown report"})
		return
	}

	now := time.Now().UTC()
	lead := buildLead(&req, report, now)
	mirror := buildMirror(lead, report, now)

	var token *domain.DownloadToken
	var rawToken string
	if req.FormType == domain.FormTypeDownloadable && report.Downloadable() {
		rawToken, err = domain.NewRawToken()
		if err != nil {
			h.logger.Error("Token generation failed", logger.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		token = &domain.DownloadToken{
			ID:        uuid.New(),
			TokenHash: domain.HashToken(rawToken),
			ObjectKey: domain.NormalizeObjectKey(report.Link),
			ExpiresAt: now.Add(h.tokenTTL),
			LeadID:    lead.ID,
			CreatedAt: now,
		}
	}

	if err := h.repo.CreateSubmission(c.Request.Context(), lead, mirror, token); err != nil {
		h.logger.Error("Lead submission failed",
			logger.String("report_slug", req.ReportSlug),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.metrics.LeadsCreatedTotal.Inc()
	h.notifier.LeadCreated(lead)

	if token != nil {
		h.metrics.TokensIssuedTotal.Inc()
		c.JSON(http.StatusOK, gin.H{"downloadUrl": "/api/download?token=" + rawToken})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func buildLead(req *leadRequest, report *domain.Report, now time.Time) *domain.Lead {
	title := req.ReportTitle
	if title == "" {
		title = report.Title
	}
	industry := req.ReportIndustry
	if industry == "" {
		industry = report.Industry
	}

	return &domain.Lead{
		ID:             uuid.New(),
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		ReportSlug:     req.ReportSlug,
		ReportTitle:    title,
		ReportIndustry: industry,
		FormType:       req.FormType,
		Source:         req.Source,
		PagePath:       req.PagePath,
		PageURL:        req.PageURL,
		Referrer:       req.Referrer,
		Meta:           whitelistMeta(req.Meta),
		CreatedAt:      now,
	}
}

func buildMirror(lead *domain.Lead, report *domain.Report, now time.Time) *domain.SubmissionIndex {
	subject := lead.ReportTitle
	if subject == "" {
		subject = report.Slug
	}

	return &domain.SubmissionIndex{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		FullName:  lead.FullName,
		Email:     lead.Email,
		FormType:  lead.FormType,
		Subject:   subject,
		Industry:  lead.ReportIndustry,
		CreatedAt: now,
	}
}
