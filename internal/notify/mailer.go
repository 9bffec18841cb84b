package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meridian-advisory/insights-api/internal/domain"
)

const mailTimeout = 10 * time.Second

// Mailer sends the internal new-lead notification through an HTTP mail API.
// An unconfigured mailer is a no-op.
type Mailer struct {
	endpoint string
	apiKey   string
	from     string
	to       string
	client   *http.Client
}

// NewMailer creates a mailer. Empty endpoint or recipient disables it.
func NewMailer(endpoint, apiKey, from, to string) *Mailer {
	return &Mailer{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		to:       to,
		client:   &http.Client{Timeout: mailTimeout},
	}
}

// Enabled reports whether the mail API is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.endpoint != "" && m.to != ""
}

// mailRequest is the JSON body sent to the mail API.
type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendLeadNotification emails the internal team about a new submission.
// No-op when disabled.
func (m *Mailer) SendLeadNotification(ctx context.Context, lead *domain.Lead) error {
	if !m.Enabled() {
		return nil
	}

	body := mailRequest{
		From:    m.from,
		To:      m.to,
		Subject: fmt.Sprintf("New lead: %s (%s)", lead.FullName, lead.ReportSlug),
		Text: fmt.Sprintf(
			"Name: %s\nEmail: %s\nPhone: %s\nReport: %s\nForm type: %s\nPage: %s\nSource: %s\n",
			lead.FullName, lead.Email, lead.Phone, lead.ReportSlug,
			lead.FormType, lead.PagePath, lead.Source,
		),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail API returned %d", resp.StatusCode)
	}
	return nil
}
