// Package notify dispatches the best-effort side effects of a lead
// submission: a CRM sync job on the Redis queue and an internal notification
// email. Neither blocks nor fails the request that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meridian-advisory/insights-api/internal/domain"
)

// CRMJob is the payload pushed onto the sync queue. Retries, if any, belong
// to the downstream consumer.
type CRMJob struct {
	LeadID     string    `json:"lead_id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	ReportSlug string    `json:"report_slug"`
	FormType   string    `json:"form_type"`
	Source     string    `json:"source,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// CRMQueue enqueues lead sync jobs. A nil client disables the queue.
type CRMQueue struct {
	client   *redis.Client
	queueKey string
}

// NewCRMQueue creates a queue backed by the given Redis client.
func NewCRMQueue(client *redis.Client, queueKey string) *CRMQueue {
	return &CRMQueue{client: client, queueKey: queueKey}
}

// Enabled reports whether a backing queue is configured.
func (q *CRMQueue) Enabled() bool {
	return q != nil && q.client != nil
}

// Enqueue pushes one sync job. No-op when disabled.
func (q *CRMQueue) Enqueue(ctx context.Context, lead *domain.Lead) error {
	if !q.Enabled() {
		return nil
	}

	job := CRMJob{
		LeadID:     lead.ID.String(),
		Email:      lead.Email,
		FullName:   lead.FullName,
		ReportSlug: lead.ReportSlug,
		FormType:   lead.FormType,
		Source:     lead.Source,
		EnqueuedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal crm job: %w", err)
	}

	if err := q.client.LPush(ctx, q.queueKey, payload).Err(); err != nil {
		return fmt.Errorf("enqueue crm job: %w", err)
	}
	return nil
}
