package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/notify"
)

func sampleLead() *domain.Lead {
	return &domain.Lead{
		ID:         uuid.New(),
		FullName:   "Ada Lovelace",
		Email:      "ada@example.com",
		ReportSlug: "global-ai-outlook",
		FormType:   domain.FormTypeDownloadable,
		Source:     "report-page",
	}
}

func TestEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queue := notify.NewCRMQueue(client, "crm:leads")
	require.True(t, queue.Enabled())

	lead := sampleLead()
	require.NoError(t, queue.Enqueue(context.Background(), lead))

	payload, err := mr.Lpop("crm:leads")
	require.NoError(t, err)

	var job notify.CRMJob
	require.NoError(t, json.Unmarshal([]byte(payload), &job))
	assert.Equal(t, lead.ID.String(), job.LeadID)
	assert.Equal(t, lead.Email, job.Email)
	assert.Equal(t, lead.ReportSlug, job.ReportSlug)
	assert.Equal(t, lead.FormType, job.FormType)
	assert.False(t, job.EnqueuedAt.IsZero())
}

func TestEnqueue_Disabled(t *testing.T) {
	queue := notify.NewCRMQueue(nil, "crm:leads")

	assert.False(t, queue.Enabled())
	assert.NoError(t, queue.Enqueue(context.Background(), sampleLead()))
}

func TestEnqueue_BackendError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queue := notify.NewCRMQueue(client, "crm:leads")
	mr.Close()

	assert.Error(t, queue.Enqueue(context.Background(), sampleLead()))
}
