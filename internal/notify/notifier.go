package notify

import (
	"context"
	"time"

	"github.com/meridian-advisory/insights-api/internal/domain"
	"github.com/meridian-advisory/insights-api/internal/logger"
)

// dispatchTimeout bounds one background dispatch, detached from the request
// context so a fast client response never cancels the side effects.
const dispatchTimeout = 15 * time.Second

// Notifier fans a committed lead out to the CRM queue and the notification
// mailer. Failures are logged and swallowed; the lead submission has already
// succeeded by the time Notifier runs.
type Notifier struct {
	queue  *CRMQueue
	mailer *Mailer
	log    logger.Logger
}

// NewNotifier creates a notifier. Either dependency may be disabled.
func NewNotifier(queue *CRMQueue, mailer *Mailer, log logger.Logger) *Notifier {
	return &Notifier{queue: queue, mailer: mailer, log: log}
}

// LeadCreated dispatches both side effects in the background and returns
// immediately.
func (n *Notifier) LeadCreated(lead *domain.Lead) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := n.queue.Enqueue(ctx, lead); err != nil {
			n.log.Warn("CRM sync enqueue failed",
				logger.String("lead_id", lead.ID.String()),
				logger.Error(err),
			)
		}

		if err := n.mailer.SendLeadNotification(ctx, lead); err != nil {
			n.log.Warn("Lead notification email failed",
				logger.String("lead_id", lead.ID.String()),
				logger.Error(err),
			)
		}
	}()
}
