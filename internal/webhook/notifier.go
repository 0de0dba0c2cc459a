package webhook

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/infrastructure/metrics"
	"github.com/janhq/pm-assistant/internal/worker"
)

// Submitter queues background jobs.
type Submitter interface {
	Submit(job worker.Job) error
}

// Notifier hands change events to a worker pool for delivery.
type Notifier struct {
	sender Sender
	jobs   Submitter
	now    func() time.Time
	log    zerolog.Logger
}

var _ orchestrator.ChangeNotifier = (*Notifier)(nil)

// NewNotifier builds an asynchronous notifier.
func NewNotifier(sender Sender, jobs Submitter, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		jobs:   jobs,
		now:    time.Now,
		log:    log.With().Str("component", "webhook-notifier").Logger(),
	}
}

// NotifyChange queues the event. A full queue drops it with a warning.
func (n *Notifier) NotifyChange(_ context.Context, event orchestrator.ChangeEvent) {
	payload := NewPayload(event, n.now())
	err := n.jobs.Submit(worker.Job{
		Name: payload.Event,
		Run: func(ctx context.Context) error {
			if err := n.sender.Send(ctx, payload); err != nil {
				metrics.RecordWebhookDelivery(payload.Event, "failed")
				return err
			}
			metrics.RecordWebhookDelivery(payload.Event, "delivered")
			return nil
		},
	})
	if err != nil {
		metrics.RecordWebhookDelivery(payload.Event, "dropped")
		n.log.Warn().Err(err).Str("session_id", event.SessionID).Str("event", payload.Event).Msg("change notification dropped")
	}
}
