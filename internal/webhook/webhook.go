// Package webhook posts resolved change proposals to an external HTTP endpoint.
package webhook

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
)

// Event names.
const (
	EventChangeAccepted = "change.accepted"
	EventChangeRejected = "change.rejected"
)

// Delivery headers.
const (
	HeaderEvent     = "X-PM-Event"
	HeaderDelivery  = "X-PM-Delivery"
	HeaderSignature = "X-PM-Signature"
)

// Sender delivers one payload.
type Sender interface {
	Send(ctx context.Context, payload Payload) error
}

// Payload is the JSON body posted to the webhook URL.
type Payload struct {
	ID     string                   `json:"id"`
	Event  string                   `json:"event"`
	SentAt string                   `json:"sent_at"`
	Data   orchestrator.ChangeEvent `json:"data"`
}

// NewPayload wraps a change event with a delivery id.
func NewPayload(event orchestrator.ChangeEvent, now time.Time) Payload {
	name := EventChangeRejected
	if event.Decision == "accepted" {
		name = EventChangeAccepted
	}
	return Payload{
		ID:     "whk_" + uuid.NewString(),
		Event:  name,
		SentAt: now.UTC().Format(time.RFC3339),
		Data:   event,
	}
}
