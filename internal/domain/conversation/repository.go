package conversation

import "context"

// MessageStore is the append-only per-session transcript.
type MessageStore interface {
	Append(ctx context.Context, msg *Message) error
	List(ctx context.Context, sessionID string) ([]Message, error)
	Clear(ctx context.Context, sessionID string) error
}
