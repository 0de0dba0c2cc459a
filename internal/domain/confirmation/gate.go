// Package confirmation holds mutating proposals until the user accepts or rejects them.
// A session owns at most one record; a newer proposal replaces an unresolved one.
package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/janhq/pm-assistant/internal/domain/tool"
)

// State of a confirmation record.
type State string

const (
	StatePending  State = "pending"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
)

var (
	// ErrNothingPending means the session has no confirmation to resolve.
	ErrNothingPending = errors.New("no confirmation is pending for this session")
	// ErrTokenMismatch means the token does not name the session's current confirmation.
	ErrTokenMismatch = errors.New("confirmation token does not match the pending confirmation")
	// ErrAlreadyResolved means the confirmation was already accepted or rejected.
	ErrAlreadyResolved = errors.New("confirmation was already resolved")
)

// Record is a proposal awaiting a decision. Resolved records are kept until they expire so a
// repeated rejection can be answered the same way.
type Record struct {
	Token      string                `json:"token"`
	SessionID  string                `json:"session_id"`
	ToolName   string                `json:"tool_name"`
	ToolCallID string                `json:"tool_call_id"`
	Arguments  json.RawMessage       `json:"arguments"`
	Proposal   *tool.Result          `json:"proposal"`
	Summary    string                `json:"summary"`
	Type       tool.ConfirmationType `json:"confirmation_type"`
	State      State                 `json:"state"`
	Outcome    string                `json:"outcome,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	ExpiresAt  time.Time             `json:"expires_at"`
	ResolvedAt *time.Time            `json:"resolved_at,omitempty"`
}

// Expired reports whether the record is past its deadline at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Store keeps one record per session. Get returns nil and no error when nothing is stored.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	Put(ctx context.Context, rec *Record, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// Claim tells the caller what a resolution should do.
type Claim int

const (
	// ClaimFresh resolves a pending record.
	ClaimFresh Claim = iota
	// ClaimRepeatedRejection answers a rejection that was already recorded.
	ClaimRepeatedRejection
)

// Gate issues and resolves confirmation records. Callers serialize access per session.
type Gate struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewGate builds a gate whose records live for ttl.
func NewGate(store Store, ttl time.Duration) *Gate {
	return &Gate{store: store, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the gate clock.
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// Hold stores a new pending record for rec.SessionID, replacing whatever was there.
func (g *Gate) Hold(ctx context.Context, rec *Record) (*Record, error) {
	now := g.now()
	rec.Token = NewToken()
	rec.State = StatePending
	rec.Outcome = ""
	rec.ResolvedAt = nil
	rec.CreatedAt = now
	if g.ttl > 0 {
		rec.ExpiresAt = now.Add(g.ttl)
	}
	if err := g.store.Put(ctx, rec, g.ttl); err != nil {
		return nil, err
	}
	return rec, nil
}

// Pending returns the session's unresolved record, or nil.
func (g *Gate) Pending(ctx context.Context, sessionID string) (*Record, error) {
	rec, err := g.store.Get(ctx, sessionID)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.State != StatePending || rec.Expired(g.now()) {
		return nil, nil
	}
	return rec, nil
}

// Claim checks a decision against the session's record.
func (g *Gate) Claim(ctx context.Context, sessionID, token string, confirmed bool) (*Record, Claim, error) {
	rec, err := g.store.Get(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if rec == nil || rec.Expired(g.now()) {
		return nil, 0, ErrNothingPending
	}
	if strings.TrimSpace(token) == "" || token != rec.Token {
		return nil, 0, ErrTokenMismatch
	}
	switch rec.State {
	case StatePending:
		return rec, ClaimFresh, nil
	case StateRejected:
		if !confirmed {
			return rec, ClaimRepeatedRejection, nil
		}
	}
	return nil, 0, ErrAlreadyResolved
}

// Settle records the decision and its user-facing outcome.
func (g *Gate) Settle(ctx context.Context, rec *Record, state State, outcome string) error {
	now := g.now()
	rec.State = state
	rec.Outcome = outcome
	rec.ResolvedAt = &now
	ttl := g.ttl
	if !rec.ExpiresAt.IsZero() {
		ttl = rec.ExpiresAt.Sub(now)
		if ttl <= 0 {
			ttl = time.Second
		}
	}
	return g.store.Put(ctx, rec, ttl)
}

// Discard drops whatever record the session holds.
func (g *Gate) Discard(ctx context.Context, sessionID string) error {
	return g.store.Delete(ctx, sessionID)
}

// NewToken returns an opaque confirmation handle.
func NewToken() string {
	return "cfm_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
