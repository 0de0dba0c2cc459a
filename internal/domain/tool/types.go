// Package tool defines the contract between the orchestrator and the domain operations the
// language model may invoke. Each tool declares a concrete argument type; the registry derives
// the advertised JSON schema from it and validates calls against it.
package tool

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/janhq/pm-assistant/internal/domain/project"
)

// Status is the outcome of one invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ConfirmationType tags a proposal that must be accepted before it is applied.
type ConfirmationType string

const (
	ConfirmAssignTask         ConfirmationType = "assign_task"
	ConfirmReassignTask       ConfirmationType = "reassign_task"
	ConfirmUpdateAvailability ConfirmationType = "update_availability"
	ConfirmGenerateSprints    ConfirmationType = "generate_sprints"
	ConfirmReplanSprints      ConfirmationType = "replan_sprints"
)

// Error codes carried by error results.
const (
	CodeInvalidArguments = "invalid_arguments"
	CodeNotFound         = "not_found"
	CodeNoActiveProject  = "no_active_project"
	CodeConflict         = "conflict"
	CodeInternal         = "internal_error"
	CodeTimeout          = "timeout"
)

// Context is everything a tool may touch. Tools hold no other state.
type Context struct {
	Repo      project.Repository
	SessionID string
	Now       time.Time
}

// Result is the structured outcome of an invocation. Data holds the tool payload as JSON.
type Result struct {
	Status               Status           `json:"status"`
	Message              string           `json:"message,omitempty"`
	Data                 json.RawMessage  `json:"data,omitempty"`
	RequiresConfirmation bool             `json:"requires_confirmation"`
	ConfirmationType     ConfirmationType `json:"confirmation_type,omitempty"`
	ErrorCode            string           `json:"error_code,omitempty"`
}

// IsError reports whether the invocation failed.
func (r *Result) IsError() bool {
	return r == nil || r.Status == StatusError
}

// Structured reports whether Data holds a JSON object or array.
func (r *Result) Structured() bool {
	if r == nil || len(r.Data) == 0 {
		return false
	}
	for _, b := range r.Data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return json.Valid(r.Data)
		default:
			return false
		}
	}
	return false
}

// Content is the JSON the result is stored as in a tool message.
func (r *Result) Content() string {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","message":%q}`, err.Error())
	}
	return string(raw)
}

// Success wraps payload into a successful result.
func Success(message string, payload any) (*Result, error) {
	r := &Result{Status: StatusSuccess, Message: message}
	if payload == nil {
		return r, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode tool payload: %w", err)
	}
	r.Data = raw
	return r, nil
}

// Failure builds an error result.
func Failure(code, format string, args ...any) *Result {
	return &Result{Status: StatusError, ErrorCode: code, Message: fmt.Sprintf(format, args...)}
}

// DecodeData unmarshals the payload of r into T.
func DecodeData[T any](r *Result) (T, error) {
	var out T
	if r == nil || len(r.Data) == 0 {
		return out, fmt.Errorf("result carries no data")
	}
	if err := json.Unmarshal(r.Data, &out); err != nil {
		return out, fmt.Errorf("decode tool payload: %w", err)
	}
	return out, nil
}

// ParseResult reads a Result back from tool message content.
func ParseResult(content string) (*Result, bool) {
	var r Result
	if err := json.Unmarshal([]byte(content), &r); err != nil || r.Status == "" {
		return nil, false
	}
	return &r, true
}
