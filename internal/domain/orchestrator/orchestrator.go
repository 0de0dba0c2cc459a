// Package orchestrator runs conversational turns. A turn stores the user message, asks the model
// for a reply, dispatches at most one tool call and then formats the result locally, narrates it
// with a second model call, or holds it until the user confirms it.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/pm-assistant/internal/domain/confirmation"
	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/llm"
	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

const (
	apologyReply = "Sorry, I couldn't reach the language model just now. Please try again in a moment."
	emptyReply   = "I'm not sure how to help with that. Could you rephrase it?"
)

// Protocol error codes surfaced to API clients.
const (
	CodeEmptyMessage     = "empty_message"
	CodeSessionRequired  = "session_required"
	CodeNothingPending   = "no_pending_confirmation"
	CodeTokenMismatch    = "token_mismatch"
	CodeAlreadyResolved  = "confirmation_already_resolved"
	CodeTurnTimeout      = "turn_timeout"
	CodeSessionBusy      = "session_busy"
	CodePersistenceError = "persistence_error"
)

var tracer = otel.Tracer("pm-assistant/orchestrator")

// Completer produces the next assistant message for a transcript.
type Completer interface {
	Complete(ctx context.Context, transcript []llm.ChatMessage, tools []llm.ToolDefinition, useTools bool) (*llm.ChatMessage, error)
}

// Locker serialises turns and resolutions of one session.
type Locker interface {
	Lock(ctx context.Context, sessionID string) (unlock func(), err error)
}

// Recorder receives orchestration metrics.
type Recorder interface {
	ObserveTurn(kind, outcome string, elapsed time.Duration)
	ObserveToolCall(name, status string, elapsed time.Duration)
	ObserveGateway(useTools bool, outcome string, elapsed time.Duration)
	ObserveConfirmation(confirmationType, decision string)
}

// NopRecorder discards metrics.
type NopRecorder struct{}

func (NopRecorder) ObserveTurn(string, string, time.Duration)     {}
func (NopRecorder) ObserveToolCall(string, string, time.Duration) {}
func (NopRecorder) ObserveGateway(bool, string, time.Duration)    {}
func (NopRecorder) ObserveConfirmation(string, string)            {}

// ChangeEvent describes a proposal the user accepted or rejected.
type ChangeEvent struct {
	SessionID        string                `json:"session_id"`
	ToolName         string                `json:"tool_name"`
	ConfirmationType tool.ConfirmationType `json:"confirmation_type"`
	Decision         string                `json:"decision"`
	Applied          bool                  `json:"applied"`
	Arguments        json.RawMessage       `json:"tool_args"`
	Result           json.RawMessage       `json:"tool_result,omitempty"`
	OccurredAt       time.Time             `json:"occurred_at"`
}

// ChangeNotifier receives resolved proposals. Implementations must not block the caller.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, event ChangeEvent)
}

// Options tune a Service.
type Options struct {
	TurnTimeout time.Duration
	Now         func() time.Time
	Notifier    ChangeNotifier
}

// ConfirmationData describes a proposal waiting for the user's decision.
type ConfirmationData struct {
	Token            string                `json:"token"`
	ToolName         string                `json:"tool_name"`
	ConfirmationType tool.ConfirmationType `json:"confirmation_type"`
	Arguments        json.RawMessage       `json:"tool_args"`
	Proposal         json.RawMessage       `json:"tool_result,omitempty"`
	ExpiresAt        *time.Time            `json:"expires_at,omitempty"`
}

// Reply is the outcome of a turn or a resolution.
type Reply struct {
	SessionID            string            `json:"session_id"`
	Response             string            `json:"response"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Confirmation         *ConfirmationData `json:"confirmation_data"`
	ToolName             string            `json:"tool_name,omitempty"`
	IsError              bool              `json:"is_error,omitempty"`
}

// Chat is what the transport layers need from the orchestrator.
type Chat interface {
	Send(ctx context.Context, sessionID, text string) (*Reply, error)
	Resolve(ctx context.Context, sessionID, token string, confirmed bool) (*Reply, error)
	History(ctx context.Context, sessionID string) ([]conversation.Message, error)
	Pending(ctx context.Context, sessionID string) (*ConfirmationData, error)
	Clear(ctx context.Context, sessionID string) error
	Tools() []tool.Descriptor
}

var _ Chat = (*Service)(nil)

// Service coordinates the model, the tool registry and the confirmation gate.
type Service struct {
	gateway  Completer
	registry *tool.Registry
	gate     *confirmation.Gate
	messages conversation.MessageStore
	repo     project.Repository
	locker   Locker
	metrics  Recorder
	log      zerolog.Logger
	opts     Options
}

// NewService wires dependencies.
func NewService(
	gateway Completer,
	registry *tool.Registry,
	gate *confirmation.Gate,
	messages conversation.MessageStore,
	repo project.Repository,
	locker Locker,
	metrics Recorder,
	log zerolog.Logger,
	opts Options,
) *Service {
	if metrics == nil {
		metrics = NopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		gateway:  gateway,
		registry: registry,
		gate:     gate,
		messages: messages,
		repo:     repo,
		locker:   locker,
		metrics:  metrics,
		log:      log.With().Str("component", "orchestrator").Logger(),
		opts:     opts,
	}
}

// Send handles one user message. An empty sessionID starts a new session.
func (s *Service) Send(ctx context.Context, sessionID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"message text is required", nil, "orchestrator-send-empty-001").WithCode(CodeEmptyMessage)
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = conversation.NewSessionID()
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "orchestrator.send", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	reply, err := s.serialized(ctx, sessionID, func(ctx context.Context) (*Reply, error) {
		return s.send(ctx, sessionID, text)
	})
	s.finish(span, "message", start, reply, err)
	return reply, err
}

// Resolve applies or discards the session's pending proposal.
func (s *Service) Resolve(ctx context.Context, sessionID, token string, confirmed bool) (*Reply, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"session_id is required", nil, "orchestrator-resolve-session-001").WithCode(CodeSessionRequired)
	}

	start := time.Now()
	ctx, span := tracer.Start(ctx, "orchestrator.resolve", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Bool("confirmation.accepted", confirmed),
	))
	defer span.End()

	reply, err := s.serialized(ctx, sessionID, func(ctx context.Context) (*Reply, error) {
		return s.resolve(ctx, sessionID, token, confirmed)
	})
	s.finish(span, "confirmation", start, reply, err)
	return reply, err
}

// History returns the stored transcript of a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	msgs, err := s.messages.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Pending returns the session's unresolved proposal, or nil.
func (s *Service) Pending(ctx context.Context, sessionID string) (*ConfirmationData, error) {
	rec, err := s.gate.Pending(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load confirmation: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return confirmationData(rec), nil
}

// Tools lists the registered tools.
func (s *Service) Tools() []tool.Descriptor {
	return s.registry.Descriptors()
}

// Clear drops the transcript and any pending proposal of a session.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	_, err := s.serialized(ctx, sessionID, func(ctx context.Context) (*Reply, error) {
		if err := s.messages.Clear(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("clear messages: %w", err)
		}
		if err := s.gate.Discard(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("discard confirmation: %w", err)
		}
		return nil, nil
	})
	return err
}

func (s *Service) serialized(ctx context.Context, sessionID string, fn func(context.Context) (*Reply, error)) (*Reply, error) {
	unlock, err := s.locker.Lock(ctx, sessionID)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			"session is busy with another request", err, "orchestrator-lock-001").WithCode(CodeSessionBusy)
	}
	defer unlock()

	if s.opts.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.TurnTimeout)
		defer cancel()
	}
	reply, err := fn(ctx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout,
			"turn timed out", err, "orchestrator-timeout-001").WithCode(CodeTurnTimeout)
	}
	return reply, err
}

func (s *Service) send(ctx context.Context, sessionID, text string) (*Reply, error) {
	if err := s.append(ctx, conversation.NewMessage(sessionID, conversation.RoleUser, text)); err != nil {
		return nil, err
	}
	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.complete(ctx, history, true)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("complete: %w", ctxErr)
		}
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("language model call failed")
		return s.respond(ctx, sessionID, "", apologyReply, true)
	}

	call, ok := s.toolCall(sessionID, answer)
	if !ok {
		content := strings.TrimSpace(answer.Content)
		if content == "" {
			content = emptyReply
		}
		return s.respond(ctx, sessionID, "", content, false)
	}
	return s.dispatch(ctx, sessionID, call)
}

// toolCall extracts the first tool call of an answer, structured or written as text.
func (s *Service) toolCall(sessionID string, answer *llm.ChatMessage) (conversation.ToolCallRequest, bool) {
	if len(answer.ToolCalls) > 0 {
		if len(answer.ToolCalls) > 1 {
			s.log.Warn().Str("session_id", sessionID).Int("tool_calls", len(answer.ToolCalls)).Msg("model requested several tools, only the first runs")
		}
		first := answer.ToolCalls[0]
		args, err := objectArguments(first.Function.Arguments)
		if err != nil || strings.TrimSpace(first.Function.Name) == "" {
			s.log.Warn().Err(err).Str("session_id", sessionID).Str("tool", first.Function.Name).Msg("malformed tool call treated as text")
			return conversation.ToolCallRequest{}, false
		}
		id := first.ID
		if id == "" {
			id = conversation.NewToolCallID()
		}
		return conversation.ToolCallRequest{ID: id, Name: strings.TrimSpace(first.Function.Name), Arguments: args}, true
	}

	if !tool.LooksLikeTextCall(answer.Content) {
		return conversation.ToolCallRequest{}, false
	}
	calls, err := tool.DecodeTextCalls(answer.Content)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("text tool call could not be decoded, treated as text")
		return conversation.ToolCallRequest{}, false
	}
	if len(calls) > 1 {
		s.log.Warn().Str("session_id", sessionID).Int("tool_calls", len(calls)).Msg("model requested several tools, only the first runs")
	}
	return conversation.ToolCallRequest{
		ID:        conversation.NewToolCallID(),
		Name:      calls[0].Name,
		Arguments: calls[0].Arguments,
	}, true
}

func (s *Service) dispatch(ctx context.Context, sessionID string, call conversation.ToolCallRequest) (*Reply, error) {
	if _, ok := s.registry.Lookup(call.Name); !ok {
		s.log.Warn().Str("session_id", sessionID).Str("tool", call.Name).Msg("model requested an unknown tool")
		return s.respond(ctx, sessionID, call.Name, UnknownTool(call.Name), true)
	}

	result, err := s.run(ctx, sessionID, call, false, nil)
	if err != nil {
		return nil, err
	}

	switch {
	case result.IsError():
		return s.respond(ctx, sessionID, call.Name, FormatError(call.Name, result), true)
	case result.RequiresConfirmation:
		return s.hold(ctx, sessionID, call, result)
	case result.Structured():
		return s.respond(ctx, sessionID, call.Name, Format(call.Name, result), false)
	}

	text, ok := s.narrate(ctx, sessionID)
	if !ok {
		return s.respond(ctx, sessionID, call.Name, apologyReply, true)
	}
	return s.respond(ctx, sessionID, call.Name, text, false)
}

// run stores the tool-call request, invokes or applies the tool and stores its result.
func (s *Service) run(ctx context.Context, sessionID string, call conversation.ToolCallRequest, apply bool, proposal *tool.Result) (*tool.Result, error) {
	request := conversation.NewMessage(sessionID, conversation.RoleAssistant, "")
	request.ToolCalls = []conversation.ToolCallRequest{call}
	if err := s.append(ctx, request); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "tool.invoke", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
		attribute.Bool("tool.apply", apply),
	))
	tc := tool.Context{Repo: s.repo, SessionID: sessionID, Now: s.opts.Now()}
	start := time.Now()
	var result *tool.Result
	var err error
	if apply {
		result, err = s.registry.Apply(ctx, tc, call.Name, call.Arguments, proposal)
	} else {
		result, err = s.registry.Invoke(ctx, tc, call.Name, call.Arguments)
	}
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, fmt.Errorf("invoke %s: %w", call.Name, err)
	}
	span.SetAttributes(attribute.String("tool.status", string(result.Status)))
	if result.IsError() {
		span.SetStatus(codes.Error, result.ErrorCode)
	}
	span.End()

	s.metrics.ObserveToolCall(call.Name, string(result.Status), elapsed)
	s.log.Debug().
		Str("session_id", sessionID).
		Str("tool", call.Name).
		Bool("apply", apply).
		Str("status", string(result.Status)).
		Str("error_code", result.ErrorCode).
		Dur("elapsed", elapsed).
		Msg("tool finished")

	msg := conversation.NewMessage(sessionID, conversation.RoleTool, result.Content())
	msg.ToolCallID = call.ID
	msg.ToolName = call.Name
	msg.IsError = result.IsError()
	if err := s.append(ctx, msg); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) hold(ctx context.Context, sessionID string, call conversation.ToolCallRequest, result *tool.Result) (*Reply, error) {
	rec, err := s.gate.Hold(ctx, &confirmation.Record{
		SessionID:  sessionID,
		ToolName:   call.Name,
		ToolCallID: call.ID,
		Arguments:  call.Arguments,
		Proposal:   result,
		Summary:    confirmation.Summarize(result),
		Type:       result.ConfirmationType,
	})
	if err != nil {
		return nil, persistenceError(ctx, "store confirmation", err)
	}
	s.metrics.ObserveConfirmation(string(rec.Type), "proposed")

	msg := conversation.NewMessage(sessionID, conversation.RoleAssistant, rec.Summary)
	msg.RequiresConfirmation = true
	if err := s.append(ctx, msg); err != nil {
		return nil, err
	}
	return &Reply{
		SessionID:            sessionID,
		Response:             rec.Summary,
		RequiresConfirmation: true,
		Confirmation:         confirmationData(rec),
		ToolName:             call.Name,
	}, nil
}

func (s *Service) resolve(ctx context.Context, sessionID, token string, confirmed bool) (*Reply, error) {
	rec, claim, err := s.gate.Claim(ctx, sessionID, token, confirmed)
	if err != nil {
		return nil, protocolError(ctx, err)
	}
	if claim == confirmation.ClaimRepeatedRejection {
		return s.respond(ctx, sessionID, rec.ToolName, rec.Outcome, false)
	}

	if !confirmed {
		outcome := confirmation.Rejection(rec)
		if err := s.gate.Settle(ctx, rec, confirmation.StateRejected, outcome); err != nil {
			return nil, persistenceError(ctx, "settle confirmation", err)
		}
		s.metrics.ObserveConfirmation(string(rec.Type), "rejected")
		s.notify(ctx, rec, "rejected", nil)
		return s.respond(ctx, sessionID, rec.ToolName, outcome, false)
	}
	return s.accept(ctx, sessionID, rec)
}

// accept settles the record before applying, so a failure after the apply commits can never
// lead to a second apply of the same proposal.
func (s *Service) accept(ctx context.Context, sessionID string, rec *confirmation.Record) (*Reply, error) {
	if err := s.gate.Settle(ctx, rec, confirmation.StateAccepted, ""); err != nil {
		return nil, persistenceError(ctx, "settle confirmation", err)
	}
	s.metrics.ObserveConfirmation(string(rec.Type), "accepted")

	call := conversation.ToolCallRequest{
		ID:        conversation.NewToolCallID(),
		Name:      rec.ToolName,
		Arguments: rec.Arguments,
	}
	result, err := s.run(ctx, sessionID, call, true, rec.Proposal)
	if err != nil {
		return nil, err
	}

	fallback := Format(rec.ToolName, result)
	if err := s.gate.Settle(ctx, rec, confirmation.StateAccepted, fallback); err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("record accepted outcome")
	}
	s.notify(ctx, rec, "accepted", result)

	if result.IsError() {
		return s.respond(ctx, sessionID, rec.ToolName, FormatError(rec.ToolName, result), true)
	}
	text, ok := s.narrate(ctx, sessionID)
	if !ok {
		text = fallback
	}
	return s.respond(ctx, sessionID, rec.ToolName, text, false)
}

func (s *Service) notify(ctx context.Context, rec *confirmation.Record, decision string, result *tool.Result) {
	if s.opts.Notifier == nil {
		return
	}
	event := ChangeEvent{
		SessionID:        rec.SessionID,
		ToolName:         rec.ToolName,
		ConfirmationType: rec.Type,
		Decision:         decision,
		Arguments:        rec.Arguments,
		OccurredAt:       s.opts.Now(),
	}
	if result != nil {
		event.Applied = !result.IsError()
		event.Result = result.Data
	}
	s.opts.Notifier.NotifyChange(ctx, event)
}

// narrate asks the model, without tools, to describe the latest tool result.
func (s *Service) narrate(ctx context.Context, sessionID string) (string, bool) {
	history, err := s.history(ctx, sessionID)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("load transcript for narration")
		return "", false
	}
	answer, err := s.complete(ctx, history, false)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sessionID).Msg("narration call failed")
		return "", false
	}
	text := strings.TrimSpace(answer.Content)
	return text, text != ""
}

func (s *Service) complete(ctx context.Context, history []conversation.Message, useTools bool) (*llm.ChatMessage, error) {
	var catalog []llm.ToolDefinition
	if useTools {
		catalog = s.registry.Catalog()
	}
	start := time.Now()
	answer, err := s.gateway.Complete(ctx, conversation.ToLLM(history), catalog, useTools)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else if answer == nil {
		outcome, err = "error", llm.ErrEmptyCompletion
	}
	s.metrics.ObserveGateway(useTools, outcome, time.Since(start))
	return answer, err
}

func (s *Service) respond(ctx context.Context, sessionID, toolName, content string, isError bool) (*Reply, error) {
	msg := conversation.NewMessage(sessionID, conversation.RoleAssistant, content)
	msg.IsError = isError
	if err := s.append(ctx, msg); err != nil {
		return nil, err
	}
	return &Reply{SessionID: sessionID, Response: content, ToolName: toolName, IsError: isError}, nil
}

func (s *Service) append(ctx context.Context, msg *conversation.Message) error {
	if err := s.messages.Append(ctx, msg); err != nil {
		return persistenceError(ctx, "store message", err)
	}
	return nil
}

func (s *Service) history(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	msgs, err := s.messages.List(ctx, sessionID)
	if err != nil {
		return nil, persistenceError(ctx, "list messages", err)
	}
	return msgs, nil
}

func (s *Service) finish(span trace.Span, kind string, start time.Time, reply *Reply, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case reply == nil:
	case reply.RequiresConfirmation:
		outcome = "confirmation"
	case reply.IsError:
		outcome = "tool_error"
	}
	if reply != nil && reply.ToolName != "" {
		span.SetAttributes(attribute.String("tool.name", reply.ToolName))
	}
	s.metrics.ObserveTurn(kind, outcome, time.Since(start))
}

func confirmationData(rec *confirmation.Record) *ConfirmationData {
	data := &ConfirmationData{
		Token:            rec.Token,
		ToolName:         rec.ToolName,
		ConfirmationType: rec.Type,
		Arguments:        rec.Arguments,
	}
	if rec.Proposal != nil {
		data.Proposal = rec.Proposal.Data
	}
	if !rec.ExpiresAt.IsZero() {
		expires := rec.ExpiresAt
		data.ExpiresAt = &expires
	}
	return data
}

// objectArguments normalises structured tool-call arguments to a JSON object.
func objectArguments(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid([]byte(raw)) || raw[0] != '{' {
		return nil, errors.New("tool call arguments are not a JSON object")
	}
	return json.RawMessage(raw), nil
}

// persistenceError keeps typed repository errors and tags everything else.
func persistenceError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pErr *platformerrors.PlatformError
	if errors.As(err, &pErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
		op+" failed", err, "orchestrator-persist-001").WithCode(CodePersistenceError)
}

func protocolError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, confirmation.ErrNothingPending):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			err.Error(), err, "orchestrator-resolve-pending-001").WithCode(CodeNothingPending)
	case errors.Is(err, confirmation.ErrTokenMismatch):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			err.Error(), err, "orchestrator-resolve-token-001").WithCode(CodeTokenMismatch)
	case errors.Is(err, confirmation.ErrAlreadyResolved):
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
			err.Error(), err, "orchestrator-resolve-resolved-001").WithCode(CodeAlreadyResolved)
	}
	return persistenceError(ctx, "load confirmation", err)
}
