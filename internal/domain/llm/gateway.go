package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/pm-assistant/internal/domain/retry"
)

// ErrProvider marks failures returned by the language-model provider.
var ErrProvider = errors.New("language model provider error")

// ErrEmptyCompletion is returned when the provider answers without any choice.
var ErrEmptyCompletion = errors.New("language model returned no choices")

// DefaultSystemPrompt scopes the assistant to project-management work.
const DefaultSystemPrompt = `You are an experienced project manager assistant.
You help with projects, tasks, employees, workloads, task assignment, sprint planning,
sprint health and delivery risk. Politely decline requests outside project management.
Use the provided tools to read or change project data instead of guessing.
Call at most one tool per reply. Never invent identifiers.`

// GatewayOptions configure how transcripts are sent to the provider.
type GatewayOptions struct {
	Model        string
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	SystemPrompt string
	MaxHistory   int
	Retry        retry.Policy
}

// Gateway turns a transcript into a single assistant message.
type Gateway struct {
	provider Provider
	opts     GatewayOptions
}

// NewGateway wraps a provider with model settings.
func NewGateway(provider Provider, opts GatewayOptions) *Gateway {
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	return &Gateway{provider: provider, opts: opts}
}

// Complete sends the transcript to the provider. Tools are advertised only when useTools is set.
func (g *Gateway) Complete(ctx context.Context, transcript []ChatMessage, tools []ToolDefinition, useTools bool) (*ChatMessage, error) {
	ctx, span := otel.Tracer("pm-assistant/llm").Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", g.opts.Model),
		attribute.Bool("llm.use_tools", useTools),
		attribute.Int("llm.messages", len(transcript)),
	)

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	history := TrimHistory(transcript, g.opts.MaxHistory)
	messages := make([]ChatMessage, 0, len(history)+1)
	messages = append(messages, ChatMessage{Role: RoleSystem, Content: g.opts.SystemPrompt})
	messages = append(messages, history...)

	req := ChatCompletionRequest{
		Model:    g.opts.Model,
		Messages: messages,
	}
	if g.opts.Temperature > 0 {
		temperature := g.opts.Temperature
		req.Temperature = &temperature
	}
	if g.opts.MaxTokens > 0 {
		maxTokens := g.opts.MaxTokens
		req.MaxTokens = &maxTokens
	}
	if useTools && len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}

	resp, err := retry.Do(ctx, g.opts.Retry, IsTransient, func(ctx context.Context, attempt int) (*ChatCompletionResponse, error) {
		if attempt > 0 {
			span.AddEvent("llm.retry", trace.WithAttributes(attribute.Int("attempt", attempt)))
		}
		return g.provider.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		span.SetStatus(codes.Error, ErrEmptyCompletion.Error())
		return nil, fmt.Errorf("%w: %w", ErrProvider, ErrEmptyCompletion)
	}

	msg := resp.Choices[0].Message
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	if !useTools {
		msg.ToolCalls = nil
	}
	span.SetAttributes(attribute.Int("llm.tool_calls", len(msg.ToolCalls)))
	return &msg, nil
}
