package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/llm"
	"github.com/janhq/pm-assistant/internal/domain/retry"
)

type mockProvider struct {
	CreateFunc func(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error)
	requests   []llm.ChatCompletionRequest
}

func (m *mockProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	m.requests = append(m.requests, req)
	return m.CreateFunc(ctx, req)
}

func reply(msg llm.ChatMessage) func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	return func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
		return &llm.ChatCompletionResponse{Choices: []llm.ChatCompletionChoice{{Message: msg}}}, nil
	}
}

func TestGatewayPrependsSystemPromptAndTools(t *testing.T) {
	provider := &mockProvider{CreateFunc: reply(llm.ChatMessage{Content: "hi"})}
	gw := llm.NewGateway(provider, llm.GatewayOptions{Model: "m", Temperature: 0.2})

	tools := []llm.ToolDefinition{{Type: "function", Function: llm.ToolFunctionSchema{Name: "list_tasks"}}}
	msg, err := gw.Complete(context.Background(), []llm.ChatMessage{{Role: llm.RoleUser, Content: "hello"}}, tools, true)
	require.NoError(t, err)

	assert.Equal(t, llm.RoleAssistant, msg.Role)
	assert.Equal(t, "hi", msg.Content)
	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, llm.DefaultSystemPrompt, req.Messages[0].Content)
	assert.Len(t, req.Tools, 1)
	assert.Equal(t, "auto", req.ToolChoice)
	require.NotNil(t, req.Temperature)
}

func TestGatewayWithoutToolsDropsToolCalls(t *testing.T) {
	provider := &mockProvider{CreateFunc: reply(llm.ChatMessage{
		Role:      llm.RoleAssistant,
		Content:   "narration",
		ToolCalls: []llm.ToolCall{{ID: "x", Function: llm.ToolFunction{Name: "list_tasks"}}},
	})}
	gw := llm.NewGateway(provider, llm.GatewayOptions{Model: "m"})

	tools := []llm.ToolDefinition{{Type: "function", Function: llm.ToolFunctionSchema{Name: "list_tasks"}}}
	msg, err := gw.Complete(context.Background(), nil, tools, false)
	require.NoError(t, err)

	assert.Empty(t, msg.ToolCalls)
	assert.Empty(t, provider.requests[0].Tools)
}

func TestGatewayWrapsProviderErrors(t *testing.T) {
	provider := &mockProvider{CreateFunc: func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
		return nil, errors.New("connection refused")
	}}
	gw := llm.NewGateway(provider, llm.GatewayOptions{})

	_, err := gw.Complete(context.Background(), nil, nil, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrProvider)

	provider.CreateFunc = func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
		return &llm.ChatCompletionResponse{}, nil
	}
	_, err = gw.Complete(context.Background(), nil, nil, true)
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestTrimHistory(t *testing.T) {
	messages := []llm.ChatMessage{
		{Role: llm.RoleUser, Content: "1"},
		{Role: llm.RoleAssistant, Content: "2", ToolCalls: []llm.ToolCall{{ID: "a"}}},
		{Role: llm.RoleTool, Content: "3", ToolCallID: "a"},
		{Role: llm.RoleAssistant, Content: "4"},
		{Role: llm.RoleUser, Content: "5"},
		{Role: llm.RoleAssistant, Content: "6"},
	}

	tests := []struct {
		name  string
		limit int
		first string
		count int
	}{
		{name: "disabled", limit: 0, first: "1", count: 6},
		{name: "larger than history", limit: 10, first: "1", count: 6},
		{name: "window starts at tool result", limit: 4, first: "5", count: 2},
		{name: "window starts at user", limit: 2, first: "5", count: 2},
		{name: "no user inside window", limit: 1, first: "5", count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := llm.TrimHistory(messages, tt.limit)
			require.Len(t, got, tt.count)
			assert.Equal(t, tt.first, got[0].Content)
		})
	}
}

func TestGatewayRetriesTransientErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"server error retried", &llm.StatusError{StatusCode: 503, Body: "overloaded"}, 3},
		{"rate limit retried", &llm.StatusError{StatusCode: 429}, 3},
		{"bad request not retried", &llm.StatusError{StatusCode: 400, Body: "bad tools"}, 1},
		{"transport error retried", errors.New("connection reset"), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mockProvider{CreateFunc: func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
				return nil, tt.err
			}}
			gw := llm.NewGateway(provider, llm.GatewayOptions{Retry: retry.Policy{MaxRetries: 2}})

			_, err := gw.Complete(context.Background(), nil, nil, false)
			require.ErrorIs(t, err, llm.ErrProvider)
			assert.Len(t, provider.requests, tt.wantCalls)
		})
	}
}

func TestGatewayRetryRecovers(t *testing.T) {
	calls := 0
	provider := &mockProvider{CreateFunc: func(context.Context, llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
		calls++
		if calls == 1 {
			return nil, &llm.StatusError{StatusCode: 502}
		}
		return &llm.ChatCompletionResponse{Choices: []llm.ChatCompletionChoice{{Message: llm.ChatMessage{Content: "ok"}}}}, nil
	}}
	gw := llm.NewGateway(provider, llm.GatewayOptions{Retry: retry.Policy{MaxRetries: 1}})

	msg, err := gw.Complete(context.Background(), nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "ok", msg.Content)
	assert.Equal(t, 2, calls)
}
