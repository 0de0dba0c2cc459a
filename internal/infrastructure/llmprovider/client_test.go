package llmprovider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/llm"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "test-model",
  "choices": [{
    "index": 0,
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": "",
      "tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "list_tasks", "arguments": "{}"}}]
    }
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func completionServer(t *testing.T, wantPath string, seen *map[string]any, auth *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		*auth = r.Header.Get("Authorization")
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, seen))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
}

func request() llm.ChatCompletionRequest {
	temperature := float32(0.2)
	return llm.ChatCompletionRequest{
		Model:       "test-model",
		Temperature: &temperature,
		Messages: []llm.ChatMessage{
			{Role: llm.RoleSystem, Content: "be helpful"},
			{Role: llm.RoleUser, Content: "what is left?"},
		},
		Tools: []llm.ToolDefinition{{
			Type: "function",
			Function: llm.ToolFunctionSchema{
				Name:       "list_tasks",
				Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
			},
		}},
		ToolChoice: "auto",
	}
}

func assertToolCall(t *testing.T, resp *llm.ChatCompletionResponse) {
	t.Helper()
	require.Len(t, resp.Choices, 1)
	msg := resp.Choices[0].Message
	assert.Equal(t, llm.RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "list_tasks", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, "{}", msg.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool_calls", resp.Choices[0].FinishReason)
}

func TestClient_CreateChatCompletion(t *testing.T) {
	var seen map[string]any
	var auth string
	srv := completionServer(t, "/v1/chat/completions", &seen, &auth)
	defer srv.Close()

	client := NewClient(srv.URL+"/", "secret", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), request())
	require.NoError(t, err)

	assertToolCall(t, resp)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "test-model", seen["model"])
	assert.Equal(t, false, seen["stream"])
	assert.Equal(t, "auto", seen["tool_choice"])
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).CreateChatCompletion(context.Background(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	var statusErr *llm.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.True(t, llm.IsTransient(err))
}

func TestOpenAIClient_CreateChatCompletion(t *testing.T) {
	var seen map[string]any
	var auth string
	srv := completionServer(t, "/v1/chat/completions", &seen, &auth)
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "sk-test")
	resp, err := client.CreateChatCompletion(context.Background(), request())
	require.NoError(t, err)

	assertToolCall(t, resp)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, "Bearer sk-test", auth)
	tools, ok := seen["tools"].([]any)
	require.True(t, ok)
	assert.Len(t, tools, 1)
}

func TestToOpenAIRequest_ToolHistory(t *testing.T) {
	req := llm.ChatCompletionRequest{
		Model: "m",
		Messages: []llm.ChatMessage{
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "call_1", Type: "function", Function: llm.ToolFunction{Name: "list_tasks", Arguments: "{}"}}}},
			{Role: llm.RoleTool, ToolCallID: "call_1", Name: "list_tasks", Content: `{"status":"success"}`},
		},
		ToolChoice: "auto",
	}

	out := toOpenAIRequest(req)
	require.Len(t, out.Messages, 2)
	assert.Equal(t, "list_tasks", out.Messages[0].ToolCalls[0].Function.Name)
	assert.Equal(t, "call_1", out.Messages[1].ToolCallID)
	assert.Nil(t, out.ToolChoice)
}
