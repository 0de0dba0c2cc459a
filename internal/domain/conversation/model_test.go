package conversation_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/llm"
)

func TestToLLM(t *testing.T) {
	messages := []conversation.Message{
		{Role: conversation.RoleUser, Content: "assign login page"},
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCallRequest{
			{ID: "call_1", Name: "assign_task_to_employee", Arguments: json.RawMessage(`{"task_title":"Login"}`)},
		}},
		{Role: conversation.RoleTool, ToolCallID: "call_1", ToolName: "assign_task_to_employee", Content: `{"status":"success"}`},
		{Role: conversation.RoleAssistant, ToolCalls: []conversation.ToolCallRequest{{ID: "call_2", Name: "list_tasks"}}},
	}

	out := conversation.ToLLM(messages)
	require.Len(t, out, 4)

	assert.Equal(t, llm.RoleUser, out[0].Role)
	require.Len(t, out[1].ToolCalls, 1)
	assert.Equal(t, "function", out[1].ToolCalls[0].Type)
	assert.Equal(t, `{"task_title":"Login"}`, out[1].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "call_1", out[2].ToolCallID)
	assert.Equal(t, "assign_task_to_employee", out[2].Name)
	assert.Equal(t, "{}", out[3].ToolCalls[0].Function.Arguments)
}

func TestNewMessage(t *testing.T) {
	msg := conversation.NewMessage("session_1", conversation.RoleUser, "hello")

	assert.True(t, strings.HasPrefix(msg.ID, "msg_"))
	assert.Equal(t, "session_1", msg.SessionID)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.NotEqual(t, conversation.NewSessionID(), conversation.NewSessionID())
}
