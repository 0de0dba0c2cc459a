package conversation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/janhq/pm-assistant/internal/domain/llm"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a model request to invoke one tool.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one immutable entry of a session transcript.
type Message struct {
	ID                   string            `json:"id"`
	SessionID            string            `json:"session_id"`
	Role                 Role              `json:"role"`
	Content              string            `json:"content"`
	ToolCalls            []ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID           string            `json:"tool_call_id,omitempty"`
	ToolName             string            `json:"tool_name,omitempty"`
	IsError              bool              `json:"is_error,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// NewMessage stamps a message with an id and creation time.
func NewMessage(sessionID string, role Role, content string) *Message {
	return &Message{
		ID:        newPublicID("msg"),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return newPublicID("session")
}

// NewToolCallID returns an identifier for tool calls decoded from plain text.
func NewToolCallID() string {
	return newPublicID("call")
}

func newPublicID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// ToLLM converts the stored transcript into provider messages.
func ToLLM(messages []Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(messages))
	for _, m := range messages {
		msg := llm.ChatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
		switch m.Role {
		case RoleAssistant:
			for _, call := range m.ToolCalls {
				args := string(call.Arguments)
				if args == "" {
					args = "{}"
				}
				msg.ToolCalls = append(msg.ToolCalls, llm.ToolCall{
					ID:       call.ID,
					Type:     "function",
					Function: llm.ToolFunction{Name: call.Name, Arguments: args},
				})
			}
		case RoleTool:
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		out = append(out, msg)
	}
	return out
}
