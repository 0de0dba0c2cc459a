package responses

import (
	"time"

	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

// ChatResponse is returned by the send and confirm endpoints.
type ChatResponse struct {
	SessionID            string                         `json:"session_id"`
	Response             string                         `json:"response"`
	RequiresConfirmation bool                           `json:"requires_confirmation"`
	ConfirmationData     *orchestrator.ConfirmationData `json:"confirmation_data"`
	ToolName             string                         `json:"tool_name,omitempty"`
	IsError              bool                           `json:"is_error"`
}

// MessageResponse is one transcript entry.
type MessageResponse struct {
	ID                   string                         `json:"id"`
	Role                 string                         `json:"role"`
	Content              string                         `json:"content"`
	ToolCalls            []conversation.ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID           string                         `json:"tool_call_id,omitempty"`
	ToolName             string                         `json:"tool_name,omitempty"`
	IsError              bool                           `json:"is_error,omitempty"`
	RequiresConfirmation bool                           `json:"requires_confirmation,omitempty"`
	CreatedAt            time.Time                      `json:"created_at"`
}

// HistoryResponse wraps a session transcript and its pending proposal.
type HistoryResponse struct {
	SessionID           string                         `json:"session_id"`
	Data                []MessageResponse              `json:"data"`
	PendingConfirmation *orchestrator.ConfirmationData `json:"pending_confirmation"`
}

// ToolsResponse lists the tool catalog.
type ToolsResponse struct {
	Data []tool.Descriptor `json:"data"`
}

// MapReplyToResponse maps an orchestrator reply to the HTTP payload.
func MapReplyToResponse(r *orchestrator.Reply) ChatResponse {
	return ChatResponse{
		SessionID:            r.SessionID,
		Response:             r.Response,
		RequiresConfirmation: r.RequiresConfirmation,
		ConfirmationData:     r.Confirmation,
		ToolName:             r.ToolName,
		IsError:              r.IsError,
	}
}

// MapHistoryToResponse maps a transcript to the HTTP payload.
func MapHistoryToResponse(sessionID string, msgs []conversation.Message, pending *orchestrator.ConfirmationData) HistoryResponse {
	data := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		data = append(data, MessageResponse{
			ID:                   m.ID,
			Role:                 string(m.Role),
			Content:              m.Content,
			ToolCalls:            m.ToolCalls,
			ToolCallID:           m.ToolCallID,
			ToolName:             m.ToolName,
			IsError:              m.IsError,
			RequiresConfirmation: m.RequiresConfirmation,
			CreatedAt:            m.CreatedAt,
		})
	}
	return HistoryResponse{SessionID: sessionID, Data: data, PendingConfirmation: pending}
}
