package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/requests"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/responses"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// ChatHandler exposes HTTP entrypoints for the assistant chat.
type ChatHandler struct {
	service orchestrator.Chat
	log     zerolog.Logger
}

// NewChatHandler constructs the handler.
func NewChatHandler(service orchestrator.Chat, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("handler", "chat").Logger(),
	}
}

// Send handles POST /v1/chat
// @Summary Send a chat message
// @Description Runs one assistant turn. Mutating tools return a proposal with confirmation_data instead of changing state.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body requests.SendMessageRequest true "Message"
// @Success 200 {object} responses.ChatResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/chat [post]
func (h *ChatHandler) Send(c *gin.Context) {
	var req requests.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "invalid_request")
		return
	}

	reply, err := h.service.Send(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", req.SessionID).Msg("chat turn failed")
		responses.HandleError(c, err, "failed to process message")
		return
	}

	c.JSON(http.StatusOK, responses.MapReplyToResponse(reply))
}

// Confirm handles POST /v1/chat/confirm
// @Summary Accept or reject a pending proposal
// @Description Applies the proposal held for the session when confirmed is true, discards it otherwise.
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body requests.ConfirmRequest true "Decision"
// @Success 200 {object} responses.ChatResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/chat/confirm [post]
func (h *ChatHandler) Confirm(c *gin.Context) {
	var req requests.ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "invalid_request")
		return
	}

	reply, err := h.service.Resolve(c.Request.Context(), req.SessionID, req.Token, *req.Confirmed)
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", req.SessionID).Msg("confirmation failed")
		responses.HandleError(c, err, "failed to resolve confirmation")
		return
	}

	c.JSON(http.StatusOK, responses.MapReplyToResponse(reply))
}

// History handles GET /v1/chat/sessions/:session_id/messages
// @Summary List session messages
// @Tags Chat
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} responses.HistoryResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/chat/sessions/{session_id}/messages [get]
func (h *ChatHandler) History(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	msgs, err := h.service.History(c.Request.Context(), sessionID)
	if err != nil {
		responses.HandleError(c, err, "failed to load messages")
		return
	}
	pending, err := h.service.Pending(c.Request.Context(), sessionID)
	if err != nil {
		responses.HandleError(c, err, "failed to load pending confirmation")
		return
	}

	c.JSON(http.StatusOK, responses.MapHistoryToResponse(sessionID, msgs, pending))
}

// Clear handles DELETE /v1/chat/sessions/:session_id/messages
// @Summary Clear a session
// @Description Deletes the transcript and any pending proposal of the session.
// @Tags Chat
// @Param session_id path string true "Session ID"
// @Success 204
// @Failure 409 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/chat/sessions/{session_id}/messages [delete]
func (h *ChatHandler) Clear(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := h.service.Clear(c.Request.Context(), sessionID); err != nil {
		responses.HandleError(c, err, "failed to clear session")
		return
	}
	c.Status(http.StatusNoContent)
}

// Tools handles GET /v1/tools
// @Summary List tools
// @Description Lists every tool the assistant can call with its input schema.
// @Tags Tools
// @Produce json
// @Success 200 {object} responses.ToolsResponse
// @Router /v1/tools [get]
func (h *ChatHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, responses.ToolsResponse{Data: h.service.Tools()})
}

func sessionParam(c *gin.Context) (string, bool) {
	sessionID := c.Param("session_id")
	if len(sessionID) > requests.MaxSessionIDLength {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("session_id must be at most %d characters", requests.MaxSessionIDLength), "invalid_request")
		return "", false
	}
	return sessionID, true
}
