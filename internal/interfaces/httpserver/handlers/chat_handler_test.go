package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/handlers"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/responses"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// MockChatService implements orchestrator.Chat with overridable funcs.
type MockChatService struct {
	SendFunc    func(ctx context.Context, sessionID, text string) (*orchestrator.Reply, error)
	ResolveFunc func(ctx context.Context, sessionID, token string, confirmed bool) (*orchestrator.Reply, error)
	HistoryFunc func(ctx context.Context, sessionID string) ([]conversation.Message, error)
	PendingFunc func(ctx context.Context, sessionID string) (*orchestrator.ConfirmationData, error)
	ClearFunc   func(ctx context.Context, sessionID string) error
	ToolsFunc   func() []tool.Descriptor
}

func (m *MockChatService) Send(ctx context.Context, sessionID, text string) (*orchestrator.Reply, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, sessionID, text)
	}
	return &orchestrator.Reply{SessionID: sessionID}, nil
}

func (m *MockChatService) Resolve(ctx context.Context, sessionID, token string, confirmed bool) (*orchestrator.Reply, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, sessionID, token, confirmed)
	}
	return &orchestrator.Reply{SessionID: sessionID}, nil
}

func (m *MockChatService) History(ctx context.Context, sessionID string) ([]conversation.Message, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockChatService) Pending(ctx context.Context, sessionID string) (*orchestrator.ConfirmationData, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx, sessionID)
	}
	return nil, nil
}

func (m *MockChatService) Clear(ctx context.Context, sessionID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockChatService) Tools() []tool.Descriptor {
	if m.ToolsFunc != nil {
		return m.ToolsFunc()
	}
	return nil
}

func newRouter(svc orchestrator.Chat) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewChatHandler(svc, zerolog.Nop())
	r := gin.New()
	r.POST("/v1/chat", h.Send)
	r.POST("/v1/chat/confirm", h.Confirm)
	r.GET("/v1/chat/sessions/:session_id/messages", h.History)
	r.DELETE("/v1/chat/sessions/:session_id/messages", h.Clear)
	r.GET("/v1/tools", h.Tools)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatHandler_Send(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		sendErr    error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			body:       map[string]any{"session_id": "s1", "message": "list employees"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing message",
			body:       map[string]any{"session_id": "s1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "session busy",
			body: map[string]any{"session_id": "s1", "message": "hi"},
			sendErr: platformerrors.NewError(context.Background(), platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
				"session is busy with another request", nil, "orchestrator-lock-001").WithCode(orchestrator.CodeSessionBusy),
			wantStatus: http.StatusConflict,
			wantCode:   orchestrator.CodeSessionBusy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotSession, gotText string
			svc := &MockChatService{
				SendFunc: func(_ context.Context, sessionID, text string) (*orchestrator.Reply, error) {
					gotSession, gotText = sessionID, text
					if tt.sendErr != nil {
						return nil, tt.sendErr
					}
					return &orchestrator.Reply{SessionID: sessionID, Response: "Alice Nguyen", ToolName: "list_employees"}, nil
				},
			}

			w := do(t, newRouter(svc), http.MethodPost, "/v1/chat", tt.body)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantCode != "" {
				var errResp responses.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, tt.wantCode, errResp.Code)
				return
			}

			var resp responses.ChatResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "s1", gotSession)
			assert.Equal(t, "list employees", gotText)
			assert.Equal(t, "s1", resp.SessionID)
			assert.Equal(t, "Alice Nguyen", resp.Response)
			assert.Equal(t, "list_employees", resp.ToolName)
			assert.False(t, resp.RequiresConfirmation)
		})
	}
}

func TestChatHandler_Confirm(t *testing.T) {
	t.Run("passes the decision through", func(t *testing.T) {
		var gotConfirmed bool
		svc := &MockChatService{
			ResolveFunc: func(_ context.Context, sessionID, token string, confirmed bool) (*orchestrator.Reply, error) {
				assert.Equal(t, "s1", sessionID)
				assert.Equal(t, "cfm_abc", token)
				gotConfirmed = confirmed
				return &orchestrator.Reply{SessionID: sessionID, Response: "Done."}, nil
			},
		}

		w := do(t, newRouter(svc), http.MethodPost, "/v1/chat/confirm",
			map[string]any{"session_id": "s1", "token": "cfm_abc", "confirmed": false})
		require.Equal(t, http.StatusOK, w.Code)
		assert.False(t, gotConfirmed)
	})

	t.Run("missing confirmed flag", func(t *testing.T) {
		called := false
		svc := &MockChatService{
			ResolveFunc: func(context.Context, string, string, bool) (*orchestrator.Reply, error) {
				called = true
				return nil, nil
			},
		}
		w := do(t, newRouter(svc), http.MethodPost, "/v1/chat/confirm",
			map[string]any{"session_id": "s1", "token": "cfm_abc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})

	t.Run("token mismatch", func(t *testing.T) {
		svc := &MockChatService{
			ResolveFunc: func(ctx context.Context, _, _ string, _ bool) (*orchestrator.Reply, error) {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
					"confirmation token does not match", nil, "orchestrator-resolve-token-001").WithCode(orchestrator.CodeTokenMismatch)
			},
		}
		w := do(t, newRouter(svc), http.MethodPost, "/v1/chat/confirm",
			map[string]any{"session_id": "s1", "token": "cfm_wrong", "confirmed": true})
		require.Equal(t, http.StatusConflict, w.Code)

		var errResp responses.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
		assert.Equal(t, orchestrator.CodeTokenMismatch, errResp.Code)
		assert.Equal(t, "confirmation token does not match", errResp.Message)
	})
}

func TestChatHandler_History(t *testing.T) {
	msgs := []conversation.Message{
		{ID: "m1", SessionID: "s1", Role: conversation.RoleUser, Content: "assign the task"},
		{ID: "m2", SessionID: "s1", Role: conversation.RoleTool, Content: "{}", ToolName: "assign_task", RequiresConfirmation: true},
	}
	svc := &MockChatService{
		HistoryFunc: func(_ context.Context, sessionID string) ([]conversation.Message, error) {
			assert.Equal(t, "s1", sessionID)
			return msgs, nil
		},
		PendingFunc: func(context.Context, string) (*orchestrator.ConfirmationData, error) {
			return &orchestrator.ConfirmationData{Token: "cfm_1", ToolName: "assign_task", ConfirmationType: tool.ConfirmAssignTask}, nil
		},
	}

	w := do(t, newRouter(svc), http.MethodGet, "/v1/chat/sessions/s1/messages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "assign_task", resp.Data[1].ToolName)
	assert.True(t, resp.Data[1].RequiresConfirmation)
	require.NotNil(t, resp.PendingConfirmation)
	assert.Equal(t, "cfm_1", resp.PendingConfirmation.Token)
}

func TestChatHandler_Clear(t *testing.T) {
	cleared := ""
	svc := &MockChatService{
		ClearFunc: func(_ context.Context, sessionID string) error {
			cleared = sessionID
			return nil
		},
	}

	w := do(t, newRouter(svc), http.MethodDelete, "/v1/chat/sessions/s9/messages", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "s9", cleared)
}

func TestChatHandler_SessionIDLength(t *testing.T) {
	longest := strings.Repeat("s", 64)
	tooLong := strings.Repeat("s", 65)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{name: "send at limit", method: http.MethodPost, path: "/v1/chat", body: map[string]any{"session_id": longest, "message": "hi"}, wantStatus: http.StatusOK},
		{name: "send too long", method: http.MethodPost, path: "/v1/chat", body: map[string]any{"session_id": tooLong, "message": "hi"}, wantStatus: http.StatusBadRequest},
		{name: "confirm too long", method: http.MethodPost, path: "/v1/chat/confirm", body: map[string]any{"session_id": tooLong, "token": "cfm_1", "confirmed": true}, wantStatus: http.StatusBadRequest},
		{name: "history at limit", method: http.MethodGet, path: "/v1/chat/sessions/" + longest + "/messages", wantStatus: http.StatusOK},
		{name: "history too long", method: http.MethodGet, path: "/v1/chat/sessions/" + tooLong + "/messages", wantStatus: http.StatusBadRequest},
		{name: "clear too long", method: http.MethodDelete, path: "/v1/chat/sessions/" + tooLong + "/messages", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &MockChatService{
				SendFunc: func(_ context.Context, sessionID, _ string) (*orchestrator.Reply, error) {
					called = true
					return &orchestrator.Reply{SessionID: sessionID}, nil
				},
				ResolveFunc: func(_ context.Context, sessionID, _ string, _ bool) (*orchestrator.Reply, error) {
					called = true
					return &orchestrator.Reply{SessionID: sessionID}, nil
				},
				HistoryFunc: func(context.Context, string) ([]conversation.Message, error) {
					called = true
					return nil, nil
				},
				ClearFunc: func(context.Context, string) error {
					called = true
					return nil
				},
			}

			w := do(t, newRouter(svc), tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusBadRequest {
				var errResp responses.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
				assert.Equal(t, "invalid_request", errResp.Code)
				assert.False(t, called, "the service never sees an oversized session id")
			} else {
				assert.True(t, called)
			}
		})
	}
}

func TestChatHandler_Tools(t *testing.T) {
	svc := &MockChatService{
		ToolsFunc: func() []tool.Descriptor {
			return []tool.Descriptor{{Name: "list_projects", Description: "List projects"}}
		},
	}

	w := do(t, newRouter(svc), http.MethodGet, "/v1/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.ToolsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "list_projects", resp.Data[0].Name)
}
