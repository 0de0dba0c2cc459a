package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/janhq/pm-assistant/internal/config"
	"github.com/janhq/pm-assistant/internal/domain/conversation"
	"github.com/janhq/pm-assistant/internal/domain/orchestrator"
	"github.com/janhq/pm-assistant/internal/domain/tool"
)

type stubChat struct{}

func (stubChat) Send(_ context.Context, sessionID, _ string) (*orchestrator.Reply, error) {
	return &orchestrator.Reply{SessionID: sessionID}, nil
}
func (stubChat) Resolve(_ context.Context, sessionID, _ string, _ bool) (*orchestrator.Reply, error) {
	return &orchestrator.Reply{SessionID: sessionID}, nil
}
func (stubChat) History(context.Context, string) ([]conversation.Message, error) { return nil, nil }
func (stubChat) Pending(context.Context, string) (*orchestrator.ConfirmationData, error) {
	return nil, nil
}
func (stubChat) Clear(context.Context, string) error { return nil }
func (stubChat) Tools() []tool.Descriptor             { return []tool.Descriptor{{Name: "list_projects"}} }

func newTestServer(opts Options) *HTTPServer {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ServiceName: "pm-assistant", Environment: "test"}
	return New(cfg, zerolog.Nop(), stubChat{}, opts)
}

func get(s *HTTPServer, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		for _, value := range v {
			req.Header.Add(k, value)
		}
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(Options{})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/v1/tools", http.StatusOK},
		{"/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, get(s, tt.path, nil).Code)
		})
	}
}

func TestReadinessFailure(t *testing.T) {
	s := newTestServer(Options{Readiness: map[string]ReadinessCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}})

	w := get(s, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), "database")
}

func TestRequestID(t *testing.T) {
	s := newTestServer(Options{})

	w := get(s, "/healthz", http.Header{RequestIDHeader: []string{"req-123"}})
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	w = get(s, "/healthz", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
