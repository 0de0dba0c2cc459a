package mcpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/domain/tool/builtin"
	projectrepo "github.com/janhq/pm-assistant/internal/infrastructure/repository/project"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	repo := projectrepo.NewMemoryRepository()
	require.NoError(t, repo.SaveProject(ctx, &project.Project{ID: "p1", Name: "Apollo", Department: "Backend"}))
	require.NoError(t, repo.SaveEmployee(ctx, &project.Employee{
		ID: "e1", FirstName: "Alice", LastName: "Nguyen", Department: "Backend",
		Workload: project.WorkloadLow, Availability: project.AvailabilityAvailable,
	}))

	registry, err := builtin.NewRegistry(zerolog.Nop(), time.Second)
	require.NoError(t, err)
	return New(registry, repo, zerolog.Nop())
}

func TestNew_ExposesReadOnlyTools(t *testing.T) {
	s := newServer(t)
	names := s.ToolNames()

	assert.Contains(t, names, "list_employees")
	assert.Contains(t, names, "calculate_sprint_health")
	for _, hidden := range []string{"assign_task_to_employee", "reassign_task", "update_employee_availability", "generate_sprint_plan", "replan_sprints", "switch_active_project"} {
		assert.NotContains(t, names, hidden)
	}
}

func TestServer_ListAndCallTools(t *testing.T) {
	ctx := context.Background()
	s := newServer(t)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	listed, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, listed.Tools, len(s.ToolNames()))

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_employees",
		Arguments: map[string]any{"department": "backend"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	parsed, ok := tool.ParseResult(text.Text)
	require.True(t, ok)
	assert.Equal(t, tool.StatusSuccess, parsed.Status)
	assert.Contains(t, string(parsed.Data), "Alice Nguyen")

	missing, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_employee_info",
		Arguments: map[string]any{"employee_name": "Zed"},
	})
	require.NoError(t, err)
	assert.True(t, missing.IsError)
}

func TestMethodGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "allowed", body: `{"jsonrpc":"2.0","method":"tools/list","id":1}`, status: http.StatusOK},
		{name: "unsupported", body: `{"jsonrpc":"2.0","method":"resources/list","id":1}`, status: http.StatusBadRequest},
		{name: "missing method", body: `{"jsonrpc":"2.0","id":1}`, status: http.StatusBadRequest},
		{name: "invalid json", body: `{`, status: http.StatusBadRequest},
		{name: "empty", body: ``, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/mcp", MethodGuard(allowedMethods), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSessionFrom(t *testing.T) {
	assert.Equal(t, "mcp", sessionFrom(context.Background()))
	ctx := context.WithValue(context.Background(), sessionKey{}, "session_1")
	assert.Equal(t, "session_1", sessionFrom(ctx))
}
