// Package mcpserver exposes the read-only project tools to Model Context Protocol clients.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/project"
	"github.com/janhq/pm-assistant/internal/domain/tool"
	"github.com/janhq/pm-assistant/internal/infrastructure/metrics"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/requests"
	"github.com/janhq/pm-assistant/internal/interfaces/httpserver/responses"
	"github.com/janhq/pm-assistant/internal/utils/platformerrors"
)

// SessionHeader names the chat session whose active project MCP calls default to.
const SessionHeader = "X-Session-ID"

const defaultSession = "mcp"

var allowedMethods = map[string]bool{
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,
	"tools/list":                true,
	"tools/call":                true,
}

// stateful tools change session state even without a confirmation.
var stateful = map[string]bool{
	"switch_active_project": true,
}

type sessionKey struct{}

// Server serves the tools over streamable HTTP.
type Server struct {
	server  *mcp.Server
	handler http.Handler
	tools   []string
	log     zerolog.Logger
}

// New registers every tool that neither needs a confirmation nor changes session state.
func New(registry *tool.Registry, repo project.Repository, log zerolog.Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "pm-assistant", Version: "1.0.0"}, nil),
		log:    log.With().Str("component", "mcp").Logger(),
	}
	for _, d := range registry.Descriptors() {
		if d.Mutating || stateful[d.Name] {
			continue
		}
		s.addTool(registry, repo, d)
	}
	s.handler = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{Stateless: true})
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// ToolNames lists the exposed tools in registration order.
func (s *Server) ToolNames() []string {
	return append([]string(nil), s.tools...)
}

func (s *Server) addTool(registry *tool.Registry, repo project.Repository, d tool.Descriptor) {
	name := d.Name
	s.tools = append(s.tools, name)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        name,
		Description: d.Description,
		InputSchema: d.InputSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input map[string]any) (*mcp.CallToolResult, any, error) {
		if input == nil {
			input = map[string]any{}
		}
		args, err := json.Marshal(input)
		if err != nil {
			return nil, nil, err
		}
		tc := tool.Context{Repo: repo, SessionID: sessionFrom(ctx), Now: time.Now().UTC()}
		result, err := registry.Invoke(ctx, tc, name, args)
		if err != nil {
			metrics.RecordMCPCall(name, "not_found")
			return nil, nil, err
		}
		metrics.RecordMCPCall(name, string(result.Status))
		s.log.Debug().Str("tool", name).Str("status", string(result.Status)).Msg("mcp tool call")
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Content()}},
			IsError: result.IsError(),
		}, nil, nil
	})
}

// RegisterRouter mounts POST /mcp on router.
func (s *Server) RegisterRouter(router *gin.RouterGroup) {
	router.POST("/mcp", MethodGuard(allowedMethods), s.serve)
}

// serve streams Model Context Protocol responses using the SDK handler.
// @Summary MCP endpoint for read-only tools
// @Description Handles JSON-RPC 2.0 MCP requests (initialize, ping, tools/list, tools/call) in stateless mode.
// @Tags MCP API
// @Accept json
// @Produce text/event-stream
// @Param request body object true "MCP JSON-RPC request payload"
// @Success 200 {string} string "Streamed MCP response"
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/mcp [post]
func (s *Server) serve(c *gin.Context) {
	sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if len(sessionID) > requests.MaxSessionIDLength {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, SessionHeader+" is too long", "invalid_request")
		return
	}
	if sessionID != "" {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), sessionKey{}, sessionID))
	}
	c.Request.Header.Set("Accept", "application/json, text/event-stream")
	s.handler.ServeHTTP(c.Writer, c.Request)
}

func sessionFrom(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok && id != "" {
		return id
	}
	return defaultSession
}

// MethodGuard rejects JSON-RPC methods outside allowed before they reach the SDK.
func MethodGuard(allowed map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeInternal, "failed to read MCP request body", "mcp_read_failed")
			return
		}
		_ = c.Request.Body.Close()
		if len(body) == 0 {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "empty MCP request body", "invalid_request")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var payload struct {
			Method string `json:"method"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid MCP request payload", "invalid_request")
			return
		}
		if payload.Method == "" {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "missing method field in MCP request", "invalid_request")
			return
		}
		if !allowed[payload.Method] {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unsupported MCP method: "+payload.Method, "unsupported_method")
			return
		}
		c.Next()
	}
}
