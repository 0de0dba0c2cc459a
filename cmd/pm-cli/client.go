package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type confirmationData struct {
	Token            string          `json:"token"`
	ToolName         string          `json:"tool_name"`
	ConfirmationType string          `json:"confirmation_type"`
	Arguments        json.RawMessage `json:"tool_args"`
	Proposal         json.RawMessage `json:"tool_result,omitempty"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
}

type chatResponse struct {
	SessionID            string            `json:"session_id"`
	Response             string            `json:"response"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	ConfirmationData     *confirmationData `json:"confirmation_data"`
	ToolName             string            `json:"tool_name,omitempty"`
	IsError              bool              `json:"is_error"`
}

type message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ToolName  string    `json:"tool_name,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	SessionID           string            `json:"session_id"`
	Data                []message         `json:"data"`
	PendingConfirmation *confirmationData `json:"pending_confirmation"`
}

type toolDescriptor struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ConfirmationType string `json:"confirmation_type,omitempty"`
	Mutating         bool   `json:"mutating"`
}

type toolsResponse struct {
	Data []toolDescriptor `json:"data"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// apiError is a non-2xx reply from the assistant.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

type apiClient struct {
	http *resty.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(3*time.Minute).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &apiClient{http: client}
}

func (c *apiClient) send(ctx context.Context, sessionID, text string) (*chatResponse, error) {
	var out chatResponse
	body := map[string]any{"message": text}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	if err := c.do(ctx, "POST", "/v1/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) confirm(ctx context.Context, sessionID, token string, accepted bool) (*chatResponse, error) {
	var out chatResponse
	body := map[string]any{"session_id": sessionID, "token": token, "confirmed": accepted}
	if err := c.do(ctx, "POST", "/v1/chat/confirm", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) history(ctx context.Context, sessionID string) (*historyResponse, error) {
	var out historyResponse
	if err := c.do(ctx, "GET", sessionPath(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) clear(ctx context.Context, sessionID string) error {
	return c.do(ctx, "DELETE", sessionPath(sessionID), nil, nil)
}

func (c *apiClient) tools(ctx context.Context) (*toolsResponse, error) {
	var out toolsResponse
	if err := c.do(ctx, "GET", "/v1/tools", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sessionPath(sessionID string) string {
	return "/v1/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var errResp errorResponse
	req := c.http.R().SetContext(ctx).SetError(&errResp)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return &apiError{Status: resp.StatusCode(), Code: errResp.Code, Message: msg}
	}
	return nil
}
