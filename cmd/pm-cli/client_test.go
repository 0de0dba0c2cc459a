package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newFakeAssistant(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if body["message"] == "assign" {
			writeJSON(w, map[string]any{
				"session_id":            "s1",
				"response":              "Assign the task to Alice?",
				"requires_confirmation": true,
				"confirmation_data":     map[string]any{"token": "cfm_1", "tool_name": "assign_task"},
			})
			return
		}
		writeJSON(w, map[string]any{"session_id": "s1", "response": "hello"})
	})
	mux.HandleFunc("POST /v1/chat/confirm", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["token"] != "cfm_1" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"code": "token_mismatch", "error": "bad token", "message": "bad token"})
			return
		}
		reply := "Cancelled."
		if body["confirmed"] == true {
			reply = "Task assigned."
		}
		writeJSON(w, map[string]any{"session_id": "s1", "response": reply})
	})
	mux.HandleFunc("DELETE /v1/chat/sessions/{id}/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIClient(t *testing.T) {
	srv := newFakeAssistant(t)
	client := newAPIClient(srv.URL+"/", "secret")
	ctx := context.Background()

	resp, err := client.send(ctx, "", "assign")
	require.NoError(t, err)
	assert.True(t, resp.RequiresConfirmation)
	require.NotNil(t, resp.ConfirmationData)
	assert.Equal(t, "cfm_1", resp.ConfirmationData.Token)

	resp, err = client.confirm(ctx, "s1", "cfm_1", true)
	require.NoError(t, err)
	assert.Equal(t, "Task assigned.", resp.Response)

	_, err = client.confirm(ctx, "s1", "cfm_other", true)
	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "token_mismatch", apiErr.Code)
	assert.Equal(t, "bad token", apiErr.Message)

	assert.NoError(t, client.clear(ctx, "s1"))
}

func TestRunREPL(t *testing.T) {
	srv := newFakeAssistant(t)
	client := newAPIClient(srv.URL, "secret")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	input := strings.NewReader("hi\nassign\nn\n/quit\n")
	require.NoError(t, runREPL(cmd, client, input))

	text := out.String()
	assert.Contains(t, text, "hello")
	assert.Contains(t, text, "Assign the task to Alice?")
	assert.Contains(t, text, "Apply this change? [y/N]")
	assert.Contains(t, text, "Cancelled.")
}
