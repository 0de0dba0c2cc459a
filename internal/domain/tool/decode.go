package tool

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrNotToolCall means text content does not hold a tool-call list.
var ErrNotToolCall = errors.New("content is not a tool call")

// TextCall is a tool call some models emit as plain text instead of a structured tool call.
type TextCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type rawTextCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
	Arguments  json.RawMessage `json:"arguments"`
}

// LooksLikeTextCall is the cheap pre-check done before decoding assistant text.
func LooksLikeTextCall(content string) bool {
	s := stripFence(content)
	if s == "" || (s[0] != '[' && s[0] != '{') {
		return false
	}
	return strings.Contains(s, `"name"`) && (strings.Contains(s, `"parameters"`) || strings.Contains(s, `"arguments"`))
}

// DecodeTextCalls parses content shaped as [{"name":...,"parameters":{...}}]. A single object and
// an "arguments" key are accepted too, as is a surrounding markdown code fence. Arguments given as
// a JSON string are unwrapped.
func DecodeTextCalls(content string) ([]TextCall, error) {
	s := stripFence(content)
	if s == "" {
		return nil, ErrNotToolCall
	}

	var raw []rawTextCall
	switch s[0] {
	case '[':
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, err
		}
	case '{':
		var one rawTextCall
		if err := json.Unmarshal([]byte(s), &one); err != nil {
			return nil, err
		}
		raw = append(raw, one)
	default:
		return nil, ErrNotToolCall
	}

	calls := make([]TextCall, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		args := r.Parameters
		if len(bytes.TrimSpace(args)) == 0 {
			args = r.Arguments
		}
		args, err := normalizeArguments(args)
		if err != nil {
			return nil, err
		}
		calls = append(calls, TextCall{Name: name, Arguments: args})
	}
	if len(calls) == 0 {
		return nil, ErrNotToolCall
	}
	return calls, nil
}

func normalizeArguments(args json.RawMessage) (json.RawMessage, error) {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return json.RawMessage("{}"), nil
	}
	if args[0] == '"' {
		var inner string
		if err := json.Unmarshal(args, &inner); err != nil {
			return nil, err
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return json.RawMessage("{}"), nil
		}
		args = json.RawMessage(inner)
	}
	if !json.Valid(args) || args[0] != '{' {
		return nil, errors.New("tool call arguments must be a JSON object")
	}
	return args, nil
}

func stripFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
