package llm

// TrimHistory keeps at most limit of the most recent messages. The window is moved forward
// until it starts at a user message so that no tool result is sent without the assistant
// message that requested it. A limit of zero or less disables trimming.
func TrimHistory(messages []ChatMessage, limit int) []ChatMessage {
	if limit <= 0 || len(messages) <= limit {
		return messages
	}

	start := len(messages) - limit
	for start < len(messages) && messages[start].Role != RoleUser {
		start++
	}
	if start == len(messages) {
		// No user message inside the window; fall back to the last user turn.
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == RoleUser {
				return messages[i:]
			}
		}
		return messages[len(messages)-limit:]
	}
	return messages[start:]
}
