package conversation

import (
	"context"
	"sync"

	domain "github.com/janhq/pm-assistant/internal/domain/conversation"
)

// MemoryStore keeps transcripts in process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Message
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]domain.Message)}
}

func (s *MemoryStore) Append(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], cloneMessage(*msg))
	return nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.sessions[sessionID]
	out := make([]domain.Message, len(stored))
	for i, m := range stored {
		out[i] = cloneMessage(m)
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func cloneMessage(m domain.Message) domain.Message {
	if len(m.ToolCalls) > 0 {
		m.ToolCalls = append([]domain.ToolCallRequest(nil), m.ToolCalls...)
	}
	return m
}

var _ domain.MessageStore = (*MemoryStore)(nil)
