package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/janhq/pm-assistant/internal/domain/confirmation"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryConfirmationStore keeps confirmation records in a bounded LRU. The least
// recently used session loses its record when the cache is full.
type MemoryConfirmationStore struct {
	cache *lru.Cache
	now   func() time.Time
}

// NewMemoryConfirmationStore returns a store that holds at most size sessions.
func NewMemoryConfirmationStore(size int) (*MemoryConfirmationStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &MemoryConfirmationStore{cache: cache, now: time.Now}, nil
}

var _ confirmation.Store = (*MemoryConfirmationStore)(nil)

func (s *MemoryConfirmationStore) Get(_ context.Context, sessionID string) (*confirmation.Record, error) {
	val, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.cache.Remove(sessionID)
		return nil, nil
	}
	var rec confirmation.Record
	if err := json.Unmarshal(entry.raw, &rec); err != nil {
		return nil, fmt.Errorf("decode confirmation: %w", err)
	}
	return &rec, nil
}

// Put stores a copy of rec so later mutations by the caller do not leak in.
func (s *MemoryConfirmationStore) Put(_ context.Context, rec *confirmation.Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}
	entry := memoryEntry{raw: raw}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.cache.Add(rec.SessionID, entry)
	return nil
}

func (s *MemoryConfirmationStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

// LocalLocker is a per-session mutex for single replica deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns an empty locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Lock blocks until the session lock is held or ctx ends.
func (l *LocalLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[sessionID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[sessionID] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, s)
		return nil, fmt.Errorf("lock session %s: %w", sessionID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(sessionID, s)
		})
	}, nil
}

func (l *LocalLocker) release(sessionID string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, sessionID)
	}
}
