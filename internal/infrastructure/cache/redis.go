// Package cache holds the short-lived session state of the assistant: pending
// confirmations and per-session locks, backed by Redis or by process memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/janhq/pm-assistant/internal/domain/confirmation"
)

const keyVersion = "v1"

// NewRedisClient connects to one Redis node or a comma separated cluster list.
func NewRedisClient(ctx context.Context, redisURL string) (redis.UniversalClient, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}
	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 {
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}
		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	return opts, nil
}

func confirmationKey(sessionID string) string {
	return "pm:" + keyVersion + ":confirmation:" + sessionID
}

func lockKey(sessionID string) string {
	return "pm:" + keyVersion + ":lock:" + sessionID
}

// RedisConfirmationStore keeps one JSON encoded record per session with a Redis TTL.
type RedisConfirmationStore struct {
	client redis.UniversalClient
}

// NewRedisConfirmationStore wraps an existing client.
func NewRedisConfirmationStore(client redis.UniversalClient) *RedisConfirmationStore {
	return &RedisConfirmationStore{client: client}
}

var _ confirmation.Store = (*RedisConfirmationStore)(nil)

func (s *RedisConfirmationStore) Get(ctx context.Context, sessionID string) (*confirmation.Record, error) {
	raw, err := s.client.Get(ctx, confirmationKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get confirmation: %w", err)
	}
	var rec confirmation.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode confirmation: %w", err)
	}
	return &rec, nil
}

func (s *RedisConfirmationStore) Put(ctx context.Context, rec *confirmation.Record, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}
	if err := s.client.Set(ctx, confirmationKey(rec.SessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put confirmation: %w", err)
	}
	return nil
}

func (s *RedisConfirmationStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Unlink(ctx, confirmationKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete confirmation: %w", err)
	}
	return nil
}

// RedisLocker serializes work on a session across replicas with a redsync mutex.
type RedisLocker struct {
	rs  *redsync.Redsync
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisLocker builds a locker whose locks expire after ttl if the holder dies.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
		log: log.With().Str("component", "session-lock").Logger(),
	}
}

// Lock blocks until the session lock is held or ctx ends.
func (l *RedisLocker) Lock(ctx context.Context, sessionID string) (func(), error) {
	mutex := l.rs.NewMutex(lockKey(sessionID),
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(64),
		redsync.WithRetryDelay(100*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("lock session %s: %w", sessionID, err)
	}
	return func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			l.log.Error().Err(err).Str("session_id", sessionID).Msg("failed to unlock session")
		}
	}, nil
}
