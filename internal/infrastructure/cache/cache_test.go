package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/pm-assistant/internal/domain/confirmation"
)

func TestMemoryConfirmationStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryConfirmationStore(2)
	require.NoError(t, err)

	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	rec := &confirmation.Record{Token: "cfm_1", SessionID: "s1", ToolName: "assign_task_to_employee", State: confirmation.StatePending}
	require.NoError(t, store.Put(ctx, rec, time.Minute))

	rec.State = confirmation.StateAccepted
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, confirmation.StatePending, got.State)
	assert.Equal(t, "cfm_1", got.Token)

	now = now.Add(2 * time.Minute)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	missing, err := store.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryConfirmationStore_EvictsLeastRecent(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemoryConfirmationStore(2)
	require.NoError(t, err)

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, store.Put(ctx, &confirmation.Record{SessionID: id}, 0))
	}

	evicted, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, evicted)

	kept, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	require.NoError(t, store.Delete(ctx, "s3"))
	gone, err := store.Get(ctx, "s3")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestLocalLocker_SerializesSession(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "s1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.slots)
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalLocker()
	unlock, err := locker.Lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locker.Lock(context.Background(), "s2")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	assert.Empty(t, locker.slots)
}

func TestBuildUniversalOptions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		addrs   []string
		db      int
		wantErr bool
	}{
		{name: "url", raw: "redis://:secret@cache:6379/2", addrs: []string{"cache:6379"}, db: 2},
		{name: "cluster list", raw: "redis://a:6379, b:6380", addrs: []string{"a:6379", "b:6380"}},
		{name: "empty", raw: " , ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := buildUniversalOptions(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addrs, opts.Addrs)
			assert.Equal(t, tt.db, opts.DB)
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pm:v1:confirmation:s1", confirmationKey("s1"))
	assert.Equal(t, "pm:v1:lock:s1", lockKey("s1"))
}
