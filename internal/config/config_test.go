package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pm-assistant", cfg.ServiceName)
	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, LLMProviderHTTP, cfg.LLMProvider)
	assert.Equal(t, 15*time.Minute, cfg.ConfirmationTTL)
	assert.Greater(t, cfg.SessionLockTTL, cfg.TurnTimeout)
	assert.Equal(t, ":8090", cfg.Addr())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "auth without issuer",
			env:  map[string]string{"AUTH_ENABLED": "true", "AUTH_JWKS_URL": "http://jwks"},
		},
		{
			name: "unknown storage backend",
			env:  map[string]string{"STORAGE_BACKEND": "firestore"},
		},
		{
			name: "openai provider without key",
			env:  map[string]string{"LLM_PROVIDER": "openai"},
		},
		{
			name: "unknown provider",
			env:  map[string]string{"LLM_PROVIDER": "carrier-pigeon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadNormalizesNonPositiveDurations(t *testing.T) {
	t.Setenv("TURN_TIMEOUT", "0s")
	t.Setenv("CONFIRMATION_TTL", "-1s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.TurnTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ConfirmationTTL)
}

func TestLoadSessionLockOutlivesTurn(t *testing.T) {
	tests := []struct {
		name    string
		turn    string
		lock    string
		wantTTL time.Duration
	}{
		{name: "equal to turn", turn: "120s", lock: "2m", wantTTL: 150 * time.Second},
		{name: "shorter than turn", turn: "5m", lock: "1m", wantTTL: 5*time.Minute + SessionLockMargin},
		{name: "unset", turn: "60s", lock: "0s", wantTTL: 90 * time.Second},
		{name: "already long enough", turn: "60s", lock: "10m", wantTTL: 10 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TURN_TIMEOUT", tt.turn)
			t.Setenv("SESSION_LOCK_TTL", tt.lock)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantTTL, cfg.SessionLockTTL)
		})
	}
}
