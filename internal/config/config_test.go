package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, WordBounds{Min: 10, Max: 5000}, cfg.Routes.Memo)
	assert.Equal(t, WordBounds{Min: 1, Max: 2000}, cfg.Routes.Upload)
	assert.Equal(t, "memory", cfg.Chat.Store)
	assert.False(t, cfg.Postgres.Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BEARER_TOKEN", "secret")
	t.Setenv("MEMO_MIN_WORDS", "1")
	t.Setenv("MEMO_MAX_WORDS", "20")
	t.Setenv("CHAT_SESSION_TTL", "15m")
	t.Setenv("CHAT_MAX_SESSIONS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, WordBounds{Min: 1, Max: 20}, cfg.Routes.Memo)
	assert.Equal(t, 15*time.Minute, cfg.Chat.SessionTTL)
	assert.Equal(t, 1000, cfg.Chat.MaxSessions)
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	t.Setenv("REVIEW_MIN_WORDS", "100")
	t.Setenv("REVIEW_MAX_WORDS", "10")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Max")
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	t.Setenv("CHAT_STORE", "memcached")

	require.Error(t, Load().Validate())
}

func TestPostgresURL(t *testing.T) {
	p := PostgresConfig{User: "frodi", Password: "pw", Server: "db", DB: "memos"}

	assert.True(t, p.Enabled())
	assert.Equal(t, "postgresql://frodi:pw@db:5432/memos", p.URL())
}
