package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SESSION_SECRET", "JWT_SECRET", "SESSION_TTL",
		"REMEMBER_TTL", "POSTS_PER_PAGE", "DEFAULT_AVATAR", "RESET_DB",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "change-me", cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL)
	assert.Equal(t, 5, cfg.PostsPerPage)
	assert.Equal(t, "default.jpg", cfg.DefaultAvatar)
	assert.False(t, cfg.ResetDB)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REMEMBER_TTL", "not-a-duration")
	t.Setenv("POSTS_PER_PAGE", "10")
	t.Setenv("RESET_DB", "true")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, "legacy-secret", cfg.SessionSecret)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL, "invalid duration falls back to default")
	assert.Equal(t, 10, cfg.PostsPerPage)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.ResetDB)
}

func TestLoad_SessionSecretWins(t *testing.T) {
	t.Setenv("SESSION_SECRET", "primary")
	t.Setenv("JWT_SECRET", "legacy")

	assert.Equal(t, "primary", Load().SessionSecret)
}
