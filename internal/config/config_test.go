package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5005", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, time.Minute, cfg.TaskInterval)
	assert.Equal(t, "noreply@movieplatform.com", cfg.MailFrom)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
	assert.Empty(t, cfg.AllowedHosts)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TASK_INTERVAL_MINUTES", "15")
	t.Setenv("ALLOWED_HOSTS", "example.com, api.example.com ,")
	t.Setenv("DB_NAME", "catalog")

	cfg := Load()

	assert.Equal(t, 15*time.Minute, cfg.TaskInterval)
	assert.Equal(t, []string{"example.com", "api.example.com"}, cfg.AllowedHosts)
	assert.Contains(t, cfg.DatabaseURL, "/catalog?")
}
