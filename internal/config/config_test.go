package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ops")
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("AUTOSAVE_DEBOUNCE", "")
	t.Setenv("DEBUG", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 2*time.Second, cfg.AutosaveDebounce)
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ops")
	t.Setenv("ALLOWED_ORIGINS", "https://dash.example.com, http://localhost:3000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("AUTOSAVE_DEBOUNCE", "3s")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://dash.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 3*time.Second, cfg.AutosaveDebounce)
	assert.True(t, cfg.Debug)
}

func TestLoadConfig_BadIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ops")
	t.Setenv("WORKER_COUNT", "many")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerCount)
}

func TestLoadConfig_BadDebounce(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/ops")
	t.Setenv("AUTOSAVE_DEBOUNCE", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}
