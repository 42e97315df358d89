package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173")
	t.Setenv("ADDR", "")
	t.Setenv("REAP_GRACE", "")
	t.Setenv("PACE_DELAY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.ReapGrace)
	assert.Equal(t, time.Duration(0), cfg.PaceDelay)
	assert.False(t, cfg.MusicEnabled())
}

func TestLoad_MissingOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ALLOWED_ORIGINS")
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ADDR", ":8080")
	t.Setenv("REAP_GRACE", "5m")
	t.Setenv("PACE_DELAY", "500ms")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.ReapGrace)
	assert.Equal(t, 500*time.Millisecond, cfg.PaceDelay)
	assert.True(t, cfg.MusicEnabled())
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173")
	t.Setenv("REAP_GRACE", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "REAP_GRACE")
}
