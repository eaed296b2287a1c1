package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 20, cfg.FreeTierLimit)
	assert.Equal(t, time.Duration(0), cfg.JWTExpiration)
	assert.Equal(t, "", cfg.NATSURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FREE_TIER_LIMIT", "5")
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("TRACING_ENABLED", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5, cfg.FreeTierLimit)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.True(t, cfg.TracingEnabled)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("FREE_TIER_LIMIT", "not-a-number")
	t.Setenv("JWT_EXPIRATION", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 20, cfg.FreeTierLimit)
	assert.Equal(t, time.Duration(0), cfg.JWTExpiration)
	assert.False(t, cfg.TracingEnabled)
}
