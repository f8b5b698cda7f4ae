package monarch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("BIOLINK_BASE_URL", "")
	t.Setenv("BIOLINK_HTTP_TIMEOUT", "")
	t.Setenv("BIOLINK_RETRIES", "")
	t.Setenv("BIOLINK_BACKOFF", "")

	cfg := NewConfig()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 750*time.Millisecond, cfg.Backoff)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("BIOLINK_BASE_URL", "http://localhost:8000/v3/api/")
	t.Setenv("BIOLINK_HTTP_TIMEOUT", "45")
	t.Setenv("BIOLINK_RETRIES", "5")
	t.Setenv("BIOLINK_BACKOFF", "250ms")

	cfg := NewConfig()
	assert.Equal(t, "http://localhost:8000/v3/api/", cfg.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.Timeout, "a bare number reads as seconds")
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Backoff)
}

func TestNewConfigIgnoresInvalidValues(t *testing.T) {
	t.Setenv("BIOLINK_BASE_URL", "")
	t.Setenv("BIOLINK_HTTP_TIMEOUT", "soon")
	t.Setenv("BIOLINK_RETRIES", "-2")
	t.Setenv("BIOLINK_BACKOFF", "0")

	cfg := NewConfig()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.Retries)
	assert.Equal(t, 750*time.Millisecond, cfg.Backoff)
}

func TestDurationFromEnvSyntax(t *testing.T) {
	t.Setenv("TEST_DURATION", "2s")
	d, ok := durationFromEnv("TEST_DURATION")
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, d)

	t.Setenv("TEST_DURATION", "90")
	d, ok = durationFromEnv("TEST_DURATION")
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	t.Setenv("TEST_DURATION", "")
	_, ok = durationFromEnv("TEST_DURATION")
	assert.False(t, ok)
}
