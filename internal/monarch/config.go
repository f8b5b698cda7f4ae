package monarch

import (
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Monarch Initiative API root.
const DefaultBaseURL = "https://api-v3.monarchinitiative.org/v3/api/"

const (
	defaultTimeout = 30 * time.Second
	defaultRetries = 3
	defaultBackoff = 750 * time.Millisecond
)

// Config holds upstream API connection settings.
type Config struct {
	// BaseURL is the API root. A trailing slash is ensured by the transport.
	BaseURL string
	// Timeout bounds each individual HTTP request.
	Timeout time.Duration
	// Retries is the total number of attempts for retryable failures.
	Retries int
	// Backoff is the base of the linear retry delay (attempt * backoff).
	Backoff time.Duration
}

// NewConfig creates a configuration from environment variables, falling back
// to the public API defaults.
func NewConfig() *Config {
	cfg := &Config{
		BaseURL: DefaultBaseURL,
		Timeout: defaultTimeout,
		Retries: defaultRetries,
		Backoff: defaultBackoff,
	}
	if v := os.Getenv("BIOLINK_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if d, ok := durationFromEnv("BIOLINK_HTTP_TIMEOUT"); ok {
		cfg.Timeout = d
	}
	if v := os.Getenv("BIOLINK_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retries = n
		}
	}
	if d, ok := durationFromEnv("BIOLINK_BACKOFF"); ok {
		cfg.Backoff = d
	}
	return cfg
}

// durationFromEnv reads a duration env var, accepting Go duration syntax
// ("45s", "750ms") or a bare number of seconds ("45").
func durationFromEnv(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d, true
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}
