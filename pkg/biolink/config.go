package biolink

import (
	"time"

	"github.com/longevity-genie/biolink-mcp-go/internal/monarch"
)

// Config exposes a stable wrapper for API client configuration in package
// mode. Fields map directly to the internal client configuration; zero
// values fall back to the public API defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

func (c *Config) toInternal() *monarch.Config {
	return &monarch.Config{
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		Retries: c.Retries,
		Backoff: c.Backoff,
	}
}
