package monarch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/longevity-genie/biolink-mcp-go/internal/metrics"
)

// Transport issues JSON GET requests against the API with linear-backoff
// retries. The underlying http.Client is created lazily and recreated
// transparently after Close, so a Transport stays usable for its whole
// lifetime.
type Transport struct {
	base    string // normalized to end with "/"
	timeout time.Duration
	retries int
	backoff time.Duration

	mu     sync.Mutex
	client *http.Client
}

// NewTransport builds a Transport from cfg. Zero or missing fields fall back
// to the package defaults; a nil cfg yields a transport against the public
// API.
func NewTransport(cfg *Config) *Transport {
	t := &Transport{
		base:    DefaultBaseURL,
		timeout: defaultTimeout,
		retries: defaultRetries,
		backoff: defaultBackoff,
	}
	if cfg != nil {
		if cfg.BaseURL != "" {
			t.base = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			t.timeout = cfg.Timeout
		}
		if cfg.Retries > 0 {
			t.retries = cfg.Retries
		}
		if cfg.Backoff > 0 {
			t.backoff = cfg.Backoff
		}
	}
	if !strings.HasSuffix(t.base, "/") {
		t.base += "/"
	}
	return t
}

// ensureClient returns the HTTP client, creating it if absent or closed.
func (t *Transport) ensureClient() *http.Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		t.client = &http.Client{Timeout: t.timeout}
	}
	return t.client
}

// Close releases the underlying HTTP client and its idle connections. Close
// is idempotent; a later Get transparently recreates the client.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		t.client.CloseIdleConnections()
		t.client = nil
	}
	return nil
}

// resolve joins path onto the base URL. Absolute http(s) URLs pass through
// untouched so callers can follow links the API hands back.
func (t *Transport) resolve(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return t.base + strings.TrimPrefix(path, "/")
}

// Get issues a GET against base+path and decodes the JSON object body.
//
// Status 429, the transient 5xx family, and network-level errors are retried
// up to the configured attempt count with a linear backoff (attempt number
// times the backoff base). Any other non-2xx status fails immediately with
// an *HTTPError. A 2xx response with an empty body decodes to an empty map;
// a 2xx body that is not a JSON object comes back as {"raw": <body text>}.
func (t *Transport) Get(ctx context.Context, path string, params url.Values) (map[string]any, error) {
	target := t.resolve(path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	requestID := uuid.NewString()
	done := metrics.TimeRequest(requestOp(path))

	var lastErr *HTTPError
	for attempt := 1; attempt <= t.retries; attempt++ {
		slog.Debug("api GET", "url", target, "attempt", attempt, "request_id", requestID)
		page, failure, err := t.attempt(ctx, target, requestID)
		if err != nil {
			done(false)
			return nil, err
		}
		if failure == nil {
			done(true)
			return page, nil
		}
		if !retryable(failure.Status) {
			done(false)
			return nil, failure
		}
		lastErr = failure
		slog.Warn("retryable api failure",
			"url", target,
			"status", failure.Status,
			"attempt", attempt,
			"retries", t.retries,
			"request_id", requestID)
		if attempt < t.retries {
			if err := sleep(ctx, time.Duration(attempt)*t.backoff); err != nil {
				done(false)
				return nil, err
			}
		}
	}
	done(false)
	return nil, lastErr
}

// attempt performs one request. It reports HTTP-level failures through the
// second return value so the caller can decide on retries; the error return
// is reserved for request construction and context cancellation.
func (t *Transport) attempt(ctx context.Context, target, requestID string) (map[string]any, *HTTPError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := t.ensureClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, &HTTPError{Status: StatusNetworkError, URL: target, Detail: fmt.Sprintf("%T: %v", err, err)}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, &HTTPError{Status: StatusNetworkError, URL: target, Detail: fmt.Sprintf("%T: %v", err, err)}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, URL: target, Detail: snippet(body)}, nil
	}

	if len(body) == 0 {
		return map[string]any{}, nil, nil
	}
	var page map[string]any
	if err := json.Unmarshal(body, &page); err != nil {
		slog.Warn("non-JSON response body", "url", target, "request_id", requestID)
		return map[string]any{"raw": string(body)}, nil, nil
	}
	return page, nil, nil
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// snippet trims an error body down to a loggable excerpt of at most 300
// characters. The cut counts runes, not bytes, so a multibyte character
// is never split.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if utf8.RuneCountInString(s) <= 300 {
		return s
	}
	return string([]rune(s)[:300])
}

// requestOp derives a low-cardinality metrics label from the request path:
// the first path segment for relative paths ("entity", "search").
func requestOp(path string) string {
	if strings.HasPrefix(path, "http") {
		return "absolute"
	}
	op := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(op, '/'); i >= 0 {
		op = op[:i]
	}
	if op == "" {
		return "root"
	}
	return op
}

// escapePathSegment percent-encodes a value for use as a single URL path
// segment. Unlike url.PathEscape it also encodes reserved characters such as
// the ":" every CURIE contains.
func escapePathSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
