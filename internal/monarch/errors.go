package monarch

import "fmt"

// StatusNetworkError is the synthetic status assigned to failures that never
// produced an HTTP response (connection refused, timeouts, DNS errors).
const StatusNetworkError = 599

// HTTPError describes a failed upstream request.
type HTTPError struct {
	// Status is the HTTP status code, or StatusNetworkError when the
	// failure happened below the HTTP layer.
	Status int
	// URL is the full request URL, including query parameters.
	URL string
	// Detail is a short excerpt of the response body or the underlying
	// error, capped at 300 characters.
	Detail string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d on %s: %s", e.Status, e.URL, e.Detail)
}

// retryable reports whether a failure with the given status is worth another
// attempt: rate limiting, the transient 5xx family, and network-level
// failures. Everything else, notably the rest of the 4xx family, fails on
// the first attempt.
func retryable(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504, StatusNetworkError:
		return true
	}
	return false
}
