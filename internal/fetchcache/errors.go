package fetchcache

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError is returned when the upstream call exceeds its time bound
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream request to %s timed out after %s", e.URL, e.Timeout)
}

// RateLimitError is returned on HTTP 429. RetryAfter is zero when the
// provider did not advertise one.
type RateLimitError struct {
	URL        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream rate limited %s, retry after %s", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("upstream rate limited %s", e.URL)
}

// HTTPError is returned for any other non-2xx status
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream request to %s failed with status %d", e.URL, e.StatusCode)
}

// ValidationError is returned when a 2xx body is absent, null or not of the
// expected shape. Such bodies are never cached.
type ValidationError struct {
	URL    string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upstream response from %s: %v", e.URL, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// NetworkError wraps a transport failure other than a timeout
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Error kinds used as metric labels
const (
	KindNone        = "none"
	KindTimeout     = "timeout"
	KindRateLimited = "rate_limited"
	KindHTTP        = "http_error"
	KindValidation  = "validation"
	KindNetwork     = "network_error"
	KindUnknown     = "unknown_error"
)

// ErrorKind maps an error to a bounded label for metrics and logs
func ErrorKind(err error) string {
	if err == nil {
		return KindNone
	}

	var (
		timeoutErr    *TimeoutError
		rateLimitErr  *RateLimitError
		httpErr       *HTTPError
		validationErr *ValidationError
		networkErr    *NetworkError
	)

	switch {
	case errors.As(err, &timeoutErr):
		return KindTimeout
	case errors.As(err, &rateLimitErr):
		return KindRateLimited
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &networkErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}
