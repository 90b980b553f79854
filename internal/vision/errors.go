package vision

import (
	"fmt"
	"strconv"
	"time"

	"ledgerlens/internal/domain"
)

// RateLimitError indicates a vision provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ResponseParseError indicates the model answered but its output could not
// be decoded into a structured document. RawText and Usage are preserved so
// callers can log the response and still account for the tokens spent.
type ResponseParseError struct {
	Provider string
	RawText  string
	Usage    *domain.TokenUsage
	Err      error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse model response as JSON: %v", e.Provider, e.Err)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Err
}
