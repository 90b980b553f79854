package vision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ledgerlens/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackInvoker tries providers in order, skipping those with open circuits.
// It implements port.VisionInvoker.
//
// A ResponseParseError is returned as-is without trying the next provider:
// the model answered, it just produced output that is not valid JSON, and the
// caller needs the raw text and token usage from that attempt.
type FallbackInvoker struct {
	invokers []port.VisionInvoker
	circuits []*circuitState
	names    []string
}

// NewFallbackInvoker creates a FallbackInvoker from an ordered list of invokers and their names.
func NewFallbackInvoker(invokers []port.VisionInvoker, names []string) *FallbackInvoker {
	circuits := make([]*circuitState, len(invokers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackInvoker{
		invokers: invokers,
		circuits: circuits,
		names:    names,
	}
}

func (f *FallbackInvoker) Invoke(ctx context.Context, input port.InvokeInput) (*port.InvokeOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, inv := range f.invokers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Printf("vision.FallbackInvoker: skipping %s (circuit open until %s)", f.names[i], resetAt.Format(time.RFC3339))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := inv.Invoke(ctx, input)
		if err == nil {
			return out, nil
		}

		var parseErr *ResponseParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}

		log.Printf("vision.FallbackInvoker: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil {
		// All providers were skipped due to open circuits
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	if allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < 0 {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
