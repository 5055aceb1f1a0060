package retry

import (
	"context"
	"errors"
	"time"

	"github.com/courseatlas/courseatlas-backend/internal/pkg/httpx"
)

// Policy describes a bounded exponential backoff schedule. The zero value is
// not usable; construct with DefaultPolicy or fill every field.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Sleep is swappable for tests. Defaults to a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Delay returns the backoff before the given retry (attempt is 0-based, so
// Delay(0) is the wait after the first failure). The base delay doubles per
// attempt and is capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// DelayHinter is implemented by errors that carry a server-provided wait,
// such as an HTTP Retry-After header.
type DelayHinter interface {
	RetryDelayHint() time.Duration
}

// Do runs fn up to MaxAttempts+1 times, waiting a jittered Delay(attempt)
// between tries. An error implementing DelayHinter overrides the backoff with
// its hint, capped at MaxDelay. retryable decides whether a given failure is
// worth another attempt; a nil retryable retries everything. The last error
// is returned when attempts are exhausted. Context cancellation aborts the
// wait and wins over the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, retryable func(error) bool) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var last error
	for attempt := 0; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if retryable != nil && !retryable(last) {
			return last
		}
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.wait(attempt, last)); err != nil {
			return err
		}
	}
	return last
}

func (p Policy) wait(attempt int, last error) time.Duration {
	var h DelayHinter
	if errors.As(last, &h) {
		if hint := h.RetryDelayHint(); hint > 0 {
			if p.MaxDelay > 0 && hint > p.MaxDelay {
				return p.MaxDelay
			}
			return hint
		}
	}
	return httpx.JitterSleep(p.Delay(attempt))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
