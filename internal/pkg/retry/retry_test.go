package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func TestDelayDoublesAndCaps(t *testing.T) {
	p := Policy{MaxAttempts: 5, BaseDelay: 1 * time.Second, MaxDelay: 5 * time.Second}

	require.Equal(t, 1*time.Second, p.Delay(0))
	require.Equal(t, 2*time.Second, p.Delay(1))
	require.Equal(t, 4*time.Second, p.Delay(2))
	require.Equal(t, 5*time.Second, p.Delay(3))
	require.Equal(t, 5*time.Second, p.Delay(10))
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep}

	calls := 0
	fatal := errors.New("fatal")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	}, func(err error) bool { return false })

	require.ErrorIs(t, err, fatal)
	require.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep}

	calls := 0
	transient := errors.New("transient")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	}, nil)

	require.ErrorIs(t, err, transient)
	require.Equal(t, 4, calls)
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: noSleep}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

type hintedErr struct{ hint time.Duration }

func (e *hintedErr) Error() string                 { return "rate limited" }
func (e *hintedErr) RetryDelayHint() time.Duration { return e.hint }

func TestDoHonorsDelayHint(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    10 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &hintedErr{hint: 7 * time.Second}
		}
		return nil
	}, nil)

	require.NoError(t, err)
	require.Equal(t, []time.Duration{7 * time.Second}, slept)
}

func TestDoCapsDelayHintAtMaxDelay(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	_ = p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &hintedErr{hint: time.Minute}
		}
		return nil
	}, nil)

	require.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestDoJittersBackoff(t *testing.T) {
	var slept []time.Duration
	p := Policy{
		MaxAttempts: 1,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	require.Len(t, slept, 1)
	require.GreaterOrEqual(t, slept[0], 800*time.Millisecond)
	require.LessOrEqual(t, slept[0], 1200*time.Millisecond)
}

func TestDoHonorsCancellation(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, func(ctx context.Context) error { return errors.New("never") }, nil)
	require.ErrorIs(t, err, context.Canceled)
}
