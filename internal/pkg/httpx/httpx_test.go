package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string       { return fmt.Sprintf("http %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func TestIsRetryableHTTPStatus(t *testing.T) {
	require.True(t, IsRetryableHTTPStatus(408))
	require.True(t, IsRetryableHTTPStatus(429))
	require.True(t, IsRetryableHTTPStatus(500))
	require.True(t, IsRetryableHTTPStatus(503))
	require.False(t, IsRetryableHTTPStatus(400))
	require.False(t, IsRetryableHTTPStatus(404))
	require.False(t, IsRetryableHTTPStatus(200))
}

func TestIsRetryableError(t *testing.T) {
	require.False(t, IsRetryableError(nil))
	require.False(t, IsRetryableError(errors.New("boring")))
	require.False(t, IsRetryableError(context.Canceled))
	require.True(t, IsRetryableError(context.DeadlineExceeded))
	require.True(t, IsRetryableError(&statusErr{code: 429}))
	require.False(t, IsRetryableError(&statusErr{code: 401}))
}

func TestRetryAfterDuration(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	require.Equal(t, 3*time.Second, RetryAfterDuration(resp, time.Second, 10*time.Second))

	resp.Header.Set("Retry-After", "120")
	require.Equal(t, 10*time.Second, RetryAfterDuration(resp, time.Second, 10*time.Second))

	require.Equal(t, time.Second, RetryAfterDuration(nil, time.Second, 10*time.Second))
}

func TestJitterSleepBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := JitterSleep(time.Second)
		require.GreaterOrEqual(t, d, 800*time.Millisecond)
		require.LessOrEqual(t, d, 1200*time.Millisecond)
	}
	require.Equal(t, time.Duration(0), JitterSleep(0))
}
