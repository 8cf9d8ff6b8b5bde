package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docbase"
	"github.com/fwojciec/docbase/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noDelays() []time.Duration {
	return []time.Duration{0, 0, 0}
}

func TestFetchWithRetryDelays_succeeds_after_transient_failure(t *testing.T) {
	t.Parallel()

	attempts := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("connection reset")
		}
		return "<html>ok</html>", nil
	}

	html, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays())

	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, 3, attempts)
}

func TestFetchWithRetryDelays_returns_last_error_when_exhausted(t *testing.T) {
	t.Parallel()

	attempts := 0
	fetch := func(ctx context.Context, url string) (string, error) {
		attempts++
		return "", errors.New("server error")
	}

	_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays())

	require.Error(t, err)
	assert.Equal(t, 4, attempts, "1 initial + 3 retries")
}

func TestFetchWithRetryDelays_does_not_retry_auth_or_missing_pages(t *testing.T) {
	t.Parallel()

	for _, code := range []string{docbase.EUNAUTHORIZED, docbase.ENOTFOUND} {
		attempts := 0
		fetch := func(ctx context.Context, url string) (string, error) {
			attempts++
			return "", docbase.Errorf(code, "rejected")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://example.com", fetch, nil, noDelays())

		assert.Equal(t, code, docbase.ErrorCode(err))
		assert.Equal(t, 1, attempts, "code %s should not be retried", code)
	}
}

func TestFetchWithRetryDelays_stops_on_cancelled_context(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(ctx context.Context, url string) (string, error) {
		cancel()
		return "", errors.New("failed")
	}

	_, err := crawl.FetchWithRetryDelays(ctx, "https://example.com", fetch, nil, noDelays())
	assert.ErrorIs(t, err, context.Canceled)
}
