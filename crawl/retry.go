package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/linksep"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// RetryFunc is called before each retry attempt with the attempt number
// about to start (2 for the first retry) and the error that caused it.
type RetryFunc func(url string, attempt int, err error)

// RetryDelays returns n exponential backoff delays starting at 1s: 1s, 2s, 4s, ...
func RetryDelays(n int) []time.Duration {
	delays := make([]time.Duration, 0, max(n, 0))
	d := time.Second
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d *= 2
	}
	return delays
}

// FetchWithRetry fetches a URL, retrying once per entry in delays after
// waiting that long. With no delays it makes a single attempt. Errors
// coded EINVALID, such as an unsupported scheme, are never retried.
// The onRetry callback, if provided, is called before each retry.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, delays []time.Duration, onRetry RetryFunc) (string, error) {
	html, err := fetch(ctx, url)
	for i, delay := range delays {
		if err == nil || linksep.ErrorCode(err) == linksep.EINVALID {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if onRetry != nil {
			onRetry(url, i+2, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}

		html, err = fetch(ctx, url)
	}
	if err != nil {
		return "", err
	}
	return html, nil
}
