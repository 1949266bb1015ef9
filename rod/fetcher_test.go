//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/linksep"
	"github.com/fwojciec/linksep/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ linksep.Fetcher = (*rod.Fetcher)(nil)

// newPageServer serves body as text/html after delay.
func newPageServer(t *testing.T, delay time.Duration, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, opts ...rod.Option) *rod.Fetcher {
	t.Helper()
	fetcher, err := rod.NewFetcher(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	fetcher := newFetcher(t)

	t.Run("returns links added by script", func(t *testing.T) {
		t.Parallel()

		srv := newPageServer(t, 0, `<!DOCTYPE html>
<html><body>
<ul id="links"></ul>
<script>
const a = document.createElement('a');
a.href = '/wiki/Kevin_Bacon';
a.textContent = 'Kevin Bacon';
document.getElementById('links').appendChild(a);
</script>
</body></html>`)

		html, err := fetcher.Fetch(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, `href="/wiki/Kevin_Bacon"`)
	})

	t.Run("honors canceled context", func(t *testing.T) {
		t.Parallel()

		srv := newPageServer(t, time.Hour, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, srv.URL)

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()

		_, err := fetcher.Fetch(context.Background(), "file:///etc/hosts")

		assert.Equal(t, linksep.EINVALID, linksep.ErrorCode(err))
	})
}

func TestFetcher_Fetch_FetchTimeout(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, 500*time.Millisecond, `<html><body>late</body></html>`)
	fetcher := newFetcher(t, rod.WithFetchTimeout(100*time.Millisecond))

	_, err := fetcher.Fetch(context.Background(), srv.URL)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Fetch_ConcurrentAcrossRecycles(t *testing.T) {
	t.Parallel()

	srv := newPageServer(t, 0, `<html><body><a href="/wiki/A">A</a></body></html>`)
	fetcher := newFetcher(t, rod.WithRecycleAfter(2))

	errs := make(chan error, 6)
	for range 6 {
		go func() {
			_, err := fetcher.Fetch(context.Background(), srv.URL)
			errs <- err
		}()
	}
	for range 6 {
		assert.NoError(t, <-errs)
	}
}

func TestFetcher_Close(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)

	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close(), "second Close is a no-op")

	_, err = fetcher.Fetch(context.Background(), "https://en.wikipedia.org/wiki/Go")
	assert.Equal(t, linksep.EINVALID, linksep.ErrorCode(err))
	assert.Contains(t, linksep.ErrorMessage(err), "closed")
}
