package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/linksep"
	linksephttp "github.com/fwojciec/linksep/http"
	"github.com/fwojciec/linksep/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func foundSearcher(hops int) *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(_ context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
			return &linksep.Result{Hops: hops, Outcome: linksep.OutcomeFound}, nil
		},
	}
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s := linksephttp.NewServer(foundSearcher(1))

	rec := get(t, s, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestServer_LinkSeparation(t *testing.T) {
	t.Parallel()

	t.Run("returns hop count as text", func(t *testing.T) {
		t.Parallel()

		var got linksep.SearchRequest
		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req linksep.SearchRequest) (*linksep.Result, error) {
				got = req
				return &linksep.Result{Hops: 3, Outcome: linksep.OutcomeFound}, nil
			},
		}
		s := linksephttp.NewServer(searcher)

		rec := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go&depthLimit=4&batchLimit=2")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Body.String())
		assert.Equal(t, linksep.SearchRequest{
			StartURL:   "https://en.wikipedia.org/wiki/Go",
			DepthLimit: 4,
			BatchLimit: 2,
		}, got)
	})

	t.Run("returns -1 when not found", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
				return &linksep.Result{Hops: linksep.NotFound, Outcome: linksep.OutcomeExhausted}, nil
			},
		}
		s := linksephttp.NewServer(searcher)

		rec := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "-1", rec.Body.String())
	})

	t.Run("leaves absent limits unset", func(t *testing.T) {
		t.Parallel()

		var got linksep.SearchRequest
		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, req linksep.SearchRequest) (*linksep.Result, error) {
				got = req
				return &linksep.Result{Hops: 1, Outcome: linksep.OutcomeFound}, nil
			},
		}
		s := linksephttp.NewServer(searcher)

		get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")

		assert.Zero(t, got.DepthLimit)
		assert.Zero(t, got.BatchLimit)
	})

	badRequests := []string{
		"/api/get-link-separation",
		"/api/get-link-separation?url=",
		"/api/get-link-separation?url=http:://www.com",
		"/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go&depthLimit=0",
		"/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go&depthLimit=-2",
		"/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go&batchLimit=ten",
	}
	for _, target := range badRequests {
		t.Run("rejects "+target, func(t *testing.T) {
			t.Parallel()

			searcher := &mock.Searcher{
				SearchFn: func(_ context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
					t.Fatal("searcher must not run for invalid input")
					return nil, nil
				},
			}
			s := linksephttp.NewServer(searcher)

			rec := get(t, s, target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Bad request", rec.Body.String())
		})
	}

	t.Run("maps searcher validation errors to 400", func(t *testing.T) {
		t.Parallel()

		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
				return nil, linksep.Errorf(linksep.EINVALID, "nope")
			},
		}
		s := linksephttp.NewServer(searcher)

		rec := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reports not found when the search times out", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		searcher := &mock.Searcher{
			SearchFn: func(ctx context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		s := linksephttp.NewServer(searcher,
			linksephttp.WithSearchTimeout(10*time.Millisecond),
			linksephttp.WithLogger(logger),
		)

		rec := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "-1", rec.Body.String())
		assert.Contains(t, buf.String(), "search timed out")
	})

	t.Run("maps unexpected errors to 500 and logs them", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, _ linksep.SearchRequest) (*linksep.Result, error) {
				return nil, errors.New("database on fire")
			},
		}
		s := linksephttp.NewServer(searcher, linksephttp.WithLogger(logger))

		rec := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal error", rec.Body.String())
		assert.Contains(t, buf.String(), "database on fire")
	})
}

func TestServer_RateLimit(t *testing.T) {
	t.Parallel()

	s := linksephttp.NewServer(foundSearcher(1), linksephttp.WithRateLimit(0.001, 1))

	first := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")
	second := get(t, s, "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")
	health := get(t, s, "/api/health")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, http.StatusOK, health.Code, "health is never rate limited")
}

func TestServer_NoRoute(t *testing.T) {
	t.Parallel()

	s := linksephttp.NewServer(foundSearcher(1))

	t.Run("unknown path", func(t *testing.T) {
		t.Parallel()

		rec := get(t, s, "/nope")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bad request", rec.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_logs_requests(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := linksephttp.NewServer(foundSearcher(1), linksephttp.WithLogger(logger))

	get(t, s, "/api/health")

	output := buf.String()
	assert.Contains(t, output, "method=GET")
	assert.Contains(t, output, "path=/api/health")
	assert.Contains(t, output, "status=200")
	assert.Contains(t, output, "duration=")
}

func TestServer_OpenClose(t *testing.T) {
	t.Parallel()

	s := linksephttp.NewServer(foundSearcher(2))
	s.Addr = "127.0.0.1:0"
	require.NoError(t, s.Open())

	resp, err := http.Get(s.URL() + "/api/get-link-separation?url=https://en.wikipedia.org/wiki/Go")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", string(body))
	require.NoError(t, s.Close())
}
