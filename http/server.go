package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/linksep"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server defaults.
const (
	DefaultSearchTimeout = 2 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

// Server exposes link-separation searches over HTTP.
//
//	GET /api/health                  liveness probe
//	GET /api/get-link-separation     ?url=&depthLimit=&batchLimit=
type Server struct {
	ln     net.Listener
	server *http.Server
	router chi.Router

	searcher      linksep.Searcher
	logger        *slog.Logger
	limiter       *ClientLimiter
	searchTimeout time.Duration

	// Addr is the bind address, e.g. "localhost:1234". Set before calling Open().
	Addr string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSearchTimeout bounds the duration of a single search.
func WithSearchTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.searchTimeout = d
	}
}

// WithRateLimit limits searches to rps per second per client address.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = NewClientLimiter(rps, burst)
	}
}

// NewServer returns a new Server that runs searches with searcher.
func NewServer(searcher linksep.Searcher, opts ...ServerOption) *Server {
	s := &Server{
		searcher:      searcher,
		logger:        slog.New(slog.DiscardHandler),
		searchTimeout: DefaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequest)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.With(s.rateLimit).Get("/api/get-link-separation", s.handleLinkSeparation)

	r.NotFound(s.handleNoRoute)
	r.MethodNotAllowed(s.handleNoRoute)

	s.router = r
	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Open begins listening on Addr and serves requests in the background.
func (s *Server) Open() (err error) {
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", "err", err)
		}
	}()
	return nil
}

// Close gracefully shuts down the server, waiting for in-flight searches.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// ServeHTTP routes the request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Healthy")
}

func (s *Server) handleLinkSeparation(w http.ResponseWriter, r *http.Request) {
	req, err := parseSearchRequest(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout)
	defer cancel()

	result, err := s.searcher.Search(ctx, req)
	if errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil {
		// Budget spent without reaching the target.
		s.logger.Warn("search timed out",
			"url", req.StartURL,
			"timeout", s.searchTimeout,
		)
		writeText(w, http.StatusOK, strconv.Itoa(linksep.NotFound))
		return
	}
	if err != nil {
		s.Error(w, r, err)
		return
	}

	writeText(w, http.StatusOK, result.String())
}

func (s *Server) handleNoRoute(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusNotFound, "Bad request")
}

// Error writes err to w with a status code derived from its error code.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := linksep.ErrorCode(err), "Internal error"
	status := http.StatusInternalServerError

	switch {
	case code == linksep.EINVALID:
		status, message = http.StatusBadRequest, "Bad request"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Search timed out"
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening.
		status = 499
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("http error",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"err", err,
		)
	} else {
		s.logger.Info("rejected request",
			"path", r.URL.Path,
			"status", status,
			"reason", linksep.ErrorMessage(err),
		)
	}

	writeText(w, status, message)
}

// rateLimit rejects requests from clients over their budget.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(clientKey(r)) {
			writeText(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequest logs every request once it completes.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(begin time.Time) {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(begin),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

// parseSearchRequest reads the search parameters from the query string.
// Absent limits are left zero so defaults apply; present limits must be
// positive integers.
func parseSearchRequest(r *http.Request) (linksep.SearchRequest, error) {
	q := r.URL.Query()

	startURL := strings.TrimSpace(q.Get("url"))
	if startURL == "" {
		return linksep.SearchRequest{}, linksep.Errorf(linksep.EINVALID, "url param is missing")
	}
	if !linksep.IsValidURL(startURL) {
		return linksep.SearchRequest{}, linksep.Errorf(linksep.EINVALID, "url %q is malformed", startURL)
	}

	depthLimit, err := parseLimit(q.Get("depthLimit"), "depthLimit")
	if err != nil {
		return linksep.SearchRequest{}, err
	}
	batchLimit, err := parseLimit(q.Get("batchLimit"), "batchLimit")
	if err != nil {
		return linksep.SearchRequest{}, err
	}

	return linksep.SearchRequest{
		StartURL:   startURL,
		DepthLimit: depthLimit,
		BatchLimit: batchLimit,
	}, nil
}

func parseLimit(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, linksep.Errorf(linksep.EINVALID, "%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

// clientKey identifies the caller for rate limiting. RealIP has already
// replaced RemoteAddr with the forwarded address when present.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
