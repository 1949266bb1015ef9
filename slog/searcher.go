package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linksep"
	"github.com/google/uuid"
)

// Ensure LoggingSearcher implements linksep.Searcher.
var _ linksep.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher and logs one line per search.
// Each search is tagged with a random id so concurrent searches can be
// told apart in the log.
type LoggingSearcher struct {
	next   linksep.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next linksep.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher.
func (s *LoggingSearcher) Search(ctx context.Context, req linksep.SearchRequest) (result *linksep.Result, err error) {
	logger := s.logger.With("search_id", uuid.NewString())
	logger.Debug("search started",
		"url", req.StartURL,
		"depth_limit", req.DepthLimit,
		"batch_limit", req.BatchLimit,
	)

	defer func(begin time.Time) {
		attrs := []any{
			"url", req.StartURL,
			"depth_limit", req.DepthLimit,
			"batch_limit", req.BatchLimit,
			"duration", time.Since(begin),
		}
		if result != nil {
			attrs = append(attrs,
				"hops", result.String(),
				"outcome", result.Outcome.String(),
				"fetched", result.Fetched,
				"failed", result.Failed,
			)
		}
		if err != nil {
			attrs = append(attrs, "err", err)
			logger.Error("search", attrs...)
			return
		}
		logger.Info("search", attrs...)
	}(time.Now())

	return s.next.Search(ctx, req)
}
