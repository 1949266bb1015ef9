package slog

import (
	"log/slog"

	"github.com/fwojciec/linksep/crawl"
)

// NewProgressLogger returns a crawl.ProgressFunc that writes search
// progress to logger. Per-page events are logged at debug level; layer
// changes and the final outcome at info.
func NewProgressLogger(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		switch e.Type {
		case crawl.ProgressFetched:
			logger.Debug("page fetched", "depth", e.Depth, "url", e.URL, "links", e.Links)
		case crawl.ProgressFailed:
			logger.Debug("page failed", "depth", e.Depth, "url", e.URL, "err", e.Error)
		case crawl.ProgressRetry:
			logger.Debug("retrying fetch", "url", e.URL, "attempt", e.Attempt, "err", e.Error)
		case crawl.ProgressLayer:
			logger.Info("layer", "depth", e.Depth, "pages", e.Links)
		case crawl.ProgressFound:
			logger.Info("target found", "hops", e.Depth, "url", e.URL)
		case crawl.ProgressFinished:
			logger.Info("search finished", "depth", e.Depth, "outcome", e.Outcome.String(), "unexplored", e.Links)
		}
	}
}
