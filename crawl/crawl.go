// Package crawl implements the bounded breadth-first link search.
// A Searcher bootstraps each search from its start page and hands the
// discovered links to an Engine, which advances the Frontier one batch
// of concurrent fetches at a time until the target is found or the
// depth limit or the link graph runs out.
package crawl

import (
	"time"

	"github.com/fwojciec/linksep"
)

// DefaultFetchTimeout bounds each page download when Engine.FetchTimeout is unset.
const DefaultFetchTimeout = 10 * time.Second

// ProgressEvent reports progress during a search.
type ProgressEvent struct {
	Type    ProgressType
	Depth   int
	URL     string
	Links   int // links added to the next layer, or size of the new layer
	Attempt int
	Outcome linksep.Outcome
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressFailed
	ProgressRetry
	ProgressLayer
	ProgressFound
	ProgressFinished
)

func (t ProgressType) String() string {
	switch t {
	case ProgressFetched:
		return "fetched"
	case ProgressFailed:
		return "failed"
	case ProgressRetry:
		return "retry"
	case ProgressLayer:
		return "layer"
	case ProgressFound:
		return "found"
	case ProgressFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// ProgressFunc is a callback for reporting search progress.
// It is called from concurrent fetch goroutines and must be safe for concurrent use.
type ProgressFunc func(event ProgressEvent)
