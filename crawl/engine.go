package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/linksep"
	"golang.org/x/sync/errgroup"
)

// Engine advances a Frontier layer by layer, fetching each layer in
// batches of concurrent requests. An Engine holds no per-search state
// and may serve many searches at once.
type Engine struct {
	Fetcher linksep.Fetcher
	Links   linksep.LinkExtractor
	Target  linksep.TargetMatcher

	// FetchTimeout bounds each fetch attempt. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration

	// RetryDelays are the waits between fetch attempts. Nil means a single attempt.
	RetryDelays []time.Duration

	// Progress, if set, receives events as the search proceeds.
	Progress ProgressFunc
}

// Run calls Step until the search reaches a terminal outcome.
// It returns early with the context error if ctx ends first.
func (e *Engine) Run(ctx context.Context, f *Frontier, depthLimit, batchLimit int) (linksep.Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return linksep.OutcomeRunning, err
		}
		outcome := e.Step(ctx, f, depthLimit, batchLimit)
		// Fetches cut short by ctx make anything but a match unreliable.
		if err := ctx.Err(); err != nil && outcome != linksep.OutcomeFound {
			return outcome, err
		}
		if outcome.Terminal() {
			return outcome, nil
		}
	}
}

// Step fetches one batch of at most batchLimit URLs from the current layer
// and waits for all of them to settle. If that empties the layer, it
// advances the frontier. The returned outcome is OutcomeRunning while
// there is more to do.
func (e *Engine) Step(ctx context.Context, f *Frontier, depthLimit, batchLimit int) linksep.Outcome {
	if f.Found() {
		return linksep.OutcomeFound
	}

	if f.Len() > 0 {
		e.runBatch(ctx, f, f.NextBatch(batchLimit), batchLimit)
		if f.Found() {
			return linksep.OutcomeFound
		}
		if f.Len() > 0 {
			return linksep.OutcomeRunning
		}
	}

	outcome := f.Advance(depthLimit)
	if outcome == linksep.OutcomeRunning {
		e.report(ProgressEvent{
			Type:  ProgressLayer,
			Depth: f.Depth(),
			Links: f.Len(),
		})
	}
	return outcome
}

// runBatch fetches every URL in batch concurrently and returns when all
// have settled. The first fetch to find the target cancels the rest.
func (e *Engine) runBatch(ctx context.Context, f *Frontier, batch []string, limit int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for _, url := range batch {
		g.Go(func() error {
			if e.visit(ctx, f, url) {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()
}

// visit fetches one URL and either claims the match or merges its links
// into the next layer. It reports whether this call won the match.
func (e *Engine) visit(ctx context.Context, f *Frontier, url string) bool {
	if f.Found() {
		return false
	}

	html, err := e.fetch(ctx, url)
	f.record(err)
	if f.Found() {
		return false
	}
	if err != nil {
		e.report(ProgressEvent{Type: ProgressFailed, Depth: f.Depth(), URL: url, Error: err})
		return false
	}

	if e.Target.Match(html) {
		depth, ok := f.MarkFound()
		if ok {
			e.report(ProgressEvent{Type: ProgressFound, Depth: depth, URL: url})
		}
		return ok
	}

	links, err := e.Links.ExtractLinks(html)
	if err != nil {
		e.report(ProgressEvent{Type: ProgressFailed, Depth: f.Depth(), URL: url, Error: err})
		return false
	}
	added := f.Merge(links)
	e.report(ProgressEvent{Type: ProgressFetched, Depth: f.Depth(), URL: url, Links: added})
	return false
}

// fetch downloads url, bounding every attempt by FetchTimeout.
func (e *Engine) fetch(ctx context.Context, url string) (string, error) {
	timeout := e.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	fetchFn := func(ctx context.Context, url string) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return e.Fetcher.Fetch(ctx, url)
	}
	onRetry := func(url string, attempt int, err error) {
		e.report(ProgressEvent{Type: ProgressRetry, URL: url, Attempt: attempt, Error: err})
	}
	return FetchWithRetry(ctx, url, fetchFn, e.RetryDelays, onRetry)
}

func (e *Engine) report(event ProgressEvent) {
	if e.Progress != nil {
		e.Progress(event)
	}
}
