package crawl

import (
	"context"

	"github.com/fwojciec/linksep"
)

// Visited filter sizing used when Searcher.SkipVisited is set.
const (
	visitedExpectedURLs      = 100000
	visitedFalsePositiveRate = 0.001
)

// Compile-time interface verification.
var _ linksep.Searcher = (*Searcher)(nil)

// Searcher runs link-separation searches. The start page is fetched once
// up front; everything past it is delegated to the embedded Engine.
type Searcher struct {
	Engine

	// SkipVisited drops links already seen at an earlier layer.
	// Off by default: revisits across layers are tolerated.
	SkipVisited bool
}

// Search runs one search and returns its single terminal result.
func (s *Searcher) Search(ctx context.Context, req linksep.SearchRequest) (*linksep.Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &linksep.Result{Hops: linksep.NotFound}

	html, err := s.fetch(ctx, req.StartURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		result.Failed++
		s.report(ProgressEvent{Type: ProgressFailed, Depth: 1, URL: req.StartURL, Error: err})
		return s.finish(result, linksep.OutcomeDrained, 0), nil
	}
	result.Fetched++

	if s.Target.Match(html) {
		result.Hops = 1
		s.report(ProgressEvent{Type: ProgressFound, Depth: 1, URL: req.StartURL})
		return s.finish(result, linksep.OutcomeFound, 0), nil
	}

	if req.DepthLimit == 1 {
		return s.finish(result, linksep.OutcomeExhausted, 0), nil
	}

	links, err := s.Links.ExtractLinks(html)
	if err != nil {
		s.report(ProgressEvent{Type: ProgressFailed, Depth: 1, URL: req.StartURL, Error: err})
		return s.finish(result, linksep.OutcomeDrained, 0), nil
	}

	var opts []FrontierOption
	if s.SkipVisited {
		opts = append(opts, WithVisitedFilter(visitedExpectedURLs, visitedFalsePositiveRate))
	}
	frontier := NewFrontier(2, links, opts...)
	s.report(ProgressEvent{Type: ProgressFetched, Depth: 1, URL: req.StartURL, Links: frontier.Len()})
	if frontier.Len() == 0 {
		return s.finish(result, linksep.OutcomeDrained, 0), nil
	}
	s.report(ProgressEvent{Type: ProgressLayer, Depth: 2, Links: frontier.Len()})

	outcome, err := s.Run(ctx, frontier, req.DepthLimit, req.BatchLimit)
	if err != nil {
		return nil, err
	}

	fetched, failed := frontier.Stats()
	result.Fetched += fetched
	result.Failed += failed
	if outcome == linksep.OutcomeFound {
		result.Hops = frontier.Hops()
	}
	unexplored := 0
	if outcome == linksep.OutcomeExhausted {
		unexplored = len(frontier.Next())
	}
	return s.finish(result, outcome, unexplored), nil
}

// finish reports the end of a search. unexplored counts the links left
// queued for a layer the depth limit cut off.
func (s *Searcher) finish(result *linksep.Result, outcome linksep.Outcome, unexplored int) *linksep.Result {
	result.Outcome = outcome
	s.report(ProgressEvent{Type: ProgressFinished, Depth: result.Hops, Outcome: outcome, Links: unexplored})
	return result
}
