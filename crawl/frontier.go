package crawl

import (
	"sync"
	"sync/atomic"

	"github.com/fwojciec/linksep"
	"github.com/fwojciec/linksep/bloom"
)

// Frontier holds the breadth-first state of one search: the current depth,
// the URLs of the current layer still waiting to be fetched, and the URLs
// discovered so far for the next layer.
//
// A URL waiting in the current layer is never also queued for the next
// one; once handed out by NextBatch it may be merged again. Depth only
// grows, by one per Advance. Once MarkFound succeeds the frontier stops accepting links.
//
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu      sync.Mutex
	depth   int
	current []string
	queued  map[string]struct{} // current-layer URLs not yet handed out
	next    []string
	nextSet map[string]struct{}
	visited *bloom.Filter
	found   bool
	hops    int

	fetched atomic.Int64
	failed  atomic.Int64
}

// FrontierOption configures a Frontier.
type FrontierOption func(*Frontier)

// WithVisitedFilter skips links already seen at any earlier layer.
// The filter is sized for n expected URLs with the given false positive rate;
// a false positive drops a link that was never fetched.
func WithVisitedFilter(n uint, fpRate float64) FrontierOption {
	return func(f *Frontier) {
		f.visited = bloom.NewFilter(n, fpRate)
	}
}

// NewFrontier creates a Frontier at the given depth whose current layer is seed.
// Duplicate seed URLs are dropped.
func NewFrontier(depth int, seed []string, opts ...FrontierOption) *Frontier {
	f := &Frontier{
		depth:   depth,
		queued:  make(map[string]struct{}, len(seed)),
		nextSet: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, url := range seed {
		if _, ok := f.queued[url]; ok {
			continue
		}
		f.queued[url] = struct{}{}
		f.current = append(f.current, url)
		if f.visited != nil {
			f.visited.Visit(url)
		}
	}
	return f
}

// Depth returns the hop count of the current layer.
func (f *Frontier) Depth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

// Len returns the number of URLs of the current layer not yet handed out.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.current)
}

// Next returns a copy of the next layer in discovery order.
func (f *Frontier) Next() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.next...)
}

// NextBatch removes and returns up to n URLs from the front of the current layer.
func (f *Frontier) NextBatch(n int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n <= 0 {
		n = 1
	}
	if n > len(f.current) {
		n = len(f.current)
	}
	batch := make([]string, n)
	copy(batch, f.current[:n])
	f.current = f.current[n:]
	for _, url := range batch {
		delete(f.queued, url)
	}
	return batch
}

// Merge adds links to the next layer and returns how many were new.
// Links already in the next layer or still waiting in the current one are
// skipped, as are links the visited filter (if any) has seen. A URL fetched
// earlier in this layer is accepted again. Merge is a no-op once found.
func (f *Frontier) Merge(links []string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.found {
		return 0
	}

	added := 0
	for _, url := range links {
		if _, ok := f.queued[url]; ok {
			continue
		}
		if _, ok := f.nextSet[url]; ok {
			continue
		}
		if f.visited != nil && !f.visited.Visit(url) {
			continue
		}
		f.nextSet[url] = struct{}{}
		f.next = append(f.next, url)
		added++
	}
	return added
}

// MarkFound records that the target was found at the current depth.
// Only the first caller gets ok == true; later callers get the recorded
// depth and false.
func (f *Frontier) MarkFound() (depth int, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.found {
		return f.hops, false
	}
	f.found = true
	f.hops = f.depth
	return f.hops, true
}

// Found reports whether the target has been found.
func (f *Frontier) Found() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.found
}

// Hops returns the depth recorded by MarkFound, or linksep.NotFound.
func (f *Frontier) Hops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.found {
		return linksep.NotFound
	}
	return f.hops
}

// Advance moves to the next layer once the current layer is fully handed out.
//
// It returns OutcomeRunning without changes while current URLs remain,
// OutcomeFound once found, OutcomeDrained when no links were discovered,
// OutcomeExhausted when the next layer would exceed depthLimit, and
// otherwise OutcomeRunning after swapping the next layer in.
func (f *Frontier) Advance(depthLimit int) linksep.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.found:
		return linksep.OutcomeFound
	case len(f.current) > 0:
		return linksep.OutcomeRunning
	case len(f.next) == 0:
		return linksep.OutcomeDrained
	case f.depth+1 > depthLimit:
		return linksep.OutcomeExhausted
	}

	f.depth++
	f.current = f.next
	f.queued = f.nextSet
	f.next = nil
	f.nextSet = make(map[string]struct{})
	return linksep.OutcomeRunning
}

// Stats returns the number of successful and failed fetches recorded.
func (f *Frontier) Stats() (fetched, failed int) {
	return int(f.fetched.Load()), int(f.failed.Load())
}

func (f *Frontier) record(err error) {
	if err != nil {
		f.failed.Add(1)
		return
	}
	f.fetched.Add(1)
}
