package linksep

import (
	"context"
	"net/url"
	"strconv"
)

// Search limits used when a request leaves them unset.
const (
	DefaultDepthLimit = 5
	DefaultBatchLimit = 10
)

// NotFound is the hop count reported when the target is not reachable
// within the depth limit.
const NotFound = -1

// SearchRequest holds the inputs of a single link-separation search.
type SearchRequest struct {
	// StartURL is the page the search begins from.
	StartURL string `json:"url"`

	// DepthLimit is the maximum hop count to explore. Zero means DefaultDepthLimit.
	DepthLimit int `json:"depthLimit"`

	// BatchLimit caps the number of concurrent fetches. Zero means DefaultBatchLimit.
	BatchLimit int `json:"batchLimit"`
}

// WithDefaults returns a copy of the request with unset limits filled in.
func (r SearchRequest) WithDefaults() SearchRequest {
	if r.DepthLimit == 0 {
		r.DepthLimit = DefaultDepthLimit
	}
	if r.BatchLimit == 0 {
		r.BatchLimit = DefaultBatchLimit
	}
	return r
}

// Validate returns an error if the request contains invalid fields.
func (r SearchRequest) Validate() error {
	if r.StartURL == "" {
		return Errorf(EINVALID, "start URL required")
	}
	if !IsValidURL(r.StartURL) {
		return Errorf(EINVALID, "invalid start URL %q", r.StartURL)
	}
	if r.DepthLimit < 0 {
		return Errorf(EINVALID, "depth limit must be positive, got %d", r.DepthLimit)
	}
	if r.BatchLimit < 0 {
		return Errorf(EINVALID, "batch limit must be positive, got %d", r.BatchLimit)
	}
	return nil
}

// IsValidURL reports whether s is an absolute URL with a scheme and host.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Outcome is the state of a search. Every state other than OutcomeRunning is terminal.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeFound
	OutcomeExhausted
	OutcomeDrained
)

// Terminal reports whether the outcome ends the search.
func (o Outcome) Terminal() bool {
	return o != OutcomeRunning
}

func (o Outcome) String() string {
	switch o {
	case OutcomeRunning:
		return "running"
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// Result is the terminal report of one search.
type Result struct {
	// Hops is the link separation, or NotFound.
	Hops    int     `json:"hops"`
	Outcome Outcome `json:"-"`

	// Fetched and Failed count page downloads across the whole search.
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}

// Found reports whether the target was reached.
func (r *Result) Found() bool {
	return r.Outcome == OutcomeFound
}

// String returns the wire form of the result: the hop count, or "-1".
func (r *Result) String() string {
	if r.Outcome != OutcomeFound {
		return strconv.Itoa(NotFound)
	}
	return strconv.Itoa(r.Hops)
}

// Searcher runs link-separation searches.
type Searcher interface {
	// Search runs one search to completion.
	// Returns EINVALID if the request fails validation. Fetch failures
	// never surface here; they only shrink the explored graph.
	Search(ctx context.Context, req SearchRequest) (*Result, error)
}
