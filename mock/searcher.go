package mock

import (
	"context"

	"github.com/fwojciec/linksep"
)

var _ linksep.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of linksep.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, req linksep.SearchRequest) (*linksep.Result, error)
}

func (s *Searcher) Search(ctx context.Context, req linksep.SearchRequest) (*linksep.Result, error) {
	return s.SearchFn(ctx, req)
}
