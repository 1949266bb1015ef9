package mock

import "github.com/fwojciec/linksep"

var _ linksep.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of linksep.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html string) ([]string, error) {
	return e.ExtractLinksFn(html)
}

var _ linksep.TargetMatcher = (*TargetMatcher)(nil)

// TargetMatcher is a mock implementation of linksep.TargetMatcher.
type TargetMatcher struct {
	MatchFn func(content string) bool
}

func (m *TargetMatcher) Match(content string) bool {
	return m.MatchFn(content)
}
