// Package bloom tracks visited URLs across search layers using a Bloom filter.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a probabilistic set of visited URLs.
// It is not safe for concurrent use; callers serialize access.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected URLs
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Visit records the URL and reports whether it was new.
// A false result may be a false positive; a true result is always correct.
func (f *Filter) Visit(url string) bool {
	return !f.f.TestAndAddString(url)
}
