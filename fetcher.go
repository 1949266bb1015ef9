package linksep

import "context"

// Fetcher retrieves raw page content from URLs.
// Implementations dispatch on the URL scheme; at least http and https are supported.
type Fetcher interface {
	// Fetch downloads the URL and returns the full response body as text.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
