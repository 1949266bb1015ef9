package linksep

// LinkExtractor finds outbound links in page content.
//
// Implementations must be pure: no network access, no shared state, and the
// same content always yields the same links in the same order.
type LinkExtractor interface {
	// ExtractLinks parses HTML and returns normalized absolute URLs,
	// deduplicated and in order of first appearance.
	ExtractLinks(html string) ([]string, error)
}
