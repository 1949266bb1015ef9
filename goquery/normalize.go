package goquery

import "github.com/PuerkitoBio/purell"

// normalizeFlags rewrite a URL without changing the page it names.
const normalizeFlags = purell.FlagsSafe |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes

// Normalize returns the canonical form of an absolute URL used for
// deduplication: lowercase scheme and host, no default port, no fragment,
// no dot segments or repeated slashes.
func Normalize(rawURL string) (string, error) {
	return purell.NormalizeURLString(rawURL, normalizeFlags)
}
