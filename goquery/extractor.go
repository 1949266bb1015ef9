// Package goquery implements linksep.LinkExtractor on top of goquery's
// CSS selector engine.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/linksep"
)

var _ linksep.LinkExtractor = (*Extractor)(nil)

// Extractor finds same-site wiki links in HTML. Relative links are
// rewritten against the configured origin; absolute links are kept only
// when they point into the origin host's /wiki/ namespace.
type Extractor struct {
	origin     string
	wikiPrefix string // host + "/wiki/"
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOrigin sets the site origin used to absolutize relative links.
// Defaults to linksep.DefaultSiteOrigin if not specified.
func WithOrigin(origin string) Option {
	return func(e *Extractor) {
		e.origin = strings.TrimRight(origin, "/")
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		origin: linksep.DefaultSiteOrigin,
	}
	for _, opt := range opts {
		opt(e)
	}

	host := e.origin
	if u, err := url.Parse(e.origin); err == nil && u.Host != "" {
		host = u.Host
	}
	e.wikiPrefix = host + "/wiki/"

	return e
}

// ExtractLinks returns the normalized wiki links of html in document order,
// each appearing once.
func (e *Extractor) ExtractLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, linksep.Errorf(linksep.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		resolved := e.resolve(href)
		if resolved == "" {
			return
		}

		normalized, err := Normalize(resolved)
		if err != nil {
			return
		}

		if _, ok := seen[normalized]; ok {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links, nil
}

// resolve turns href into an absolute same-site URL, or "" if the link
// should be skipped.
func (e *Extractor) resolve(href string) string {
	href = strings.TrimSpace(href)

	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "#"):
		return ""
	case strings.HasPrefix(href, "//"):
		return ""
	case strings.Index(href, e.wikiPrefix) > 0:
		return href
	case strings.HasPrefix(href, "/"):
		return e.origin + href
	}
	return ""
}
