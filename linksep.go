// Package linksep answers one question: how many hyperlink hops separate a
// starting web page from a fixed target page? It runs a bounded breadth-first
// search over the link graph, fetching and parsing pages lazily, within a
// configurable depth limit and per-layer fan-out.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, http/).
package linksep

// DefaultSiteOrigin is the origin prepended to relative links.
const DefaultSiteOrigin = "https://en.wikipedia.org"
