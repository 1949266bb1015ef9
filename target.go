package linksep

import "strings"

// DefaultTarget is the link fragment searched for when none is configured.
const DefaultTarget = "/wiki/Kevin_Bacon"

// TargetMatcher reports whether fetched page content links to the target.
type TargetMatcher interface {
	Match(content string) bool
}

// SubstringTarget matches any page whose raw content contains the string.
// The search runs over the whole document, not just extracted links, so a
// page that mentions the target outside an anchor also matches.
type SubstringTarget string

// Match implements TargetMatcher.
func (t SubstringTarget) Match(content string) bool {
	if t == "" {
		return false
	}
	return strings.Contains(content, string(t))
}
