// Package sanitizer provides HTML sanitization helpers built on bluemonday.
//
// StripHTML is used wherever user-supplied text is interpolated into email
// templates: substitution inserts raw text, so anything a customer typed
// (names, contact messages) must be reduced to plain text first.
package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// StrictPolicy strips ALL HTML, returns plain text.
		strictPolicy = bluemonday.StrictPolicy()

		// SafePolicy allows basic formatting for admin-authored content.
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// StripHTML removes all HTML markup, returning plain text. Script and
// style element contents are dropped entirely, not just their tags.
func StripHTML(s string) string {
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// SanitizeHTML allows safe formatting tags (p, a, strong, em, lists).
// Strips dangerous elements and attributes including scripts, event
// handlers, and javascript: URLs.
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}
