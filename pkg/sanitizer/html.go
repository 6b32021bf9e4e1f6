// Package sanitizer cleans untrusted text and HTML with bluemonday.
package sanitizer

import (
	"html"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func policies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.UGCPolicy()
		safePolicy.RequireNoFollowOnLinks(true)
		safePolicy.AddTargetBlankToFullyQualifiedLinks(true)
	})
}

// StripHTML removes every tag and returns plain text. Entities produced by
// the policy are decoded again so "a & b" survives unchanged; output must
// still be escaped when rendered.
func StripHTML(s string) string {
	policies()
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// Text trims surrounding whitespace and strips markup.
func Text(s string) string {
	return strings.TrimSpace(StripHTML(s))
}

// Fields applies Text to every value except the keys listed in keep,
// which are copied verbatim (passwords must not be altered).
func Fields(in map[string]string, keep ...string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if slices.Contains(keep, k) {
			out[k] = v
			continue
		}
		out[k] = Text(v)
	}
	return out
}

// SanitizeHTML keeps user-content formatting (paragraphs, links, lists,
// code, tables) and drops scripts, handlers and unsafe URLs.
func SanitizeHTML(s string) string {
	policies()
	return safePolicy.Sanitize(s)
}
