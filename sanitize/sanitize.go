// Package sanitize strips disallowed markup from free-text message bodies.
// It is a defense against script injection, not a full HTML sanitizer:
// attributes inside allowed tags pass through unchanged.
package sanitize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// allowedPrefixes mirrors the historical allow-list: a tag survives when the
// text right after '<' starts with one of these, case-insensitively.
var allowedPrefixes = []string{"img", "a", "/a", "/img"}

// Clean removes every markup tag whose body does not start with an allowed
// prefix. Clean is idempotent: applying it twice yields the same result.
func Clean(body string) string {
	return tagPattern.ReplaceAllStringFunc(body, func(tag string) string {
		inner := strings.ToLower(tag[1 : len(tag)-1])
		for _, prefix := range allowedPrefixes {
			if strings.HasPrefix(inner, prefix) {
				return tag
			}
		}
		return ""
	})
}
