// Package sanitize holds the HTML sanitization policies applied to
// user-supplied content before it is persisted.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// richPolicy allows the formatting a post's rich content may carry:
	// standard user-generated-content tags plus images and code blocks.
	richPolicy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("code", "pre", "span", "div")
		p.RequireNoFollowOnLinks(true)
		return p
	}()

	// strictPolicy strips all markup; used for comment text and plain
	// profile fields.
	strictPolicy = bluemonday.StrictPolicy()
)

// RichHTML sanitizes rich post content, keeping safe formatting markup.
func RichHTML(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// Plain strips all markup from the input.
func Plain(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
