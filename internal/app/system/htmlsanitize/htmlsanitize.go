// Package htmlsanitize strips markup from user-supplied free text before it
// is stored. Donation request fields are plain text; any tags a client sends
// are dropped and their text content kept.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	policy *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	once.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText removes all HTML from s and trims the result. Entities escaped
// by the policy are decoded so "A & B" round-trips unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	clean := strict().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(clean))
}
