// Package sanitize strips markup from user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer turns untrusted input into plain text
type Sanitizer struct {
	policy *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes every tag and returns the remaining text unescaped and trimmed.
// The result is meant for JSON output, never for raw HTML rendering.
func (s *Sanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// Texts applies Text to every element and drops the ones left empty
func (s *Sanitizer) Texts(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if t := s.Text(r); t != "" {
			out = append(out, t)
		}
	}
	return out
}
