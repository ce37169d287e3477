package domain

import (
	"strings"
)

// NormalizeQuery prepares user input for a lookup:
//   - trims leading/trailing whitespace
//   - compresses runs of spaces into one
//
// Case is preserved: the remote service resolves the canonical form and the
// cache stores whatever key it returns.
func NormalizeQuery(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ContainsFold reports whether word contains fragment, ignoring case. An
// empty fragment matches every word. The stores implement the same rule in SQL.
func ContainsFold(word, fragment string) bool {
	return strings.Contains(strings.ToLower(word), strings.ToLower(fragment))
}
