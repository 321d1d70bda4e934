package utils

import "strings"

// TruncateWithEllipsis cuts s down to limit bytes, replacing the tail with
// "..." so the result is exactly limit long. Strings at or under the limit
// come back untouched.
func TruncateWithEllipsis(s string, limit int) string {
	if limit <= 3 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

// StripTags removes HTML/XML markup from a message before it is shown to
// users. Unterminated tags are dropped along with everything after them.
func StripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
