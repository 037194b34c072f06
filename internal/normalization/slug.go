package normalization

import (
	"strings"
)

// Slug maps a display name to a path-safe identifier: lowercase [a-z0-9],
// every run of other characters collapsed to one hyphen, no leading or
// trailing hyphen. Two different names may share a slug.
func Slug(display string) string {
	lower := strings.ToLower(display)
	var b strings.Builder
	b.Grow(len(lower))
	pendingHyphen := false
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteByte(c)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// ParseInputString trims and lowercases free-form input such as status filters.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
