package models

import (
	"strings"
	"unicode/utf16"
)

// Slugify lowercases s and replaces every UTF-16 code unit outside [a-zA-Z0-9] with '-',
// so a character beyond the Basic Multilingual Plane yields "--". Invalid UTF-8 bytes
// yield one '-' each. Runs of dashes are kept and the result is not trimmed.
func Slugify(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		b.WriteString(strings.Repeat("-", n))
	}
	return b.String()
}
