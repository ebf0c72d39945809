// Package normalize cleans extracted text before it is stored.
package normalize

import (
	"strings"
	"unicode"
)

// Text trims s and collapses every run of whitespace into a single space.
// Text(Text(s)) == Text(s) for every s.
func Text(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	wasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
