// Package normalize cleans user-supplied text before it is validated or stored.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Text prepares free-form multi-line input such as testimonial content.
// It composes the string to NFC, drops null bytes and control characters
// other than newline and tab, normalizes line endings, and trims the ends.
func Text(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return '\n'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
	return strings.TrimSpace(s)
}

// Line prepares single-line input such as a name or designation.
// Runs of whitespace collapse to one space.
func Line(raw string) string {
	return strings.Join(strings.Fields(Text(raw)), " ")
}
