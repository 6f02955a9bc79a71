package utils

import (
	"regexp"
	"strings"
)

// DefaultShortenLength is the rune budget used when rendering values in row
// descriptions.
const DefaultShortenLength = 32

var whitespace = regexp.MustCompile(`\s+`)

// Shorten collapses runs of whitespace into one space and, when the result is
// longer than maxLength runes, keeps the head and tail around a "..." marker.
func Shorten(s string, maxLength int) string {
	s = whitespace.ReplaceAllString(s, " ")
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	const marker = "..."
	keep := maxLength - len(marker)
	if keep < 2 {
		return string(runes[:maxLength])
	}
	head := keep / 2
	tail := keep - head
	var b strings.Builder
	b.WriteString(string(runes[:head]))
	b.WriteString(marker)
	b.WriteString(string(runes[len(runes)-tail:]))
	return b.String()
}
