// Package slug builds URL-safe identifiers from book titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds the title part of a slug.
const MaxLength = 60

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make converts a title to a slug.
// "The Quiet Hours" -> "the-quiet-hours".
// "Café au Lait!" -> "cafe-au-lait".
func Make(title string) string {
	s := norm.NFKD.String(title)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	s = strings.Trim(nonAlphanumeric.ReplaceAllString(s, "-"), "-")

	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// WithSuffix appends a short disambiguator taken from an entity id, so two
// books with the same title get distinct slugs.
func WithSuffix(title, entityID string) string {
	_, tail, found := strings.Cut(entityID, "-")
	if !found {
		tail = entityID
	}
	tail = nonAlphanumeric.ReplaceAllString(strings.ToLower(tail), "")
	if len(tail) > 6 {
		tail = tail[:6]
	}
	if tail == "" {
		return Make(title)
	}
	return Make(title) + "-" + tail
}
