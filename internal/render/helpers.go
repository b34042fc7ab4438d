package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 64

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// safeFileSlug folds a trigger phrase into a lowercase ASCII slug. Accented
// letters keep their base letter; runs of separators collapse to one dash.
func safeFileSlug(value string) string {
	folded, _, err := transform.String(stripMarks, strings.TrimSpace(value))
	if err != nil {
		folded = value
	}
	words := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !(r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
	slug := strings.Join(words, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
