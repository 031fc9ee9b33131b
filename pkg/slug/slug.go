// Package slug derives URL slugs from free-form titles.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 120

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Make folds accents, lowercases, and joins words with single hyphens.
// "Juara 1 Lomba Karya Tulis Ilmiah" becomes "juara-1-lomba-karya-tulis-ilmiah".
func Make(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	result := strings.ToLower(strings.Join(strings.Fields(folded), "-"))
	result = invalidChars.ReplaceAllString(result, "-")
	result = repeatedHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxLength {
		result = strings.TrimRight(result[:maxLength], "-")
	}
	return result
}
