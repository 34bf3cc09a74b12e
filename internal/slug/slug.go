// Package slug turns display text into ASCII URL segments.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	multiHyphen     = regexp.MustCompile(`-{2,}`)
)

// MaxLength bounds generated slugs; longer input is cut on a hyphen boundary when possible.
const MaxLength = 48

// From converts s into a lowercase, hyphen-separated ASCII slug.
// Accents are stripped ("Café Olé" becomes "cafe-ole"); anything else non-alphanumeric
// becomes a hyphen. The result may be empty.
func From(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLength {
		result = result[:MaxLength]
		if i := strings.LastIndexByte(result, '-'); i > MaxLength/2 {
			result = result[:i]
		}
		result = strings.Trim(result, "-")
	}
	return result
}

// Or returns From(s), or fallback when s has no sluggable characters.
func Or(s, fallback string) string {
	if out := From(s); out != "" {
		return out
	}
	return fallback
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
