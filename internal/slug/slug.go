// Package slug turns post titles into URL-safe ASCII identifiers.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no letters or digits to build from.
const Fallback = "post"

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	stripMarks      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// From converts s into a lowercase slug of at most maxLen bytes.
// Accents are stripped (é becomes e), every run of other characters becomes a
// single hyphen and leading or trailing hyphens are dropped. The result may
// be empty.
func From(s string, maxLen int) string {
	result, _, err := transform.String(stripMarks, s)
	if err != nil {
		result = s
	}
	result = strings.ToLower(result)
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if maxLen > 0 && len(result) > maxLen {
		result = strings.TrimRight(result[:maxLen], "-")
	}
	return result
}

// WithSuffix returns base with "-n" appended, shortening base so the whole
// slug still fits in maxLen. n < 2 returns base unchanged.
func WithSuffix(base string, n, maxLen int) string {
	if n < 2 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	if maxLen > 0 && len(base)+len(suffix) > maxLen {
		base = strings.TrimRight(base[:maxLen-len(suffix)], "-")
	}
	return base + suffix
}
