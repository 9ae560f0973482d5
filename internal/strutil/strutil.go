// Package strutil holds the small string helpers shared by the renderers:
// anchor ids, delimiter checks and page slugs.
package strutil

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrEmpty is returned by AppendLast when there is no last element.
var ErrEmpty = errors.New("strutil: empty list")

var unsafeIDChars = regexp.MustCompile(`[^a-zA-Z0-9.\- ]`)

// SafeID converts free-form text into a value usable as an HTML id.
func SafeID(text string) string {
	return strings.ReplaceAll(strings.TrimSpace(unsafeIDChars.ReplaceAllString(text, "")), " ", "-")
}

var closers = map[string]string{"[": "]", "(": ")", "{": "}"}

// IsContained reports whether text starts with open and ends with the matching closer.
// Delimiters without a known pair (quotes) close themselves.
func IsContained(text, open string) bool {
	if open == "" {
		return false
	}
	end, ok := closers[open]
	if !ok {
		end = open
	}
	return strings.HasPrefix(text, open) && strings.HasSuffix(text, end)
}

// AppendLast returns a copy of list with suffix appended to its last element.
func AppendLast(list []string, suffix string) ([]string, error) {
	if len(list) == 0 {
		return nil, ErrEmpty
	}
	out := make([]string, len(list))
	copy(out, list)
	out[len(out)-1] += suffix
	return out, nil
}

var camelBoundary = regexp.MustCompile(`([^A-Z]|^)([A-Z])`)

// Humanize turns a key such as "OnBlock" into "On Block".
func Humanize(key string) string {
	if key == "" {
		return ""
	}
	first, rest := []rune(key)[0], key[len(string([]rune(key)[0])):]
	return string(unicode.ToUpper(first)) + camelBoundary.ReplaceAllString(rest, "$1 $2")
}

// Slug derives the page and asset folder name for a character name.
// Accents are folded before the id rules apply: "Bédman?" becomes "bedman".
func Slug(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(SafeID(b.String()))
}
