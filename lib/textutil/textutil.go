package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases name and removes all whitespace so names can be
// compared loosely.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// MatchThreshold is the minimum Jaro-Winkler similarity for MatchName.
const MatchThreshold = 0.9

// MatchName reports whether name loosely matches any of the queries,
// either by containment or by Jaro-Winkler similarity.
func MatchName(name string, queries []string) bool {
	name = NormalizeName(name)
	for _, q := range queries {
		q = NormalizeName(q)
		if q == "" {
			continue
		}
		if strings.Contains(name, q) {
			return true
		}
		if matchr.JaroWinkler(name, q, false) >= MatchThreshold {
			return true
		}
	}
	return false
}

var nonLetter = regexp.MustCompile(`[^a-zA-Z]`)

// Slug turns a free-form collection name into an address segment: every
// non-letter becomes a space, the result is lowercased and spaces become
// hyphens. "Shadow Slave!" yields "shadow-slave-".
func Slug(name string) string {
	name = nonLetter.ReplaceAllString(name, " ")
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "-")
}

var nonFilename = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// SanitizeFilename keeps only ASCII letters, digits and spaces.
func SanitizeFilename(title string) string {
	return strings.TrimSpace(nonFilename.ReplaceAllString(title, ""))
}

var illegalPath = regexp.MustCompile(`[\\/:*?"<>|]`)

// StripIllegal removes the characters that are not allowed in file names
// on common filesystems.
func StripIllegal(name string) string {
	return illegalPath.ReplaceAllString(name, "")
}

// TitleCase uppercases the first letter of every run of letters and
// lowercases the rest, "HELLO wORLD's" becomes "Hello World'S".
func TitleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				sb.WriteRune(unicode.ToLower(r))
			} else {
				sb.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		sb.WriteRune(r)
		prevLetter = false
	}
	return sb.String()
}
