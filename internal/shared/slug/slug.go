// Package slug turns human supplied tour names into URL-safe folder names.
package slug

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalid  = errors.New("slug: invalid")
	ErrReserved = errors.New("slug: reserved")
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	separators = regexp.MustCompile(`[\s-]+`)
	pattern    = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?$`)
)

// Letters that do not decompose into a base letter plus combining marks.
var ligatures = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"þ", "th", "Þ", "TH",
)

// Names that collide with routes served by the application itself.
var reserved = map[string]struct{}{
	"api":     {},
	"assets":  {},
	"css":     {},
	"favicon": {},
	"images":  {},
	"img":     {},
	"index":   {},
	"js":      {},
	"static":  {},
	"tours":   {},
	"vendor":  {},
	"viewer":  {},
}

// Slugify transliterates name to ASCII and reduces it to lowercase letters,
// digits and single hyphens. It returns "" when nothing can be kept.
func Slugify(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = strings.ToLower(toASCII(s))
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValid reports whether s is a well formed slug: 1-64 characters from
// [a-z0-9-], alphanumeric at both ends and without repeated hyphens.
func IsValid(s string) bool {
	return pattern.MatchString(s) && !strings.Contains(s, "--")
}

func IsReserved(s string) bool {
	_, ok := reserved[s]
	return ok
}

// Normalize prepares a slug taken from a URL or query string for checks.
func Normalize(raw string) string {
	return strings.ToLower(raw)
}

// Check returns ErrInvalid or ErrReserved when s cannot name a tour that is
// about to be created or modified.
func Check(s string) error {
	if s == "" || !IsValid(s) {
		return ErrInvalid
	}
	if IsReserved(s) {
		return ErrReserved
	}
	return nil
}

func toASCII(s string) string {
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
