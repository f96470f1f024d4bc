package identity

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	slug "github.com/goliatone/go-slug"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^\w\s-]`)
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases s, drops characters that are neither word characters,
// whitespace nor hyphens, collapses whitespace/underscore/hyphen runs into a
// single hyphen and trims hyphens from both ends. Input containing non-ASCII
// characters is transliterated with go-slug first, so "Ça va" becomes
// "ca-va" rather than losing the accented letter. Slugify(Slugify(s)) ==
// Slugify(s).
func Slugify(s string) string {
	if !isASCII(s) {
		if normalized, err := slug.Normalize(s); err == nil && normalized != "" {
			s = normalized
		}
	}
	return slugRules(s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func slugRules(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = nonSlugChars.ReplaceAllString(out, "")
	out = separatorRuns.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// ListingID picks the identifier for a new listing: the slugified explicit
// slug, then the slugified name, then the creation time in unix milliseconds.
func ListingID(explicitSlug, name string, now time.Time) string {
	if id := Slugify(explicitSlug); id != "" {
		return id
	}
	if id := Slugify(name); id != "" {
		return id
	}
	return strconv.FormatInt(now.UnixMilli(), 10)
}
