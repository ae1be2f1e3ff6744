package types

import (
	"regexp"
	"strings"
)

var (
	slugApostropheRe = regexp.MustCompile("['’]")
	slugInvalidRe    = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe   = regexp.MustCompile(`-{2,}`)
)

// Slugify lowers, strips, and hyphenates a display name into a URL slug.
// Apostrophes are dropped rather than hyphenated so "Vera's" becomes "veras".
func Slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugApostropheRe.ReplaceAllString(slug, "")
	slug = slugInvalidRe.ReplaceAllString(slug, "-")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
