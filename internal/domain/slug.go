package domain

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	nonWordRe     = regexp.MustCompile(`[^\w-]+`)
	multiHyphenRe = regexp.MustCompile(`--+`)
)

// Slugify derives a URL-safe identifier from an event title: lowercase,
// whitespace runs become single hyphens, every rune that is not a word
// character or hyphen is stripped, consecutive hyphens collapse, and
// leading/trailing hyphens are trimmed. A title made entirely of stripped
// characters yields "" and must be rejected by the caller before persistence.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = whitespaceRe.ReplaceAllString(slug, "-")
	slug = nonWordRe.ReplaceAllString(slug, "")
	slug = multiHyphenRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
