package kbid

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxSlugLength bounds generated slugs; the backend rejects longer ones.
const maxSlugLength = 80

// Slug derives a URL-safe slug from a display name: NFD decomposition with
// combining marks stripped (so "Český" becomes "cesky"), lowercased, with
// runs of non-alphanumerics collapsed into single hyphens.
func Slug(displayName string) string {
	decomposed := norm.NFD.String(displayName)

	var b strings.Builder

	lastHyphen := true // suppress leading hyphen
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			// Combining mark from NFD decomposition, drop it.
		case r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}

	return slug
}
