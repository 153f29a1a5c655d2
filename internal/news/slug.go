package news

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify folds a title into a URL slug: diacritics stripped, lowercased,
// runs of non-alphanumerics collapsed to single hyphens. Vietnamese đ is
// handled separately because it is a base letter, not a combining mark.
func Slugify(title string) string {
	title = strings.ReplaceAll(title, "đ", "d")
	title = strings.ReplaceAll(title, "Đ", "D")
	folded, _, err := transform.String(diacriticStripper, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
