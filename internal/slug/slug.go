// Package slug derives URL- and id-safe identifiers from heading text.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make returns the slug for text: diacritics folded, lower-cased, whitespace
// runs turned into single dashes, and anything that is not a letter, digit,
// underscore or dash removed. Leading and trailing dashes are trimmed.
//
// Two different headings may share a slug; callers do not disambiguate.
func Make(text string) string {
	folded, _, err := transform.String(foldTransformer(), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// foldTransformer strips combining marks after canonical decomposition.
// transform.Chain keeps state, so a fresh chain is built per call.
func foldTransformer() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
