package converter

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// typographic maps punctuation commonly found in titles onto the C1 slots that
// Windows-1252 assigns to the same glyphs.
var typographic = strings.NewReplacer(
	"’", "\u0092", // right single quotation mark
	"”", "\u0094", // right double quotation mark
	"–", "\u0096", // en dash
)

// Transliterate rewrites s so every rune fits in ISO-8859-1. Unsupported runes
// become '?'. Applying it twice gives the same result as applying it once.
func Transliterate(s string) string {
	s = typographic.Replace(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if _, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// latin1 encodes an already transliterated string into single-byte form, as
// gofpdf expects for non UTF-8 metadata.
func latin1(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		c, ok := charmap.ISO8859_1.EncodeRune(r)
		if !ok {
			c = '?'
		}
		out = append(out, c)
	}
	return string(out)
}
