package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// newASCIIFold decomposes accented letters and keeps only their ASCII base.
// A chain carries buffers, so each call builds its own.
func newASCIIFold() transform.Transformer {
	return transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			return r
		}),
		runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
	)
}

// Normalize canonicalizes a free-text cell: accents stripped, ASCII only,
// upper-cased, whitespace runs collapsed and trimmed. Non-string input
// yields "".
func Normalize(v any) (out string) {
	s, ok := v.(string)
	if !ok || s == "" {
		return ""
	}
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	folded, _, err := transform.String(newASCIIFold(), s)
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}
