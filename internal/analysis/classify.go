package analysis

import "strings"

// PayerCategory tells in-house insurer visits apart from everything else.
type PayerCategory int

const (
	Group PayerCategory = iota
	NonGroup
)

// groupMarker identifies the in-house insurer in a normalized payer name.
const groupMarker = "AMIL"

func (c PayerCategory) String() string {
	if c == Group {
		return "GROUP"
	}
	return "NON_GROUP"
}

// MarshalText renders the category label in YAML/JSON output.
func (c PayerCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Classify maps a payer name to its category. The input must already be
// normalized: raw text would miss case and accent variants.
func Classify(normalizedPayer string) PayerCategory {
	if strings.Contains(normalizedPayer, groupMarker) {
		return Group
	}
	return NonGroup
}
