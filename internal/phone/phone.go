package phone

import (
	"strings"
	"unicode"
)

// Normalizer canonicalizes phone identifiers to "+<country code><number>".
// Local numbers are recognized by their digit count.
type Normalizer struct {
	countryCode string
	localDigits int
}

// NewNormalizer creates a normalizer for one default country
func NewNormalizer(countryCode string, localDigits int) *Normalizer {
	return &Normalizer{
		countryCode: strings.TrimPrefix(strings.TrimSpace(countryCode), "+"),
		localDigits: localDigits,
	}
}

// Normalize never fails. Shapes it does not recognize come back as bare digits.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	// transport tags look like "51999999999@c.us"
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	plus := strings.HasPrefix(s, "+")

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return ""
	}

	switch {
	case plus:
		return "+" + digits
	case len(digits) == n.localDigits:
		return "+" + n.countryCode + digits
	case len(digits) == len(n.countryCode)+n.localDigits && strings.HasPrefix(digits, n.countryCode):
		return "+" + digits
	}
	return digits
}

// HasDigits reports whether raw could be a phone number at all
func HasDigits(raw string) bool {
	return strings.IndexFunc(raw, unicode.IsDigit) >= 0
}
