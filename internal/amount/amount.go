package amount

import (
	"fmt"
	"regexp"
	"strings"

	"ledgerbot/internal/domain"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^\d,.\-]`)

// Parse reads amounts like "10,50", "1,234.56" or "S/ 1.234,56".
// When both separators appear the first one is the thousands separator.
// The result is rounded to cents and never negative; callers apply the sign.
func Parse(raw string) (decimal.Decimal, error) {
	s := nonNumeric.ReplaceAllString(raw, "")

	comma := strings.Index(s, ",")
	dot := strings.Index(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma < dot {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, raw)
	}

	return value.Abs().Round(2), nil
}
