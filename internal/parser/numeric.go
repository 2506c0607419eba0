package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericToken is a currency-like token parsed to a signed value, with the
// horizontal midpoint it was found at.
type numericToken struct {
	Value float64
	X     float64
	Text  string
}

// Currency-number shape after thousands separators are stripped: optional
// dollar sign, optional parenthesis-or-minus sign, digits, optional
// fraction, optional closing parenthesis.
var currencyPattern = regexp.MustCompile(`^\$?\s*[\(\-]?\d+(?:\.\d*)?\)?$`)

// parseCurrency reports whether s looks like a currency amount and parses
// it to a signed float. Parentheses or a minus sign negate the magnitude.
func parseCurrency(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	stripped := strings.ReplaceAll(s, ",", "")
	if !currencyPattern.MatchString(stripped) {
		return 0, false
	}

	negative := strings.Contains(s, "(") || strings.Contains(s, "-")
	clean := strings.NewReplacer("$", "", "(", "", ")", "", "-", "", " ", "").Replace(stripped)
	clean = strings.TrimSuffix(clean, ".")
	if clean == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, false
	}
	value := d.InexactFloat64()
	if negative {
		value = -value
	}
	return value, true
}

// parsePlainAmount parses a structured-row cell value after stripping
// dollar signs and thousands separators. No sign conventions apply here;
// the caller decides polarity from the column identity.
func parsePlainAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(s), "$", ""), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// extractNumerics returns every token on the line that parses as a
// currency amount, in the line's token order.
func extractNumerics(line Line) []numericToken {
	var nums []numericToken
	for _, tok := range line.Tokens {
		text := strings.TrimSpace(tok.Text)
		if value, ok := parseCurrency(text); ok {
			nums = append(nums, numericToken{Value: value, X: tok.Mid(), Text: text})
		}
	}
	return nums
}
