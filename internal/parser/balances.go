package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Phrase patterns for whole-document balance extraction, tried in order;
// the first match in each list wins.
var (
	openingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:opening|beginning|starting|previous)\s*balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)balance\s*(?:forward|brought\s*forward)[:\s]*\$?\s*([\d,]+\.?\d*)`),
	}
	closingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:closing|ending|new|current)\s*balance[:\s]*\$?\s*([\d,]+\.?\d*)`),
	}
)

// ExtractBalances scans the concatenated full text of a document for
// opening and closing balance phrases, independently of line-level
// resolution. A missing phrase leaves the corresponding value nil — never
// zero.
func ExtractBalances(text string) (opening, closing *float64) {
	return firstBalance(openingPatterns, text), firstBalance(closingPatterns, text)
}

func firstBalance(patterns []*regexp.Regexp, text string) *float64 {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		clean := strings.TrimSuffix(strings.ReplaceAll(m[1], ",", ""), ".")
		d, err := decimal.NewFromString(clean)
		if err != nil {
			continue
		}
		v := d.InexactFloat64()
		return &v
	}
	return nil
}
