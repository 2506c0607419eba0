package parser

import (
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// DetectAnchors scans the leading headerRegion tokens of a page for column
// header keywords and records each matched column's x-center. Statements
// are assumed to expose their header within that region. The first keyword
// hit per column wins; later hits are ignored. An all-absent result is
// valid and forces positional fallback in the resolver.
func DetectAnchors(tokens []models.Token, headerRegion int) models.ColumnAnchors {
	if len(tokens) > headerRegion {
		tokens = tokens[:headerRegion]
	}

	var anchors models.ColumnAnchors
	for _, tok := range tokens {
		text := strings.ToLower(strings.TrimSpace(tok.Text))
		mid := tok.Mid()

		switch {
		case strings.Contains(text, "date"):
			if anchors.Date == nil {
				anchors.Date = &mid
			}
		case strings.Contains(text, "description"), strings.Contains(text, "detail"), strings.Contains(text, "memo"):
			if anchors.Description == nil {
				anchors.Description = &mid
			}
		case strings.Contains(text, "debit"), strings.Contains(text, "withdrawal"), text == "dr":
			if anchors.Debit == nil {
				anchors.Debit = &mid
			}
		case strings.Contains(text, "credit"), strings.Contains(text, "deposit"), text == "cr":
			if anchors.Credit == nil {
				anchors.Credit = &mid
			}
		case strings.Contains(text, "amount") && !strings.Contains(text, "balance"):
			if anchors.Amount == nil {
				anchors.Amount = &mid
			}
		case strings.Contains(text, "balance"):
			if anchors.Balance == nil {
				anchors.Balance = &mid
			}
		}
	}
	return anchors
}
