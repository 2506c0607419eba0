package parser

import (
	"math"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// Cell is one named column value from a detected table row.
type Cell struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// TableRow is an ordered row of cells from the table-detection backend,
// tagged with its 1-based page number. Order matters: column priority is
// resolved in cell order, which is why this is a slice and not a map.
type TableRow struct {
	Page  int    `json:"page"`
	Cells []Cell `json:"cells"`
}

// ConvertRow maps one structured table row to a transaction, bypassing
// line grouping entirely. Debit columns yield a negative amount, credit
// columns a positive one; a generic amount column only applies (with the
// parenthesis-as-negative convention) when no debit/credit column already
// set the amount. Unparsable values drop that field only, never the row.
// Rows with neither amount nor description yield nothing.
func (e *Engine) ConvertRow(row TableRow) *models.Transaction {
	var (
		date        string
		description string
		amount      *float64
		balance     *float64
		txnType     = models.TxnUnknown
	)

	for _, cell := range row.Cells {
		col := strings.ToLower(cell.Column)
		val := strings.TrimSpace(cell.Value)
		if val == "" || strings.EqualFold(val, "nan") {
			continue
		}

		switch {
		case strings.Contains(col, "date"):
			date = val
		case strings.Contains(col, "description"), strings.Contains(col, "memo"), strings.Contains(col, "detail"):
			description = val
		case strings.Contains(col, "debit"), strings.Contains(col, "withdrawal"):
			if v, ok := parsePlainAmount(val); ok {
				v = -math.Abs(v)
				amount = &v
				txnType = models.TxnDebit
			}
		case strings.Contains(col, "credit"), strings.Contains(col, "deposit"):
			if v, ok := parsePlainAmount(val); ok {
				v = math.Abs(v)
				amount = &v
				txnType = models.TxnCredit
			}
		case strings.Contains(col, "balance"):
			if v, ok := parsePlainAmount(val); ok {
				balance = &v
			}
		case strings.Contains(col, "amount") && amount == nil:
			if v, ok := parseCurrency(val); ok {
				amount = &v
				switch {
				case v < 0:
					txnType = models.TxnDebit
				case v > 0:
					txnType = models.TxnCredit
				}
			}
		}
	}

	if amount == nil && description == "" {
		return nil
	}

	if len(description) > e.cfg.DescriptionLimit {
		description = description[:e.cfg.DescriptionLimit]
	}

	txn := &models.Transaction{
		Date:        date,
		Description: description,
		Type:        txnType,
		Balance:     balance,
		Confidence:  fixedConfidence,
		RawText:     rowText(row),
	}
	if amount != nil {
		txn.Amount = math.Abs(*amount)
	}
	return txn
}

func rowText(row TableRow) string {
	parts := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		parts = append(parts, cell.Column+"="+cell.Value)
	}
	return strings.Join(parts, " | ")
}
