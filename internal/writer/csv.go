package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// CSVWriter writes extraction results to CSV format.
type CSVWriter struct {
	IncludeSummary bool
}

// Write writes the result's transactions in CSV format to the given
// writer, optionally preceded by summary rows.
func (w *CSVWriter) Write(out io.Writer, result *models.ExtractionResult) error {
	cw := csv.NewWriter(out)
	defer cw.Flush()

	if w.IncludeSummary {
		cw.Write([]string{"# Method", string(result.Method)})
		cw.Write([]string{"# Pages", strconv.Itoa(result.PageCount)})
		if result.OpeningBalance != nil {
			cw.Write([]string{"# Opening Balance", formatAmount(*result.OpeningBalance)})
		}
		if result.ClosingBalance != nil {
			cw.Write([]string{"# Closing Balance", formatAmount(*result.ClosingBalance)})
		}
	}

	header := []string{"Date", "Description", "Type", "Amount", "Balance", "Confidence"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range result.Transactions {
		balance := ""
		if txn.Balance != nil {
			balance = formatAmount(*txn.Balance)
		}
		row := []string{
			txn.Date,
			txn.Description,
			txn.Type,
			formatAmount(txn.Amount),
			balance,
			strconv.FormatFloat(txn.Confidence, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
