package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

func testEngine() *Engine {
	return New(DefaultConfig())
}

func anchorsWithBalance(x float64) models.ColumnAnchors {
	return models.ColumnAnchors{Balance: &x}
}

// txnLine is a typical statement row: date, description, amount, balance.
func txnLine() Line {
	return Line{Tokens: []models.Token{
		tok("15/01/2024", 10, 70, 150),
		tok("CARD", 100, 130, 150),
		tok("PAYMENT", 135, 190, 150),
		tok("120.00", 290, 310, 150),
		tok("4,500.00", 580, 620, 150),
	}}
}

func TestResolveLineBalanceTrap(t *testing.T) {
	e := testEngine()

	txn := e.ResolveLine(txnLine(), anchorsWithBalance(605), 1, ResolveMode{DefaultConfidence: fixedConfidence})
	require.NotNil(t, txn)

	require.NotNil(t, txn.Balance)
	assert.Equal(t, 4500.00, *txn.Balance)
	assert.Equal(t, 120.00, txn.Amount)
	assert.Equal(t, models.TxnCredit, txn.Type)
	assert.Equal(t, "15/01/2024", txn.Date)
	assert.Equal(t, "CARD PAYMENT", txn.Description)
	assert.Equal(t, 0.85, txn.Confidence)
	require.NotNil(t, txn.BBox)
	assert.Equal(t, 1, txn.BBox.Page)
	assert.Equal(t, "15/01/2024 CARD PAYMENT 120.00 4,500.00", txn.RawText)
}

func TestResolveLineAnchorAbsentFallback(t *testing.T) {
	e := testEngine()

	// Without an anchor the rightmost number is the balance and the
	// second-rightmost the amount.
	txn := e.ResolveLine(txnLine(), models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
	require.NotNil(t, txn)
	require.NotNil(t, txn.Balance)
	assert.Equal(t, 4500.00, *txn.Balance)
	assert.Equal(t, 120.00, txn.Amount)
}

func TestResolveLineAnchorMissWindow(t *testing.T) {
	e := testEngine()

	// A balance anchor far from every numeric token: neither field is
	// assigned and the line is dropped — positional fallback does not
	// apply retroactively.
	txn := e.ResolveLine(txnLine(), anchorsWithBalance(900), 1, ResolveMode{DefaultConfidence: fixedConfidence})
	assert.Nil(t, txn)
}

func TestResolveLineSingleNumeric(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		tok("03/02/2024", 10, 70, 150),
		tok("DIRECT", 100, 150, 150),
		tok("DEBIT", 155, 195, 150),
		tok("-45.00", 300, 340, 150),
	}}

	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
	require.NotNil(t, txn)
	assert.Equal(t, 45.00, txn.Amount)
	assert.Equal(t, models.TxnDebit, txn.Type)
	assert.Nil(t, txn.Balance)
}

func TestResolveLineHeaderRejection(t *testing.T) {
	e := testEngine()

	lines := []Line{
		{Tokens: []models.Token{tok("Page", 10, 40, 10), tok("2", 45, 50, 10), tok("of", 55, 65, 10), tok("5", 70, 75, 10)}},
		{Tokens: []models.Token{tok("Statement", 10, 70, 10), tok("Period", 75, 120, 10)}},
		{Tokens: []models.Token{tok("Account", 10, 60, 10), tok("Number", 65, 110, 10), tok("12345678", 120, 180, 10)}},
		{Tokens: []models.Token{tok("www.examplebank.com", 10, 150, 10)}},
		{Tokens: []models.Token{tok("Date", 10, 40, 10), tok("Description", 50, 120, 10)}},
	}

	for _, line := range lines {
		assert.Nil(t, e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence}), "line %q", line.Text())
	}
}

func TestResolveLineRequiresLeadingDate(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		tok("INTEREST", 10, 80, 150),
		tok("EARNED", 90, 140, 150),
		tok("5.25", 300, 330, 150),
	}}

	// Strict mode drops undated lines.
	assert.Nil(t, e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence}))

	// Loose mode (OCR backends) keeps them.
	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ocrMode)
	require.NotNil(t, txn)
	assert.Empty(t, txn.Date)
	assert.Equal(t, 5.25, txn.Amount)
}

func TestResolveLineLooseDateAnywhere(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		tok("REFUND", 10, 60, 150),
		tok("FROM", 70, 100, 150),
		tok("AMAZON", 110, 160, 150),
		tok("18/01/2024", 200, 260, 150),
		tok("15.49", 300, 330, 150),
	}}

	assert.Nil(t, e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence}))

	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ocrMode)
	require.NotNil(t, txn)
	assert.Equal(t, "18/01/2024", txn.Date)
}

func TestResolveLineMonthDates(t *testing.T) {
	e := testEngine()

	for _, date := range []string{"15 Jan", "Jan 15", "4 Dec 2024"} {
		line := Line{Tokens: []models.Token{
			tok(date, 10, 70, 150),
			tok("TESCO", 100, 150, 150),
			tok("25.99", 300, 330, 150),
		}}
		txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
		if date == "4 Dec 2024" {
			// Year-bearing month dates are not a single-token shape here.
			assert.Nil(t, txn, "date %q", date)
			continue
		}
		require.NotNil(t, txn, "date %q", date)
		assert.Equal(t, date, txn.Date)
	}
}

func TestResolveLineZeroAmountUnknownType(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		tok("20/01/2024", 10, 70, 150),
		tok("ADJUSTMENT", 100, 180, 150),
		tok("0.00", 300, 330, 150),
	}}

	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
	require.NotNil(t, txn)
	assert.Equal(t, 0.0, txn.Amount)
	assert.Equal(t, models.TxnUnknown, txn.Type)
}

func TestResolveLineNoNumerics(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		tok("15/01/2024", 10, 70, 150),
		tok("CONTINUED", 100, 180, 150),
	}}
	assert.Nil(t, e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence}))
}

func TestResolveLineIdempotent(t *testing.T) {
	e := testEngine()
	anchors := anchorsWithBalance(605)
	mode := ResolveMode{DefaultConfidence: fixedConfidence}

	first := e.ResolveLine(txnLine(), anchors, 1, mode)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.ResolveLine(txnLine(), anchors, 1, mode))
	}
}

func TestResolveLineSignTypeConsistency(t *testing.T) {
	e := testEngine()

	cases := []struct {
		amount string
		typ    string
	}{
		{"-45.00", models.TxnDebit},
		{"(45.00)", models.TxnDebit},
		{"45.00", models.TxnCredit},
	}
	for _, tc := range cases {
		line := Line{Tokens: []models.Token{
			tok("15/01/2024", 10, 70, 150),
			tok("X", 100, 110, 150),
			tok(tc.amount, 300, 340, 150),
		}}
		txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
		require.NotNil(t, txn, "amount %q", tc.amount)
		assert.Equal(t, tc.typ, txn.Type, "amount %q", tc.amount)
		assert.GreaterOrEqual(t, txn.Amount, 0.0)
	}
}

func TestResolveLineMeasuredConfidence(t *testing.T) {
	e := testEngine()

	line := Line{Tokens: []models.Token{
		{Text: "15/01/2024", X0: 10, X1: 70, Top: 150, Bottom: 160, Conf: 0.9},
		{Text: "TESCO", X0: 100, X1: 150, Top: 150, Bottom: 160, Conf: 0.7},
		{Text: "25.99", X0: 300, X1: 330, Top: 150, Bottom: 160, Conf: 0.8},
	}}

	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ocrMode)
	require.NotNil(t, txn)
	assert.InDelta(t, 0.8, txn.Confidence, 1e-9)
}

func TestResolveLineDescriptionCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DescriptionLimit = 10
	e := New(cfg)

	line := Line{Tokens: []models.Token{
		tok("15/01/2024", 10, 70, 150),
		tok("VERYLONGMERCHANTNAME", 100, 250, 150),
		tok("25.99", 300, 330, 150),
	}}

	txn := e.ResolveLine(line, models.ColumnAnchors{}, 1, ResolveMode{DefaultConfidence: fixedConfidence})
	require.NotNil(t, txn)
	assert.Len(t, txn.Description, 10)
}
