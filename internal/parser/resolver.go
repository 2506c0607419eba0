package parser

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// Header/footer shapes that are never transactions, no matter what numbers
// they carry.
var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)page\s*\d+`),
	regexp.MustCompile(`(?i)statement\s*(date|period)`),
	regexp.MustCompile(`(?i)account\s*number`),
	regexp.MustCompile(`(?i)customer\s*service`),
	regexp.MustCompile(`(?i)^date\s+description`),
	regexp.MustCompile(`(?i)www\.`),
}

var (
	// D[D]/D[D] with optional year, separators / - .
	numericDatePattern = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}(?:[/.\-]\d{2,4})?$`)
	// "15 Jan" / "Jan 15" — case-insensitive via alternation
	monthDatePattern = regexp.MustCompile(`(?i)^(?:\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2})$`)
)

// ResolveMode carries the backend-specific relaxations of the resolver, so
// the resolution algorithm itself stays backend-agnostic.
type ResolveMode struct {
	// LooseDates widens the date search from the first three tokens to the
	// whole line and tolerates lines with no date at all. OCR token order
	// and segmentation are too noisy for the leading-date rule.
	LooseDates bool
	// DefaultConfidence is assigned when the line's tokens carry no
	// recognition confidence of their own.
	DefaultConfidence float64
}

// ResolveLine decides date, description, amount, balance, and type for one
// grouped line, or returns nil for lines that are not transactions.
//
// The amount/balance split is where the Balance Trap lives: a transaction
// amount and the running balance are both usually right-aligned numbers on
// the same line. A known balance anchor wins over blind position; within
// the proximity window the first numeric token in x-ascending order is
// taken as balance and the first remaining one as amount.
func (e *Engine) ResolveLine(line Line, anchors models.ColumnAnchors, page int, mode ResolveMode) *models.Transaction {
	if len(line.Tokens) == 0 {
		return nil
	}

	text := line.Text()
	for _, p := range skipPatterns {
		if p.MatchString(text) {
			return nil
		}
	}

	nums := extractNumerics(line)

	date := findDate(line, mode.LooseDates)
	if date == "" && !mode.LooseDates {
		// Statement transaction rows open with a date in native layouts.
		return nil
	}

	byX := make([]numericToken, len(nums))
	copy(byX, nums)
	sort.SliceStable(byX, func(i, j int) bool { return byX[i].X < byX[j].X })

	var amount, balance *float64
	switch {
	case len(byX) >= 2 && anchors.Balance != nil:
		for i := range byX {
			if math.Abs(byX[i].X-*anchors.Balance) >= e.cfg.BalanceProximity {
				continue
			}
			balance = &byX[i].Value
			for j := range byX {
				if j != i {
					amount = &byX[j].Value
					break
				}
			}
			break
		}
		// No token near the anchor: neither field is assigned and the
		// line is dropped below. Positional fallback does not apply
		// retroactively once an anchor was trusted.
	case len(byX) >= 2:
		// No balance anchor — rightmost number is the balance, the one
		// before it the amount.
		balance = &byX[len(byX)-1].Value
		amount = &byX[len(byX)-2].Value
	case len(byX) == 1:
		amount = &byX[0].Value
	}

	if amount == nil {
		return nil
	}

	signed := *amount
	txnType := models.TxnUnknown
	switch {
	case signed < 0:
		txnType = models.TxnDebit
	case signed > 0:
		txnType = models.TxnCredit
	}

	numTexts := make(map[string]bool, len(nums))
	for _, n := range nums {
		numTexts[n.Text] = true
	}
	var parts []string
	for _, tok := range line.Tokens {
		t := strings.TrimSpace(tok.Text)
		if t == date || numTexts[t] {
			continue
		}
		parts = append(parts, t)
	}
	description := strings.TrimSpace(strings.Join(parts, " "))
	if len(description) > e.cfg.DescriptionLimit {
		description = description[:e.cfg.DescriptionLimit]
	}

	return &models.Transaction{
		Date:        date,
		Description: description,
		Amount:      math.Abs(signed),
		Type:        txnType,
		Balance:     balance,
		Confidence:  line.Confidence(mode.DefaultConfidence),
		BBox:        line.BBox(page),
		RawText:     text,
	}
}

// findDate returns the first token that reads as a date. Strict mode scans
// only the first three tokens of the line.
func findDate(line Line, loose bool) string {
	limit := 3
	if loose || len(line.Tokens) < limit {
		limit = len(line.Tokens)
	}
	for _, tok := range line.Tokens[:limit] {
		text := strings.TrimSpace(tok.Text)
		if numericDatePattern.MatchString(text) || monthDatePattern.MatchString(text) {
			return text
		}
	}
	return ""
}
