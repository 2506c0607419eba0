package models

// Token is a single recognized text run with its position on the page.
// Every extraction backend normalizes its output into this shape before
// line grouping; tokens are never mutated after construction.
type Token struct {
	Text   string  `json:"text"`
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	// Conf is the recognizer's confidence in [0,1]. Negative means the
	// backend reported none — native PDF text layers carry no confidence.
	Conf float64 `json:"conf"`
}

// Mid returns the horizontal midpoint of the token.
func (t Token) Mid() float64 {
	return (t.X0 + t.X1) / 2
}

// ColumnAnchors holds the x-center of each logical statement column,
// inferred from header keywords once per page. A nil field means the
// column header was not found; the resolver then falls back to purely
// positional assignment.
type ColumnAnchors struct {
	Date        *float64
	Description *float64
	Debit       *float64
	Credit      *float64
	Amount      *float64
	Balance     *float64
}
