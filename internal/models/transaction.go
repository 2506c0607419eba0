package models

// Method identifies which extraction backend produced a result.
type Method string

const (
	MethodNative    Method = "native"
	MethodTesseract Method = "tesseract"
	MethodEasyOCR   Method = "easyocr"
	MethodGMFT      Method = "gmft"
)

// Transaction type values. The sign of the underlying amount decides the
// type; column identity never does.
const (
	TxnDebit   = "debit"
	TxnCredit  = "credit"
	TxnUnknown = "unknown"
)

// BBox is the axis-aligned bounding box of a transaction line, tagged with
// its 1-based page number.
type BBox struct {
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
	Page int     `json:"page"`
}

// Transaction represents a single statement transaction. Amount is always
// a non-negative magnitude; sign information lives in Type. Nil Balance
// means no running balance was resolved for the line.
type Transaction struct {
	Date        string   `json:"date,omitempty"`
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Type        string   `json:"type"`
	Balance     *float64 `json:"balance"`
	Confidence  float64  `json:"confidence"`
	BBox        *BBox    `json:"bbox,omitempty"`
	RawText     string   `json:"raw_text"`
}

// ExtractionResult is the terminal output of one extraction request.
// Failure is all-or-nothing at the document level: Success=false always
// comes with an empty transaction list.
type ExtractionResult struct {
	Success        bool          `json:"success"`
	Method         Method        `json:"method"`
	Transactions   []Transaction `json:"transactions"`
	OpeningBalance *float64      `json:"opening_balance"`
	ClosingBalance *float64      `json:"closing_balance"`
	PageCount      int           `json:"page_count"`
	Confidence     float64       `json:"confidence"`
	Errors         []string      `json:"errors"`
}
