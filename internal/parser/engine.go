package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// Confidence assigned to transactions whose tokens carry no recognition
// confidence (native text layers, table-detector rows).
const fixedConfidence = 0.85

// Config holds the tunable heuristics of the engine. Statement layouts
// vary by issuer, so none of these are hard-coded in the algorithms.
type Config struct {
	// HeaderRegionTokens is how many leading tokens of a page are scanned
	// for column header keywords.
	HeaderRegionTokens int
	// BalanceProximity is the maximum horizontal distance between a numeric
	// token and the balance column anchor for the token to be taken as the
	// running balance.
	BalanceProximity float64
	// LineTolerance is the vertical grouping tolerance for positional
	// backends with precise coordinates.
	LineTolerance float64
	// BoxLineTolerance is the vertical grouping tolerance for OCR box
	// output, whose localization is much coarser.
	BoxLineTolerance float64
	// DescriptionLimit caps transaction description length.
	DescriptionLimit int
}

// DefaultConfig returns the tuning that works for the common single-line
// statement layouts.
func DefaultConfig() Config {
	return Config{
		HeaderRegionTokens: 100,
		BalanceProximity:   50,
		LineTolerance:      5,
		BoxLineTolerance:   20,
		DescriptionLimit:   200,
	}
}

// Engine converts backend-specific page representations into normalized
// transaction lists. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	cfg Config
}

// New returns an Engine with the given tuning.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// WordPage is one page from the native text-layer collaborator: positioned
// word tokens plus the page's plain-text rendering for the balance scanner.
type WordPage struct {
	Words []models.Token `json:"words"`
	Text  string         `json:"text"`
}

// ExtractNative processes positioned words from a native PDF text layer.
// Pages are handled in document order; a panic during page iteration (a
// collaborator handing over malformed data) aborts the whole document.
func (e *Engine) ExtractNative(pages []WordPage) (res models.ExtractionResult) {
	defer guard(&res, models.MethodNative)

	var txns []models.Transaction
	var texts []string
	for pageIdx, page := range pages {
		if len(page.Words) == 0 {
			continue
		}
		texts = append(texts, page.Text)

		anchors := DetectAnchors(page.Words, e.cfg.HeaderRegionTokens)
		lines := GroupLines(page.Words, e.cfg.LineTolerance)
		for _, line := range lines {
			if txn := e.ResolveLine(line, anchors, pageIdx+1, ResolveMode{DefaultConfidence: fixedConfidence}); txn != nil {
				txns = append(txns, *txn)
			}
		}
	}

	opening, closing := ExtractBalances(strings.Join(texts, "\n"))
	return e.buildResult(models.MethodNative, txns, opening, closing, len(pages))
}

// ExtractTesseract processes one Tesseract word grid per page. Line
// structure comes from Tesseract's own line numbering, not from geometry.
func (e *Engine) ExtractTesseract(pages []WordGrid) (res models.ExtractionResult) {
	defer guard(&res, models.MethodTesseract)

	var txns []models.Transaction
	var texts []string
	for pageIdx, grid := range pages {
		lines, err := grid.Lines()
		if err != nil {
			return failedResult(models.MethodTesseract, err.Error())
		}
		texts = append(texts, pageText(lines))

		anchors := DetectAnchors(flatten(lines), e.cfg.HeaderRegionTokens)
		for _, line := range lines {
			if txn := e.ResolveLine(line, anchors, pageIdx+1, ocrMode); txn != nil {
				txns = append(txns, *txn)
			}
		}
	}

	opening, closing := ExtractBalances(strings.Join(texts, "\n"))
	return e.buildResult(models.MethodTesseract, txns, opening, closing, len(pages))
}

// ExtractEasyOCR processes one list of EasyOCR detections per page.
func (e *Engine) ExtractEasyOCR(pages [][]OCRBox) (res models.ExtractionResult) {
	defer guard(&res, models.MethodEasyOCR)

	var txns []models.Transaction
	var texts []string
	for pageIdx, boxes := range pages {
		tokens := BoxTokens(boxes)
		if len(tokens) == 0 {
			continue
		}

		anchors := DetectAnchors(tokens, e.cfg.HeaderRegionTokens)
		lines := GroupLines(tokens, e.cfg.BoxLineTolerance)
		texts = append(texts, pageText(lines))
		for _, line := range lines {
			if txn := e.ResolveLine(line, anchors, pageIdx+1, ocrMode); txn != nil {
				txns = append(txns, *txn)
			}
		}
	}

	opening, closing := ExtractBalances(strings.Join(texts, "\n"))
	return e.buildResult(models.MethodEasyOCR, txns, opening, closing, len(pages))
}

// ExtractTable processes structured rows from the table-detection backend.
// Table rows already carry structured balance values, so opening/closing
// balances come from the first and last resolved balance in document order
// instead of the phrase scanner.
func (e *Engine) ExtractTable(rows []TableRow, pageCount int) (res models.ExtractionResult) {
	defer guard(&res, models.MethodGMFT)

	var txns []models.Transaction
	for _, row := range rows {
		if txn := e.ConvertRow(row); txn != nil {
			txns = append(txns, *txn)
		}
	}

	var opening, closing *float64
	for i := range txns {
		if txns[i].Balance != nil {
			if opening == nil {
				opening = txns[i].Balance
			}
			closing = txns[i].Balance
		}
	}
	return e.buildResult(models.MethodGMFT, txns, opening, closing, pageCount)
}

// ocrMode relaxes the leading-date rule: OCR word order and segmentation
// are too noisy to insist the date opens the line.
var ocrMode = ResolveMode{LooseDates: true, DefaultConfidence: 0.5}

func (e *Engine) buildResult(method models.Method, txns []models.Transaction, opening, closing *float64, pageCount int) models.ExtractionResult {
	if txns == nil {
		txns = []models.Transaction{}
	}

	conf := emptyConfidence(method)
	if len(txns) > 0 {
		sum := 0.0
		for _, t := range txns {
			sum += t.Confidence
		}
		conf = sum / float64(len(txns))
	}

	return models.ExtractionResult{
		Success:        true,
		Method:         method,
		Transactions:   txns,
		OpeningBalance: opening,
		ClosingBalance: closing,
		PageCount:      pageCount,
		Confidence:     conf,
		Errors:         []string{},
	}
}

// emptyConfidence is the per-backend default when no transactions were
// found: "no evidence", not "zero confidence in a detected fact".
func emptyConfidence(method models.Method) float64 {
	switch method {
	case models.MethodTesseract, models.MethodEasyOCR:
		return 0.5
	case models.MethodGMFT:
		return 0.7
	default:
		return 0
	}
}

func failedResult(method models.Method, msg string) models.ExtractionResult {
	return models.ExtractionResult{
		Success:      false,
		Method:       method,
		Transactions: []models.Transaction{},
		Errors:       []string{msg},
	}
}

// guard converts a panic during page iteration into a document-level
// failure. Must be deferred with the named result of the extraction call.
func guard(res *models.ExtractionResult, method models.Method) {
	if r := recover(); r != nil {
		*res = failedResult(method, fmt.Sprintf("page processing failed: %v", r))
	}
}

func flatten(lines []Line) []models.Token {
	var tokens []models.Token
	for _, line := range lines {
		tokens = append(tokens, line.Tokens...)
	}
	return tokens
}

func pageText(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.Text())
	}
	return strings.Join(parts, "\n")
}
