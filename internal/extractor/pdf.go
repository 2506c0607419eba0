package extractor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"github.com/insightdelivered/ledgerparse/internal/models"
	"github.com/insightdelivered/ledgerparse/internal/parser"
)

// defaultPageHeight is the US Letter height in points, used when a page
// carries no usable MediaBox.
const defaultPageHeight = 792

// ExtractWords reads a native PDF's text layer and returns positioned
// words per page, with a plain-text rendering for the balance scanner.
// Returns an error when the PDF exposes no readable text layer (image-only
// scans, damaged font encodings) — those documents belong to the OCR
// backends, never to garbage output.
func ExtractWords(filePath string) ([]parser.WordPage, error) {
	pages, err := extractWithLibrary(filePath)
	if err != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %w. The PDF may be image-based/scanned; route it through an OCR backend", err)
	}
	if !isReadable(pages) {
		return nil, fmt.Errorf("no readable text layer in PDF. The file is likely image-based/scanned or uses font encodings that cannot be decoded; route it through an OCR backend")
	}
	return pages, nil
}

// extractWithLibrary walks the document with ledongthuc/pdf. The library
// can panic on malformed files, so the whole walk is guarded.
func extractWithLibrary(filePath string) (pages []parser.WordPage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, parser.WordPage{})
			continue
		}
		pages = append(pages, buildPage(page))
	}
	return pages, nil
}

// buildPage converts a page's text objects to tokens. PDF y coordinates
// grow bottom-up; tops are flipped so smaller means higher on the page.
func buildPage(page pdf.Page) parser.WordPage {
	content := page.Content()
	height := mediaBoxHeight(page)

	var words []models.Token
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		top := height - t.Y
		words = append(words, models.Token{
			Text:   t.S,
			X0:     t.X,
			X1:     t.X + t.W,
			Top:    top,
			Bottom: top + t.FontSize,
			Conf:   -1,
		})
	}

	return parser.WordPage{Words: words, Text: renderText(words)}
}

// renderText rebuilds the page's plain text from its tokens, row by row.
func renderText(words []models.Token) string {
	lines := parser.GroupLines(words, parser.DefaultConfig().LineTolerance)
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.Text())
	}
	return strings.Join(parts, "\n")
}

func mediaBoxHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return defaultPageHeight
	}
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if h <= 0 {
		return defaultPageHeight
	}
	return h
}

// textQuality returns the ratio of basic ASCII readable characters to
// total characters. A strict ASCII check — unicode.IsLetter is too broad
// and matches the accented garbage produced by identity-encoded fonts.
func textQuality(pages []parser.WordPage) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page.Text {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"$%&@#!?+=*`, r) ||
				r == '£' || r == '€' {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords appear in virtually all bank statements. Extracted text
// containing none of them is likely garbage.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period",
}

func containsCommonWords(pages []parser.WordPage) bool {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(strings.ToLower(page.Text))
		sb.WriteByte(' ')
	}
	combined := sb.String()
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadable checks that pages contain enough text, that it's actually
// readable rather than binary garbage, and that it contains at least one
// word a statement would have.
func isReadable(pages []parser.WordPage) bool {
	total := 0
	for _, page := range pages {
		total += len(strings.TrimSpace(page.Text))
	}
	if total <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}
