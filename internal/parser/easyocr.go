package parser

import (
	"math"
	"sort"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// OCRBox is one EasyOCR detection: a quadrilateral starting at the
// top-left corner, the recognized text, and a confidence already in [0,1].
type OCRBox struct {
	Box  [4][2]float64 `json:"box"`
	Text string        `json:"text"`
	Conf float64       `json:"conf"`
}

// Token reduces the quadrilateral to its axis-aligned bounds.
func (b OCRBox) Token() models.Token {
	x0, x1 := b.Box[0][0], b.Box[0][0]
	top, bottom := b.Box[0][1], b.Box[0][1]
	for _, p := range b.Box[1:] {
		x0 = math.Min(x0, p[0])
		x1 = math.Max(x1, p[0])
		top = math.Min(top, p[1])
		bottom = math.Max(bottom, p[1])
	}
	return models.Token{Text: b.Text, X0: x0, X1: x1, Top: top, Bottom: bottom, Conf: b.Conf}
}

// BoxTokens converts one page of EasyOCR detections to tokens, sorted by
// the (y, x) of their top-left corners so line grouping sees them in
// reading order.
func BoxTokens(boxes []OCRBox) []models.Token {
	ordered := make([]OCRBox, len(boxes))
	copy(ordered, boxes)
	sort.SliceStable(ordered, func(i, j int) bool {
		yi, yj := ordered[i].Box[0][1], ordered[j].Box[0][1]
		if yi != yj {
			return yi < yj
		}
		return ordered[i].Box[0][0] < ordered[j].Box[0][0]
	})

	tokens := make([]models.Token, 0, len(ordered))
	for _, b := range ordered {
		tokens = append(tokens, b.Token())
	}
	return tokens
}
