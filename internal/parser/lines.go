package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// Line is an ordered run of tokens sharing an approximate vertical
// position, assumed to represent one transaction or non-transaction row.
// Lines are transient and rebuilt per page.
type Line struct {
	Tokens []models.Token
}

// Text reconstructs the line by joining token texts with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Tokens))
	for _, t := range l.Tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

// BBox returns the axis-aligned bounding box spanning all tokens in the
// line, or nil for an empty line.
func (l Line) BBox(page int) *models.BBox {
	if len(l.Tokens) == 0 {
		return nil
	}
	box := models.BBox{
		X1:   l.Tokens[0].X0,
		Y1:   l.Tokens[0].Top,
		X2:   l.Tokens[0].X1,
		Y2:   l.Tokens[0].Bottom,
		Page: page,
	}
	for _, t := range l.Tokens[1:] {
		box.X1 = math.Min(box.X1, t.X0)
		box.Y1 = math.Min(box.Y1, t.Top)
		box.X2 = math.Max(box.X2, t.X1)
		box.Y2 = math.Max(box.Y2, t.Bottom)
	}
	return &box
}

// Confidence returns the mean recognition confidence of the line's tokens,
// ignoring tokens whose backend reported none. Falls back to the given
// default when no token carries a confidence.
func (l Line) Confidence(fallback float64) float64 {
	sum, n := 0.0, 0
	for _, t := range l.Tokens {
		if t.Conf >= 0 {
			sum += t.Conf
			n++
		}
	}
	if n == 0 {
		return fallback
	}
	return sum / float64(n)
}

// GroupLines clusters tokens into lines by quantizing each token's top
// coordinate to the nearest multiple of the tolerance. Output lines are
// ordered top of page first, tokens within a line left to right. The
// partition is deterministic: identical input always yields identical
// lines. Tokens sitting exactly between two buckets may split across
// them — an accepted approximation for borderline y jitter.
func GroupLines(tokens []models.Token, tolerance float64) []Line {
	buckets := make(map[float64][]models.Token)
	for _, t := range tokens {
		y := math.Round(t.Top/tolerance) * tolerance
		buckets[y] = append(buckets[y], t)
	}

	keys := make([]float64, 0, len(buckets))
	for y := range buckets {
		keys = append(keys, y)
	}
	sort.Float64s(keys)

	lines := make([]Line, 0, len(keys))
	for _, y := range keys {
		row := buckets[y]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X0 < row[j].X0
		})
		lines = append(lines, Line{Tokens: row})
	}
	return lines
}
