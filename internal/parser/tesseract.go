package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/models"
)

// WordGrid is the parallel-array word output of a Tesseract TSV run for
// one page. Conf is on Tesseract's 0-100 scale; -1 marks boxes Tesseract
// emitted without recognizing a word.
type WordGrid struct {
	Text   []string  `json:"text"`
	Conf   []float64 `json:"conf"`
	Line   []int     `json:"line_num"`
	Left   []float64 `json:"left"`
	Top    []float64 `json:"top"`
	Width  []float64 `json:"width"`
	Height []float64 `json:"height"`
}

// Lines groups the grid's words into lines using Tesseract's own line
// numbering rather than re-deriving structure from geometry. Confidences
// are rescaled to [0,1]; lines with no non-whitespace words are dropped.
// Mismatched parallel arrays are the malformed-collaborator case and
// surface as an error, aborting the document.
func (g WordGrid) Lines() ([]Line, error) {
	n := len(g.Text)
	if len(g.Conf) != n || len(g.Line) != n || len(g.Left) != n ||
		len(g.Top) != n || len(g.Width) != n || len(g.Height) != n {
		return nil, fmt.Errorf("word grid arrays have mismatched lengths (%d text entries)", n)
	}

	byLine := make(map[int][]models.Token)
	var order []int
	for i := 0; i < n; i++ {
		if strings.TrimSpace(g.Text[i]) == "" {
			continue
		}
		conf := g.Conf[i]
		if conf >= 0 {
			conf /= 100
		}
		tok := models.Token{
			Text:   g.Text[i],
			X0:     g.Left[i],
			X1:     g.Left[i] + g.Width[i],
			Top:    g.Top[i],
			Bottom: g.Top[i] + g.Height[i],
			Conf:   conf,
		}
		if _, seen := byLine[g.Line[i]]; !seen {
			order = append(order, g.Line[i])
		}
		byLine[g.Line[i]] = append(byLine[g.Line[i]], tok)
	}

	lines := make([]Line, 0, len(order))
	for _, id := range order {
		row := byLine[id]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X0 < row[j].X0
		})
		lines = append(lines, Line{Tokens: row})
	}
	return lines, nil
}
