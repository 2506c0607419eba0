package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/ledgerparse/internal/parser"
)

const sampleTSV = `level	page_num	block_num	par_num	line_num	word_num	left	top	width	height	conf	text
1	1	0	0	0	0	0	0	2550	3300	-1
2	1	1	0	0	0	100	150	500	70	-1
3	1	1	1	0	0	100	150	500	30	-1
4	1	1	1	1	0	100	150	500	14	-1
5	1	1	1	1	1	100	150	60	12	96.5	15/01/2024
5	1	1	1	1	2	200	150	50	12	91.2	TESCO
4	1	1	2	1	0	100	200	500	14	-1
5	1	1	2	1	1	300	200	40	12	88.0	25.99
`

func TestParseTSV(t *testing.T) {
	grid := parseTSV(sampleTSV)

	// Only word-level (5) rows survive.
	require.Equal(t, []string{"15/01/2024", "TESCO", "25.99"}, grid.Text)
	assert.Equal(t, []float64{96.5, 91.2, 88.0}, grid.Conf)
	assert.Equal(t, []float64{100, 200, 300}, grid.Left)
	assert.Equal(t, []float64{150, 150, 200}, grid.Top)
	assert.Equal(t, []float64{60, 50, 40}, grid.Width)
	assert.Equal(t, []float64{12, 12, 12}, grid.Height)

	// line_num restarts per paragraph; renumbering keeps the two
	// paragraphs' lines distinct.
	assert.Equal(t, []int{0, 0, 1}, grid.Line)
}

func TestParseTSVSkipsMalformedRows(t *testing.T) {
	data := sampleTSV +
		"5	1	1	2	1	2	oops	200	40	12	88.0	BAD\n" +
		"not a tsv row\n"

	grid := parseTSV(data)
	assert.Len(t, grid.Text, 3)
	assert.NotContains(t, grid.Text, "BAD")
}

func TestParseTSVEmpty(t *testing.T) {
	grid := parseTSV("")
	assert.Empty(t, grid.Text)

	lines, err := grid.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func textPage(text string) parser.WordPage {
	return parser.WordPage{Text: text}
}

func TestIsReadable(t *testing.T) {
	statement := textPage("Example Bank Statement\n" +
		"Opening Balance: $1,200.50\n" +
		"15/01/2024 CARD PAYMENT TESCO 25.99 1,174.51\n" +
		"Closing Balance: $980.25")
	assert.True(t, isReadable([]parser.WordPage{statement}))

	// Too little text to judge.
	assert.False(t, isReadable([]parser.WordPage{textPage("bank")}))

	// Plenty of characters but decoded through a broken font encoding.
	garbage := textPage(strings.Repeat("Þþ¶¤Ð", 30))
	assert.False(t, isReadable([]parser.WordPage{garbage}))

	// Readable English that no statement would consist of.
	prose := textPage(strings.Repeat("the quick brown fox jumps over hedges ", 3))
	assert.False(t, isReadable([]parser.WordPage{prose}))
}

func TestTextQuality(t *testing.T) {
	clean := []parser.WordPage{textPage("Date Description Amount 25.99")}
	assert.Greater(t, textQuality(clean), 0.9)

	junk := []parser.WordPage{textPage("Þþ¶¤ÐÞþ¶")}
	assert.Equal(t, 0.0, textQuality(junk))

	assert.Equal(t, 0.0, textQuality(nil))
}
