package extractor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/insightdelivered/ledgerparse/internal/parser"
)

// RunTesseract rasterizes a PDF with pdftoppm and runs Tesseract in TSV
// mode, returning one word grid per page. This handles scanned PDFs that
// have no text layer. Requires pdftoppm (poppler-utils) and tesseract
// (tesseract-ocr) on PATH.
func RunTesseract(filePath string) ([]parser.WordGrid, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("pdftoppm not available (install poppler-utils): %v", err)
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract not available (install tesseract-ocr): %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// -r 300 = 300 DPI for good OCR quality
	imgPrefix := filepath.Join(tmpDir, "page")
	cmd := exec.Command("pdftoppm", "-r", "300", "-png", filePath, imgPrefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %v (output: %s)", err, string(out))
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp dir: %v", err)
	}
	var imageFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			imageFiles = append(imageFiles, filepath.Join(tmpDir, e.Name()))
		}
	}
	sort.Strings(imageFiles)

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	var grids []parser.WordGrid
	for _, imgFile := range imageFiles {
		outBase := strings.TrimSuffix(imgFile, ".png") + "-ocr"
		// PSM 4 = single column of text of variable sizes (good for statements)
		cmd := exec.Command("tesseract", imgFile, outBase, "-l", "eng", "--psm", "4", "tsv")
		if out, err := cmd.CombinedOutput(); err != nil {
			// Some pages may still work; continue.
			fmt.Fprintf(os.Stderr, "tesseract warning for %s: %v (output: %s)\n", imgFile, err, string(out))
			continue
		}

		data, err := os.ReadFile(outBase + ".tsv")
		if err != nil {
			continue
		}
		grids = append(grids, parseTSV(string(data)))
	}

	if len(grids) == 0 {
		return nil, fmt.Errorf("tesseract OCR produced no output from %d page images", len(imageFiles))
	}
	return grids, nil
}

// TSV column layout emitted by tesseract:
// level page block par line word left top width height conf text
const (
	tsvLevel = 0
	tsvBlock = 2
	tsvPar   = 3
	tsvLine  = 4
	tsvLeft  = 6
	tsvTop   = 7
	tsvWidth = 8
	tsvHght  = 9
	tsvConf  = 10
	tsvText  = 11
	tsvCols  = 12

	tsvWordLevel = 5
)

// parseTSV converts a tesseract TSV page into a word grid. Tesseract's
// line_num restarts per paragraph, so lines are renumbered across the
// whole page using the (block, par, line) triple.
func parseTSV(data string) parser.WordGrid {
	var grid parser.WordGrid
	lineIDs := make(map[string]int)

	for i, row := range strings.Split(data, "\n") {
		if i == 0 {
			continue // header row
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvCols {
			continue
		}
		level, err := strconv.Atoi(cols[tsvLevel])
		if err != nil || level != tsvWordLevel {
			continue
		}

		left, err1 := strconv.ParseFloat(cols[tsvLeft], 64)
		top, err2 := strconv.ParseFloat(cols[tsvTop], 64)
		width, err3 := strconv.ParseFloat(cols[tsvWidth], 64)
		height, err4 := strconv.ParseFloat(cols[tsvHght], 64)
		conf, err5 := strconv.ParseFloat(cols[tsvConf], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			continue
		}

		key := cols[tsvBlock] + "/" + cols[tsvPar] + "/" + cols[tsvLine]
		id, ok := lineIDs[key]
		if !ok {
			id = len(lineIDs)
			lineIDs[key] = id
		}

		grid.Text = append(grid.Text, cols[tsvText])
		grid.Conf = append(grid.Conf, conf)
		grid.Line = append(grid.Line, id)
		grid.Left = append(grid.Left, left)
		grid.Top = append(grid.Top, top)
		grid.Width = append(grid.Width, width)
		grid.Height = append(grid.Height, height)
	}
	return grid
}
