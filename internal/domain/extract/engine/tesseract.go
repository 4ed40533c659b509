package engine

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TesseractEngine runs tesseract in TSV mode so every word comes back with
// its box and confidence.
type TesseractEngine struct {
	bin    string
	lang   string
	psm    int
	runner Runner
}

func NewTesseractEngine(bin, lang string, runner Runner) *TesseractEngine {
	if bin == "" {
		bin = "tesseract"
	}
	if lang == "" {
		lang = "eng"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	// psm 6: assume a single uniform block of text
	return &TesseractEngine{bin: bin, lang: lang, psm: 6, runner: runner}
}

func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]OCRWord, error) {
	tmpDir, err := os.MkdirTemp("", "stmt-ocr-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "page.png")
	f, err := os.Create(in)
	if err != nil {
		return nil, err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	// tesseract <file> stdout -l <lang> --psm 6 tsv
	out, err := e.runner.Run(ctx, e.bin, in, "stdout", "-l", e.lang, "--psm", strconv.Itoa(e.psm), "tsv")
	if err != nil {
		return nil, fmt.Errorf("ocr tsv: %w", err)
	}
	return ParseTSV(string(out)), nil
}

// ParseTSV reads tesseract TSV output and keeps word-level rows
// (level 5) that carry text.
func ParseTSV(tsv string) []OCRWord {
	var words []OCRWord
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		words = append(words, OCRWord{
			Text:   text,
			Conf:   conf,
			Block:  atoi(cols[2]),
			Par:    atoi(cols[3]),
			Line:   atoi(cols[4]),
			Left:   atoi(cols[6]),
			Top:    atoi(cols[7]),
			Width:  atoi(cols[8]),
			Height: atoi(cols[9]),
		})
	}
	return words
}

// OCRLines rebuilds text lines from recognized words. Horizontal gaps wider
// than two characters become runs of spaces so column-style patterns keep
// working on OCR output.
func OCRLines(words []OCRWord) []string {
	type key struct{ block, par, line int }
	groups := map[key][]OCRWord{}
	var order []key
	for _, w := range words {
		k := key{w.Block, w.Par, w.Line}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], w)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return groups[order[i]][0].Top < groups[order[j]][0].Top
	})

	lines := make([]string, 0, len(order))
	for _, k := range order {
		ws := groups[k]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].Left < ws[j].Left })

		var charW, runes int
		for _, w := range ws {
			charW += w.Width
			runes += len([]rune(w.Text))
		}
		cw := 10
		if runes > 0 && charW/runes > 0 {
			cw = charW / runes
		}

		var b strings.Builder
		for i, w := range ws {
			if i > 0 {
				gap := w.Left - (ws[i-1].Left + ws[i-1].Width)
				spaces := 1
				if gap > 2*cw {
					spaces = gap / cw
				}
				b.WriteString(strings.Repeat(" ", spaces))
			}
			b.WriteString(w.Text)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// MeanConfidence returns the average word confidence in 0..1.
func MeanConfidence(words []OCRWord) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Conf
	}
	return sum / float64(len(words)) / 100
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
