package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrEncrypted is returned when the PDF needs a password.
var ErrEncrypted = errors.New("pdf is encrypted")

// PDFTextEngine reads layout text with pdftotext and falls back to
// rendering layout from ledongthuc/pdf word boxes when the binary is
// missing or fails.
type PDFTextEngine struct {
	pdftotext string
	runner    Runner
	logger    *slog.Logger
}

// NewPDFTextEngine builds a text engine. An empty pdftotext disables the
// external binary.
func NewPDFTextEngine(pdftotext string, runner Runner, logger *slog.Logger) *PDFTextEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	return &PDFTextEngine{pdftotext: pdftotext, runner: runner, logger: logger}
}

func (e *PDFTextEngine) LayoutText(ctx context.Context, path string, maxPages int) ([]string, error) {
	if e.pdftotext != "" {
		pages, err := e.pdfToText(ctx, path, maxPages)
		if err == nil {
			return pages, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Debug("pdftotext unavailable, rendering layout from word boxes",
			slog.String("path", path), slog.Any("error", err))
	}

	words, err := e.Words(ctx, path, maxPages)
	if err != nil {
		return nil, err
	}
	pages := make([]string, len(words))
	for i, w := range words {
		pages[i] = RenderLayout(w)
	}
	return pages, nil
}

func (e *PDFTextEngine) pdfToText(ctx context.Context, path string, maxPages int) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-f 1 -l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", maxPages))
	}
	args = append(args, path, "-")

	out, err := e.runner.Run(ctx, e.pdftotext, args...)
	if err != nil {
		return nil, fmt.Errorf("layout text: %w", err)
	}
	// Form feed terminates every page.
	pages := strings.Split(string(out), "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	if maxPages > 0 && len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

func (e *PDFTextEngine) Words(ctx context.Context, path string, maxPages int) (pages [][]Word, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrEncrypted
		}
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	// Malformed content streams make the reader panic.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("read pdf content: %v", rec)
		}
	}()

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		pages = append(pages, wordsFromGlyphs(p.Content().Text))
	}
	return pages, nil
}

// wordsFromGlyphs merges the per-glyph runs the PDF content stream yields
// into words.
func wordsFromGlyphs(glyphs []pdf.Text) []Word {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := splitRuns(glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, yj := math.Round(sorted[i].Y), math.Round(sorted[j].Y)
		if yi != yj {
			return yi > yj
		}
		return sorted[i].X < sorted[j].X
	})

	var words []Word
	var cur *Word
	var curY float64
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			words = append(words, *cur)
		}
		cur = nil
	}

	for _, g := range sorted {
		size := g.FontSize
		if size <= 0 {
			size = 10
		}
		if strings.TrimSpace(g.S) == "" {
			flush()
			continue
		}
		gap := math.Max(1, size*0.2)
		if cur != nil && (math.Abs(g.Y-curY) > size*0.5 || g.X-cur.Right() > gap) {
			flush()
		}
		if cur == nil {
			cur = &Word{X: g.X, Top: -g.Y, H: size}
			curY = g.Y
		}
		cur.Text += g.S
		if right := g.X + g.W; right > cur.Right() {
			cur.W = right - cur.X
		}
	}
	flush()
	return words
}

// splitRuns breaks multi-character runs containing spaces into one run per
// field, spreading the run width evenly over its characters.
func splitRuns(glyphs []pdf.Text) []pdf.Text {
	out := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		runes := []rune(g.S)
		if len(runes) < 2 || !strings.ContainsRune(g.S, ' ') {
			out = append(out, g)
			continue
		}
		step := g.W / float64(len(runes))
		start := -1
		for i := 0; i <= len(runes); i++ {
			if i < len(runes) && runes[i] != ' ' {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				part := g
				part.S = string(runes[start:i])
				part.X = g.X + step*float64(start)
				part.W = step * float64(i-start)
				out = append(out, part)
				start = -1
			}
		}
	}
	return out
}
