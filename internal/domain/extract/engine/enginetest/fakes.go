// Package enginetest provides in-memory engine implementations for tests.
package enginetest

import (
	"context"
	"image"
	"strings"
	"sync"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
)

// Text serves fixed per-page layout text and words.
type Text struct {
	Pages     []string
	PageWords [][]engine.Word
	Err       error

	mu    sync.Mutex
	calls int
}

// NewText builds a fake whose pages are the given layout strings.
func NewText(pages ...string) *Text {
	return &Text{Pages: pages}
}

func (t *Text) LayoutText(ctx context.Context, _ string, maxPages int) ([]string, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Err != nil {
		return nil, t.Err
	}
	return limit(t.Pages, maxPages), nil
}

func (t *Text) Words(ctx context.Context, _ string, maxPages int) ([][]engine.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Err != nil {
		return nil, t.Err
	}
	if t.PageWords != nil {
		return limit(t.PageWords, maxPages), nil
	}
	pages := limit(t.Pages, maxPages)
	out := make([][]engine.Word, len(pages))
	for i, p := range pages {
		out[i] = WordsFromLayout(p)
	}
	return out, nil
}

// Calls returns how many times LayoutText ran.
func (t *Text) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// WordsFromLayout turns monospace text into words, one character per
// 6 units horizontally and 12 units per line.
func WordsFromLayout(text string) []engine.Word {
	var words []engine.Word
	for row, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		start := -1
		for i := 0; i <= len(runes); i++ {
			if i < len(runes) && runes[i] != ' ' {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				words = append(words, engine.Word{
					Text: string(runes[start:i]),
					X:    float64(start * 6),
					Top:  float64(row * 12),
					W:    float64((i - start) * 6),
					H:    10,
				})
				start = -1
			}
		}
	}
	return words
}

// Tables serves fixed tables.
type Tables struct {
	Fixed []engine.Table
	Err   error
}

func (t *Tables) Tables(ctx context.Context, _ string, maxPages int) ([]engine.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.Err != nil {
		return nil, t.Err
	}
	var out []engine.Table
	for _, tb := range t.Fixed {
		if maxPages > 0 && tb.Page > maxPages {
			continue
		}
		out = append(out, tb)
	}
	return out, nil
}

// Inspector returns a fixed inspection.
type Inspector struct {
	Result engine.Inspection
	Err    error
}

func (i *Inspector) Inspect(ctx context.Context, _ string, _ int) (engine.Inspection, error) {
	if err := ctx.Err(); err != nil {
		return engine.Inspection{}, err
	}
	return i.Result, i.Err
}

// Rasterizer returns a blank white page per call and records which pages
// were rendered.
type Rasterizer struct {
	Width, Height int

	mu       sync.Mutex
	Rendered []int
}

func (r *Rasterizer) Rasterize(ctx context.Context, _ string, page, _ int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.Rendered = append(r.Rendered, page)
	r.mu.Unlock()
	w, h := r.Width, r.Height
	if w == 0 {
		w, h = 32, 32
	}
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img, nil
}

// OCR returns pre-recorded words page by page, in call order.
type OCR struct {
	Pages [][]engine.OCRWord
	Err   error

	mu   sync.Mutex
	next int
}

func (o *OCR) Recognize(ctx context.Context, _ image.Image) ([]engine.OCRWord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.Err != nil {
		return nil, o.Err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.next >= len(o.Pages) {
		return nil, nil
	}
	page := o.Pages[o.next]
	o.next++
	return page, nil
}

// OCRLine lays text out as recognized words on one line; runs of two or
// more spaces in the input become wide gaps.
func OCRLine(line int, text string, conf float64) []engine.OCRWord {
	var words []engine.OCRWord
	for _, w := range WordsFromLayout(text) {
		words = append(words, engine.OCRWord{
			Text:   w.Text,
			Conf:   conf,
			Block:  1,
			Par:    1,
			Line:   line,
			Left:   int(w.X),
			Top:    line * 20,
			Width:  int(w.W),
			Height: 10,
		})
	}
	return words
}

// Runner records commands and replays canned output.
type Runner struct {
	Stdout map[string][]byte
	Err    map[string]error

	mu    sync.Mutex
	Calls [][]string
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	r.Calls = append(r.Calls, append([]string{name}, args...))
	r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Err[name]; err != nil {
		return nil, &engine.CommandError{Name: name, Stderr: "failed", Err: err}
	}
	return r.Stdout[name], nil
}

func limit[T any](pages []T, maxPages int) []T {
	if maxPages > 0 && len(pages) > maxPages {
		return pages[:maxPages]
	}
	return pages
}
