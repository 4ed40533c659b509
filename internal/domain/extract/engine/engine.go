// Package engine wraps the PDF, table, raster and OCR collaborators the
// extraction core depends on. Strategies only see the interfaces declared
// here, so tests substitute in-memory fakes.
package engine

import (
	"context"
	"image"
	"time"
)

// Word is a positioned token on a page. Top grows downwards so sorting by
// Top then X yields reading order.
type Word struct {
	Text string
	X    float64
	Top  float64
	W    float64
	H    float64
}

// Right returns the x coordinate of the word's right edge.
func (w Word) Right() float64 { return w.X + w.W }

// Table is an ordered cell grid. Every row has the same number of cells.
type Table struct {
	Page int
	Rows [][]string
}

// OCRWord is a recognized token with its confidence in 0..100.
type OCRWord struct {
	Text   string
	Conf   float64
	Left   int
	Top    int
	Width  int
	Height int
	Block  int
	Par    int
	Line   int
}

// Inspection is what the structural inspector learns about a PDF.
type Inspection struct {
	PageCount int
	HasImages bool
}

// TextEngine returns layout-preserving text and word boxes, one entry per
// page. maxPages <= 0 reads the whole document.
type TextEngine interface {
	LayoutText(ctx context.Context, path string, maxPages int) ([]string, error)
	Words(ctx context.Context, path string, maxPages int) ([][]Word, error)
}

// TableEngine returns tables found in the document.
type TableEngine interface {
	Tables(ctx context.Context, path string, maxPages int) ([]Table, error)
}

// Rasterizer renders a single 1-based page to pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, path string, page, dpi int) (image.Image, error)
}

// OCREngine recognizes the words of one page image.
type OCREngine interface {
	Recognize(ctx context.Context, img image.Image) ([]OCRWord, error)
}

// Inspector reports page count and image XObjects.
type Inspector interface {
	Inspect(ctx context.Context, path string, maxPages int) (Inspection, error)
}

// Clock supplies the current time for year inference.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }
