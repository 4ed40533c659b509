package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// DefaultDPI is the raster resolution used for recognition.
const DefaultDPI = 300

// lowPageConfidence flags every amount read from a page whose mean word
// confidence falls below it.
const lowPageConfidence = 0.6

var ErrNoPages = errors.New("document has no pages")

// OCR rasterizes each page, cleans it up and recognizes its text, then
// applies the line catalog with confusion tolerant amounts.
type OCR struct {
	inspector engine.Inspector
	raster    engine.Rasterizer
	ocr       engine.OCREngine
	parser    *LineParser
	dpi       int
	logger    *slog.Logger
}

func NewOCR(inspector engine.Inspector, raster engine.Rasterizer, ocr engine.OCREngine, dpi int, logger *slog.Logger) *OCR {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OCR{
		inspector: inspector,
		raster:    raster,
		ocr:       ocr,
		parser:    NewLineParser(ParserConfig{OCR: true}),
		dpi:       dpi,
		logger:    logger,
	}
}

func (s *OCR) Name() string { return NameOCR }

func (s *OCR) Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error) {
	pageCount := profile.PageCount
	if s.inspector != nil {
		if insp, err := s.inspector.Inspect(ctx, path, 0); err == nil && insp.PageCount > 0 {
			pageCount = insp.PageCount
		}
	}
	if pageCount == 0 {
		return nil, ErrNoPages
	}

	texts := make([]string, 0, pageCount)
	lowPages := make(map[int]bool)
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, conf, err := s.page(ctx, path, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if conf < lowPageConfidence {
			lowPages[page] = true
		}
		texts = append(texts, text)
		s.logger.Debug("page recognized",
			slog.Int("page", page),
			slog.Float64("confidence", conf))
	}

	records, err := s.parser.Parse(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if lowPages[records[i].Page] {
			records[i].LowAmountConfidence = true
		}
	}
	return &statement.Extraction{
		Strategy:  NameOCR,
		Records:   records,
		DateOrder: GuessDateOrder(records, statement.MonthFirst),
		Context:   GuessContext(strings.Join(texts[:1], "")),
		OCR:       true,
	}, nil
}

// page recognizes one page. The raster and its preprocessed copy go out
// of scope before the next page is rendered.
func (s *OCR) page(ctx context.Context, path string, page int) (string, float64, error) {
	img, err := s.raster.Rasterize(ctx, path, page, s.dpi)
	if err != nil {
		return "", 0, fmt.Errorf("rasterize: %w", err)
	}
	words, err := s.ocr.Recognize(ctx, engine.Preprocess(img))
	if err != nil {
		return "", 0, fmt.Errorf("recognize: %w", err)
	}
	return strings.Join(engine.OCRLines(words), "\n"), engine.MeanConfidence(words), nil
}
