package router

import (
	"log/slog"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy/issuers"
)

// Engines bundles the collaborators the built-in strategies use. Nil
// engines leave the strategies that need them out of every order.
type Engines struct {
	Text      engine.TextEngine
	Tables    engine.TableEngine
	Inspector engine.Inspector
	Raster    engine.Rasterizer
	OCR       engine.OCREngine
	DPI       int

	// OCRReady reports whether the rasterizer and OCR binaries can run.
	// Nil means they can.
	OCRReady func() bool
}

// NewRegistry registers the five generic strategies and every issuer
// specialization over the given engines.
func NewRegistry(e Engines, logger *slog.Logger) *strategy.Registry {
	if logger == nil {
		logger = slog.Default()
	}
	hasText := func() bool { return e.Text != nil }

	reg := strategy.NewRegistry()
	reg.MustRegister(
		strategy.Entry{
			Name:  strategy.NameTable,
			New:   func() strategy.Strategy { return strategy.NewTable(e.Tables, logger) },
			Ready: func() bool { return e.Tables != nil },
		},
		strategy.Entry{
			Name:  strategy.NameTextLayout,
			New:   func() strategy.Strategy { return strategy.NewTextLayout(e.Text, logger) },
			Ready: hasText,
		},
		strategy.Entry{
			Name:  strategy.NameColumnPosition,
			New:   func() strategy.Strategy { return strategy.NewColumn(e.Text, logger) },
			Ready: hasText,
		},
		strategy.Entry{
			Name: strategy.NameOCR,
			New: func() strategy.Strategy {
				return strategy.NewOCR(e.Inspector, e.Raster, e.OCR, e.DPI, logger)
			},
			Ready: func() bool {
				return e.Raster != nil && e.OCR != nil && (e.OCRReady == nil || e.OCRReady())
			},
		},
		strategy.Entry{
			Name:  strategy.NameSummary,
			New:   func() strategy.Strategy { return strategy.NewSummary(e.Text, logger) },
			Ready: hasText,
		},
	)
	reg.MustRegister(issuers.Entries(e.Text, hasText, logger)...)
	logger.Debug("strategies registered", slog.Any("names", reg.Names()))
	return reg
}
