package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// LineOptions configures a line oriented strategy. Issuer families build
// their extractors from these.
type LineOptions struct {
	Parser ParserConfig
	// DateOrder is used when GuessOrder is false or finds no evidence.
	DateOrder  statement.DateOrder
	GuessOrder bool
	// Context is the account context; ContextUnknown lets the strategy
	// guess it from the first page.
	Context      statement.AccountContext
	SignKeywords statement.SignKeywords
	Cleaners     []*regexp.Regexp
	// Post adjusts each record after parsing.
	Post func(*statement.RawRecord)
}

// TextLayout reads layout preserving text and applies a line catalog.
type TextLayout struct {
	name   string
	text   engine.TextEngine
	parser *LineParser
	opts   LineOptions
	logger *slog.Logger
}

// NewTextLayout builds the generic text layout strategy.
func NewTextLayout(text engine.TextEngine, logger *slog.Logger) *TextLayout {
	return NewLineStrategy(NameTextLayout, text, LineOptions{GuessOrder: true}, logger)
}

// NewLineStrategy builds a named line strategy from options.
func NewLineStrategy(name string, text engine.TextEngine, opts LineOptions, logger *slog.Logger) *TextLayout {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextLayout{
		name:   name,
		text:   text,
		parser: NewLineParser(opts.Parser),
		opts:   opts,
		logger: logger,
	}
}

func (s *TextLayout) Name() string { return s.name }

func (s *TextLayout) Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error) {
	pages, err := s.text.LayoutText(ctx, path, 0)
	if err != nil {
		return nil, fmt.Errorf("layout text: %w", err)
	}
	records, err := s.parser.Parse(ctx, pages)
	if err != nil {
		return nil, err
	}
	if s.opts.Post != nil {
		for i := range records {
			s.opts.Post(&records[i])
		}
	}
	s.logger.Debug("lines parsed",
		slog.String("strategy", s.name),
		slog.Int("pages", len(pages)),
		slog.Int("records", len(records)))
	return s.extraction(records, profile), nil
}

func (s *TextLayout) extraction(records []statement.RawRecord, profile statement.Profile) *statement.Extraction {
	order := s.opts.DateOrder
	if s.opts.GuessOrder {
		order = GuessDateOrder(records, order)
	}
	ctxKind := s.opts.Context
	if ctxKind == statement.ContextUnknown {
		ctxKind = GuessContext(profile.FirstPageText)
	}
	return &statement.Extraction{
		Strategy:     s.name,
		Records:      records,
		DateOrder:    order,
		Context:      ctxKind,
		OCR:          s.opts.Parser.OCR,
		SignKeywords: s.opts.SignKeywords,
		Cleaners:     s.opts.Cleaners,
	}
}
