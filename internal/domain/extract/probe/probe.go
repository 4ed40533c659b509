// Package probe measures the first pages of a PDF so the router can order
// strategies: text density, tables, images and column alignment.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

const (
	DefaultMaxPages = 3

	columnBucket     = 10
	minClusterWords  = 3
	minColumnBuckets = 5
	maxColumnBuckets = 20
)

// Prober computes statement.Profile values.
type Prober struct {
	text      engine.TextEngine
	tables    engine.TableEngine
	inspector engine.Inspector
	maxPages  int
	logger    *slog.Logger
}

// New builds a prober. inspector and tables may be nil; maxPages <= 0 means
// DefaultMaxPages.
func New(text engine.TextEngine, tables engine.TableEngine, inspector engine.Inspector, maxPages int, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Prober{text: text, tables: tables, inspector: inspector, maxPages: maxPages, logger: logger}
}

// Profile inspects a PDF. A missing or unreadable file is an input error and
// an encrypted document a probe error. Any other analysis failure yields a
// zero profile so extraction can still proceed.
func (p *Prober) Profile(ctx context.Context, path string) (statement.Profile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return statement.Profile{}, statement.InputError("probe", err)
	}
	if info.IsDir() {
		return statement.Profile{}, statement.InputError("probe", fmt.Errorf("%s is a directory", path))
	}
	f, err := os.Open(path)
	if err != nil {
		return statement.Profile{}, statement.InputError("probe", err)
	}
	f.Close()

	profile, err := p.measure(ctx, path)
	switch {
	case err == nil:
		return profile, nil
	case errors.Is(err, engine.ErrEncrypted):
		return statement.Profile{}, statement.ProbeError("probe", err)
	case ctx.Err() != nil:
		return statement.Profile{}, ctx.Err()
	default:
		p.logger.Warn("probe failed, continuing with empty profile",
			slog.String("path", path), slog.Any("error", err))
		return statement.Profile{}, nil
	}
}

func (p *Prober) measure(ctx context.Context, path string) (statement.Profile, error) {
	pages, err := p.text.LayoutText(ctx, path, p.maxPages)
	if err != nil {
		return statement.Profile{}, fmt.Errorf("layout text: %w", err)
	}

	var prof statement.Profile
	if len(pages) > 0 {
		prof.FirstPageText = pages[0]
		chars := 0
		for _, page := range pages {
			chars += countChars(page)
		}
		prof.AvgCharsPerPage = float64(chars) / float64(len(pages))
	}
	prof.PageCount = len(pages)

	if p.inspector != nil {
		insp, err := p.inspector.Inspect(ctx, path, p.maxPages)
		switch {
		case errors.Is(err, engine.ErrEncrypted):
			return statement.Profile{}, err
		case err != nil:
			// Strict structural parsers reject many real statements; the
			// text engine already told us enough to go on.
			p.logger.Debug("inspector failed", slog.String("path", path), slog.Any("error", err))
		default:
			prof.HasImages = insp.HasImages
			if insp.PageCount > 0 {
				prof.PageCount = insp.PageCount
			}
		}
	}

	if p.tables != nil {
		tables, err := p.tables.Tables(ctx, path, p.maxPages)
		if err != nil {
			p.logger.Debug("table analysis failed", slog.String("path", path), slog.Any("error", err))
		}
		prof.TableCount = len(tables)
	}

	words, err := p.text.Words(ctx, path, p.maxPages)
	if err != nil {
		if errors.Is(err, engine.ErrEncrypted) {
			return statement.Profile{}, err
		}
		p.logger.Debug("word boxes unavailable", slog.String("path", path), slog.Any("error", err))
	}
	for _, page := range words {
		if HasColumns(page) {
			prof.HasColumns = true
			break
		}
	}

	prof = prof.Classify()
	p.logger.Debug("probed",
		slog.String("path", path),
		slog.Int("pages", prof.PageCount),
		slog.Float64("avg_chars", prof.AvgCharsPerPage),
		slog.Int("tables", prof.TableCount),
		slog.Bool("images", prof.HasImages),
		slog.Bool("columns", prof.HasColumns),
		slog.String("complexity", string(prof.Complexity)),
	)
	return prof, nil
}

// HasColumns reports whether word left edges, rounded to the nearest ten
// units, fall into 5 to 20 clusters of at least three words each.
func HasColumns(words []engine.Word) bool {
	buckets := make(map[int]int)
	for _, w := range words {
		buckets[int(math.Round(w.X/columnBucket))]++
	}
	clusters := 0
	for _, n := range buckets {
		if n >= minClusterWords {
			clusters++
		}
	}
	return clusters >= minColumnBuckets && clusters <= maxColumnBuckets
}

func countChars(page string) int {
	n := 0
	for _, r := range page {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// Summary renders a profile for logs.
func Summary(p statement.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d pages, %.0f chars/page, %s", p.PageCount, p.AvgCharsPerPage, p.Complexity)
	if p.IsScanned {
		b.WriteString(", scanned")
	}
	if p.HasTables {
		fmt.Fprintf(&b, ", %d tables", p.TableCount)
	}
	return b.String()
}
