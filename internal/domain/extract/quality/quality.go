// Package quality scores cohorts, orders the final transactions and hands
// poor results to an archive.
package quality

import (
	"context"
	"log/slog"
	"sort"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// DefaultSampleSize is how many transactions go to the archive.
const DefaultSampleSize = 10

const (
	minValidShare  = 0.5
	maxUndatedGood = 0.3
	maxUndatedFair = 0.5
)

// Score rates a list of transactions. Any amount above the allowed range or
// a phone-number date string marks a mis-parse and scores Poor.
func Score(txs []statement.Transaction) statement.Quality {
	if len(txs) == 0 {
		return statement.QualityPoor
	}
	valid, undated := 0, 0
	for _, tx := range txs {
		if tx.HasAmount() && tx.Amount.Decimal.Abs().GreaterThan(statement.MaxAbsAmount) {
			return statement.QualityPoor
		}
		if normalizer.IsPhoneLike(tx.DateString) {
			return statement.QualityPoor
		}
		if tx.HasDate() && tx.HasAmount() {
			valid++
		}
		if !tx.HasDate() {
			undated++
		}
	}
	n := float64(len(txs))
	if float64(valid)/n < minValidShare {
		return statement.QualityPoor
	}
	switch share := float64(undated) / n; {
	case share < maxUndatedGood:
		return statement.QualityGood
	case share <= maxUndatedFair:
		return statement.QualityFair
	default:
		return statement.QualityPoor
	}
}

// SortStable orders transactions by date. Undated records go last; ties
// keep source order.
func SortStable(txs []statement.Transaction) []statement.Transaction {
	out := make([]statement.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.HasDate() && b.HasDate():
			return a.Date.Before(*b.Date)
		default:
			return a.HasDate() && !b.HasDate()
		}
	})
	return out
}

// Archiver stores a failed input for later analysis.
type Archiver interface {
	Archive(ctx context.Context, pdfPath string, diag statement.Diagnostics, sample []statement.Transaction) error
}

// Gate scores the final result and archives poor ones.
type Gate struct {
	archiver   Archiver
	sampleSize int
	logger     *slog.Logger
}

// NewGate builds a gate. A nil archiver disables archiving.
func NewGate(archiver Archiver, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{archiver: archiver, sampleSize: DefaultSampleSize, logger: logger}
}

// Judge sorts the result, sets its quality and, for a poor result from a
// document that had pages, calls the archiver. Archive failures are logged
// and never returned.
func (g *Gate) Judge(ctx context.Context, path string, res *statement.Result) {
	res.Transactions = SortStable(res.Transactions)
	res.Diagnostics.Quality = Score(res.Transactions)
	if res.Diagnostics.Quality != statement.QualityPoor {
		return
	}
	if len(res.Transactions) == 0 && res.Diagnostics.Profile.PageCount == 0 {
		return
	}

	g.logger.Warn("poor extraction",
		slog.String("path", path),
		slog.String("strategy", res.Diagnostics.StrategyUsed),
		slog.Int("transactions", len(res.Transactions)),
		slog.Int("strategies_tried", len(res.Diagnostics.PerStrategy)),
	)
	if g.archiver == nil {
		return
	}

	sample := res.Transactions
	if len(sample) > g.sampleSize {
		sample = sample[:g.sampleSize]
	}
	if err := g.archiver.Archive(ctx, path, res.Diagnostics, sample); err != nil {
		g.logger.Error("archive failed", slog.String("path", path), slog.Any("error", err))
		return
	}
	res.Diagnostics.Archived = true
}
