// Package batch extracts many statements with a bounded worker pool.
package batch

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// DefaultWorkers is used when the worker count is not positive.
const DefaultWorkers = 4

// Extractor is satisfied by router.Router.
type Extractor interface {
	Extract(ctx context.Context, path string) (*statement.Result, error)
}

// Item is the outcome for one input file.
type Item struct {
	Path   string
	Result *statement.Result
	Err    error
}

type Runner struct {
	extractor Extractor
	workers   int
	logger    *slog.Logger
}

func NewRunner(extractor Extractor, workers int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{extractor: extractor, workers: workers, logger: logger}
}

// Run extracts every path and returns one Item per path in input order.
// A failing file does not stop the others. Files not yet started when ctx
// is done report ctx's error.
func (r *Runner) Run(ctx context.Context, paths []string) []Item {
	start := time.Now()
	items := make([]Item, len(paths))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, path := range paths {
		items[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			res, err := r.extractor.Extract(ctx, path)
			items[i].Result, items[i].Err = res, err
			if err != nil {
				r.logger.Warn("statement extraction failed",
					slog.String("path", path),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	r.logger.Info("batch extraction finished",
		slog.Int("files", len(paths)),
		slog.Int("failed", failed),
		slog.Int("workers", r.workers),
		slog.Duration("duration", time.Since(start)),
	)
	return items
}
