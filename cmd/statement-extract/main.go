// Command statement-extract pulls transactions out of bank and credit-card
// statement PDFs.
//
//	statement-extract [-format csv|markdown|xlsx|json] [-out dir] file.pdf...
//	statement-extract -serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/batch"
	"github.com/FACorreiaa/statement-extractor/internal/domain/export"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
)

type options struct {
	format   string
	out      string
	opening  string
	currency string
	serve    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.format, "format", "csv", "output format: csv, markdown, xlsx or json")
	flag.StringVar(&opts.out, "out", "", "directory for one output file per input (default stdout)")
	flag.StringVar(&opts.opening, "opening", "", "opening balance for a running balance column")
	flag.StringVar(&opts.currency, "currency", "USD", "currency code for markdown amounts")
	flag.BoolVar(&opts.serve, "serve", false, "run the archive sweep and metrics endpoint until interrupted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	deps, err := InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", slog.Any("error", err))
		os.Exit(1)
	}
	defer deps.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if deps.Metrics != nil {
		go func() {
			if err := deps.Metrics.Serve(ctx, cfg.Observability.MetricsPort, logger); err != nil {
				logger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	if opts.serve {
		if err := serve(ctx, deps); err != nil {
			logger.Error("serve failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(ctx, deps, opts, flag.Args()); err != nil {
		logger.Error("extraction failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}))
}

func serve(ctx context.Context, deps *Dependencies) error {
	if deps.Scheduler == nil && deps.Metrics == nil {
		return errors.New("nothing to serve: enable ARCHIVE_ENABLED or METRICS_ENABLED")
	}
	if deps.Scheduler != nil {
		if err := deps.Scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		// Clear anything that expired while the process was down.
		deps.Scheduler.RunNow()
	}
	<-ctx.Done()
	return nil
}

func run(ctx context.Context, deps *Dependencies, opts options, paths []string) error {
	exportOpts := export.Options{Currency: strings.ToUpper(opts.currency)}
	if opts.opening != "" {
		opening, err := decimal.NewFromString(opts.opening)
		if err != nil {
			return fmt.Errorf("invalid opening balance %q: %w", opts.opening, err)
		}
		exportOpts.Opening = decimal.NewNullDecimal(opening)
	}
	if opts.format == "xlsx" && opts.out == "" {
		return errors.New("xlsx output needs -out")
	}

	items := deps.Batch.Run(ctx, paths)

	var failed int
	for _, it := range items {
		if it.Err != nil {
			failed++
			continue
		}
		if err := write(it, opts, exportOpts, len(items) > 1); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(items))
	}
	return nil
}

func write(it batch.Item, opts options, exportOpts export.Options, multi bool) error {
	var w io.Writer = os.Stdout
	if opts.out != "" {
		name := strings.TrimSuffix(filepath.Base(it.Path), filepath.Ext(it.Path)) + "." + extension(opts.format)
		f, err := os.Create(filepath.Join(opts.out, name))
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	} else if multi {
		fmt.Fprintf(os.Stdout, "# %s\n", it.Path)
	}

	return render(w, it.Result, opts.format, exportOpts)
}

func render(w io.Writer, res *statement.Result, format string, exportOpts export.Options) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, res.Transactions, exportOpts)
	case "markdown", "md":
		_, err := io.WriteString(w, export.Markdown(res.Transactions, exportOpts))
		return err
	case "xlsx":
		return export.WriteXLSX(w, res.Transactions, exportOpts)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func extension(format string) string {
	if format == "markdown" {
		return "md"
	}
	return format
}
