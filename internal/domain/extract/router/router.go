// Package router drives one extraction: probe, issuer detection, ordered
// strategies, normalization, reconciliation and the quality gate. It is the
// only place where strategy failures are caught.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/probe"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/quality"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/reconcile"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

const DefaultStrategyTimeout = 30 * time.Second

// Strategy run outcomes reported to the Recorder.
const (
	OutcomeOK      = "ok"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomePanic   = "panic"
)

var errPanic = errors.New("strategy panicked")

// Prober profiles a PDF.
type Prober interface {
	Profile(ctx context.Context, path string) (statement.Profile, error)
}

// Detector identifies the issuer of a statement.
type Detector interface {
	Detect(path, firstPageText string) statement.Issuer
}

// Recorder receives run metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	StrategyRun(strategy, outcome string, d time.Duration)
	RecordsRejected(strategy string, n int)
	Extraction(q statement.Quality, d time.Duration)
}

// Options tune a router. Zero values select the defaults.
type Options struct {
	StrategyTimeout time.Duration
	MinYield        int
	Clock           engine.Clock
	Recorder        Recorder
}

// Router is safe for concurrent use; every Extract call has its own state.
type Router struct {
	prober   Prober
	detector Detector
	registry *strategy.Registry
	gate     *quality.Gate
	opts     Options
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New builds a router. A nil gate scores results without archiving.
func New(prober Prober, detector Detector, registry *strategy.Registry, gate *quality.Gate, opts Options, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.StrategyTimeout <= 0 {
		opts.StrategyTimeout = DefaultStrategyTimeout
	}
	if opts.MinYield <= 0 {
		opts.MinYield = reconcile.DefaultMinYield
	}
	if opts.Clock == nil {
		opts.Clock = engine.SystemClock{}
	}
	if gate == nil {
		gate = quality.NewGate(nil, logger)
	}
	return &Router{
		prober:   prober,
		detector: detector,
		registry: registry,
		gate:     gate,
		opts:     opts,
		tracer:   otel.Tracer("github.com/FACorreiaa/statement-extractor/internal/domain/extract/router"),
		logger:   logger,
	}
}

// Extract runs the pipeline on one PDF. Only input and probe errors are
// returned; every other failure ends up in the diagnostics. When ctx
// expires the best cohort so far is returned with DeadlineExceeded set.
func (r *Router) Extract(ctx context.Context, path string) (*statement.Result, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "extract", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	profile, err := r.prober.Profile(ctx, path)
	if err != nil {
		if errors.Is(err, statement.ErrInput) || errors.Is(err, statement.ErrProbe) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		r.logger.Warn("probe interrupted", slog.String("path", path), slog.Any("error", err))
		profile = statement.Profile{}
	}

	issuer := r.detector.Detect(path, profile.FirstPageText)
	year, fromText := normalizer.InferYear(profile.FirstPageText, r.opts.Clock)
	norm := normalizer.New(year, r.logger)
	order := r.registry.Order(profile, issuer)

	r.logger.Info("extraction started",
		slog.String("path", path),
		slog.String("issuer", string(issuer)),
		slog.String("profile", probe.Summary(profile)),
		slog.Int("year", year),
		slog.Bool("year_from_text", fromText),
		slog.Int("strategies", len(order)),
	)

	res := &statement.Result{Diagnostics: statement.Diagnostics{
		InferredYear:   year,
		DetectedIssuer: issuer,
		Profile:        profile,
	}}

	rec := reconcile.New(r.opts.MinYield)
	for _, s := range order {
		if ctx.Err() != nil {
			break
		}
		cohort := r.runStrategy(ctx, s, path, profile, norm)
		res.Diagnostics.PerStrategy = append(res.Diagnostics.PerStrategy, cohort.Diagnostics)
		if rec.Offer(cohort) {
			break
		}
	}

	// The caller's deadline, not a strategy budget, ran out.
	res.Diagnostics.DeadlineExceeded = ctx.Err() != nil

	best, ok := rec.Best()
	if !ok {
		best = statement.EmptyCohort("")
	}
	final := reconcile.Finalize(best)
	res.Transactions = final.Transactions
	if final.Len() > 0 {
		res.Diagnostics.StrategyUsed = final.Diagnostics.Strategy
	}

	r.gate.Judge(context.WithoutCancel(ctx), path, res)
	res.Diagnostics.Duration = time.Since(start)
	if r.opts.Recorder != nil {
		r.opts.Recorder.Extraction(res.Diagnostics.Quality, res.Diagnostics.Duration)
	}

	span.SetAttributes(
		attribute.String("strategy_used", res.Diagnostics.StrategyUsed),
		attribute.String("quality", res.Diagnostics.Quality.String()),
		attribute.Int("transactions", len(res.Transactions)),
		attribute.Bool("adopted", rec.Adopted()),
	)
	r.logger.Info("extraction finished",
		slog.String("path", path),
		slog.String("strategy", res.Diagnostics.StrategyUsed),
		slog.String("quality", res.Diagnostics.Quality.String()),
		slog.Int("transactions", len(res.Transactions)),
		slog.Bool("adopted", rec.Adopted()),
		slog.Bool("deadline_exceeded", res.Diagnostics.DeadlineExceeded),
		slog.Duration("duration", res.Diagnostics.Duration),
	)
	return res, nil
}

type outcome struct {
	ext *statement.Extraction
	err error
}

// runStrategy executes one strategy under its own budget and turns the
// result into a scored cohort. It never fails: errors, panics and timeouts
// become an empty cohort carrying the reason.
func (r *Router) runStrategy(ctx context.Context, s strategy.Strategy, path string, profile statement.Profile, norm *normalizer.Normalizer) statement.Cohort {
	name := s.Name()
	start := time.Now()
	sctx, cancel := context.WithTimeout(ctx, r.opts.StrategyTimeout)
	defer cancel()
	sctx, span := r.tracer.Start(sctx, "strategy/"+name)
	defer span.End()

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("strategy panicked",
					slog.String("strategy", name),
					slog.Any("panic", p),
					slog.String("stack", string(debug.Stack())))
				done <- outcome{err: fmt.Errorf("%w: %v", errPanic, p)}
			}
		}()
		ext, err := s.Extract(sctx, path, profile)
		done <- outcome{ext: ext, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-sctx.Done():
		out = outcome{err: sctx.Err()}
	}
	elapsed := time.Since(start)

	if out.err != nil {
		cohort := statement.EmptyCohort(name)
		cohort.Diagnostics.Duration = elapsed
		result := OutcomeError
		switch {
		case errors.Is(out.err, context.DeadlineExceeded) || errors.Is(out.err, context.Canceled):
			result = OutcomeTimeout
			cohort.Diagnostics.TimedOut = true
			out.err = statement.TimeoutError(name, out.err)
		case errors.Is(out.err, errPanic):
			result = OutcomePanic
			out.err = statement.StrategyError(name, out.err)
		default:
			out.err = statement.StrategyError(name, out.err)
		}
		cohort.Diagnostics.Error = out.err.Error()
		span.RecordError(out.err)
		span.SetStatus(codes.Error, result)
		r.logger.Warn("strategy failed",
			slog.String("strategy", name),
			slog.String("outcome", result),
			slog.Any("error", out.err),
			slog.Duration("duration", elapsed))
		r.record(name, result, elapsed, 0)
		return cohort
	}

	cohort := norm.Normalize(out.ext)
	cohort.Diagnostics.Strategy = name
	cohort = reconcile.Repair(cohort)
	cohort.Diagnostics.Quality = quality.Score(cohort.Transactions)
	cohort.Diagnostics.Duration = elapsed

	result := OutcomeOK
	if cohort.Len() == 0 {
		result = OutcomeEmpty
	}
	span.SetAttributes(
		attribute.Int("raw", cohort.Diagnostics.RawCount),
		attribute.Int("rejected", cohort.Diagnostics.RejectedCount),
		attribute.String("quality", cohort.Diagnostics.Quality.String()),
	)
	r.logger.Debug("strategy finished",
		slog.String("strategy", name),
		slog.Int("raw", cohort.Diagnostics.RawCount),
		slog.Int("kept", cohort.Len()),
		slog.Int("rejected", cohort.Diagnostics.RejectedCount),
		slog.String("quality", cohort.Diagnostics.Quality.String()),
		slog.Duration("duration", elapsed))
	r.record(name, result, elapsed, cohort.Diagnostics.RejectedCount)
	return cohort
}

func (r *Router) record(name, result string, d time.Duration, rejected int) {
	if r.opts.Recorder == nil {
		return
	}
	r.opts.Recorder.StrategyRun(name, result, d)
	if rejected > 0 {
		r.opts.Recorder.RecordsRejected(name, rejected)
	}
}
