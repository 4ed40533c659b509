// Package metrics exposes extraction counters and timings to Prometheus.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Metrics holds the extraction collectors on their own registry.
type Metrics struct {
	registry         *prometheus.Registry
	extractions      *prometheus.CounterVec
	strategyRuns     *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	rejected         *prometheus.CounterVec
	extractDuration  prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_extractions_total",
			Help: "Finished extractions by final quality.",
		}, []string{"quality"}),
		strategyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_strategy_runs_total",
			Help: "Strategy runs by outcome.",
		}, []string{"strategy", "outcome"}),
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statement_strategy_duration_seconds",
			Help:    "Time spent in each strategy.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_records_rejected_total",
			Help: "Raw records dropped by normalization and repair.",
		}, []string{"strategy"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_extraction_duration_seconds",
			Help:    "End to end extraction time.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	m.registry.MustRegister(m.extractions, m.strategyRuns, m.strategyDuration, m.rejected, m.extractDuration)
	return m
}

func (m *Metrics) StrategyRun(strategy, outcome string, d time.Duration) {
	m.strategyRuns.WithLabelValues(strategy, outcome).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) RecordsRejected(strategy string, n int) {
	m.rejected.WithLabelValues(strategy).Add(float64(n))
}

func (m *Metrics) Extraction(q statement.Quality, d time.Duration) {
	m.extractions.WithLabelValues(q.String()).Inc()
	m.extractDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on port until ctx is done.
func (m *Metrics) Serve(ctx context.Context, port int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", slog.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
