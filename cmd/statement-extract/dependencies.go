package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/FACorreiaa/statement-extractor/internal/domain/batch"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/issuer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/probe"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/quality"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/router"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
	"github.com/FACorreiaa/statement-extractor/pkg/cron"
	"github.com/FACorreiaa/statement-extractor/pkg/metrics"
	"github.com/FACorreiaa/statement-extractor/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	// Engines
	Engines router.Engines

	// Services
	Metrics   *metrics.Metrics
	Archive   *storage.Archive
	Router    *router.Router
	Batch     *batch.Runner
	Scheduler *cron.Scheduler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initEngines()

	if err := deps.initArchive(); err != nil {
		return nil, fmt.Errorf("failed to initialize archive: %w", err)
	}

	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initEngines picks external binaries when they are installed and falls
// back to the pure Go readers otherwise.
func (d *Dependencies) initEngines() {
	cfg := d.Config.Engines
	runner := engine.ExecRunner{Logger: d.Logger}

	pdftotext := cfg.PdftotextBin
	if !engine.Available(pdftotext) {
		d.Logger.Warn("pdftotext not found, using built-in layout", slog.String("bin", pdftotext))
		pdftotext = ""
	}
	text := engine.NewPDFTextEngine(pdftotext, runner, d.Logger)

	d.Engines = router.Engines{
		Text:      text,
		Tables:    engine.NewGeometryTableEngine(text),
		Inspector: engine.PDFCPUInspector{},
		Raster:    engine.NewPdftoppmRasterizer(cfg.PdftoppmBin, runner),
		OCR:       engine.NewTesseractEngine(cfg.TesseractBin, cfg.OCRLang, runner),
		DPI:       cfg.OCRDPI,
		OCRReady: func() bool {
			return engine.Available(cfg.PdftoppmBin) && engine.Available(cfg.TesseractBin)
		},
	}

	d.Logger.Info("engines initialized",
		slog.Bool("pdftotext", pdftotext != ""),
		slog.Bool("ocr", d.Engines.OCRReady()),
	)
}

func (d *Dependencies) initArchive() error {
	if !d.Config.Archive.Enabled {
		return nil
	}

	if err := os.MkdirAll(d.Config.Archive.Path, 0o755); err != nil {
		return err
	}
	store, err := storage.New(storage.Config{LocalPath: d.Config.Archive.Path})
	if err != nil {
		return err
	}
	d.Archive = storage.NewArchive(store, d.Logger)
	d.Scheduler = cron.NewScheduler(d.Archive, d.Config.Archive.SweepSchedule, d.Config.Archive.Retention, d.Logger)

	d.Logger.Info("archive initialized", slog.String("path", d.Config.Archive.Path))
	return nil
}

func (d *Dependencies) initServices() {
	var archiver quality.Archiver
	if d.Archive != nil {
		archiver = d.Archive
	}

	opts := router.Options{
		StrategyTimeout: d.Config.Extract.StrategyTimeout,
		MinYield:        d.Config.Extract.MinYield,
		Clock:           engine.SystemClock{},
	}
	if d.Config.Observability.MetricsEnabled {
		d.Metrics = metrics.New()
		opts.Recorder = d.Metrics
	}

	d.Router = router.New(
		probe.New(d.Engines.Text, d.Engines.Tables, d.Engines.Inspector, d.Config.Extract.ProbeMaxPages, d.Logger),
		issuer.NewDetector(d.Logger),
		router.NewRegistry(d.Engines, d.Logger),
		quality.NewGate(archiver, d.Logger),
		opts,
		d.Logger,
	)
	d.Batch = batch.NewRunner(d.Router, d.Config.Batch.Workers, d.Logger)

	d.Logger.Info("services initialized")
}

// Cleanup stops background jobs
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}
