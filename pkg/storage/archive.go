package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Buckets used by the archive.
const (
	BucketPDF    = "pdf"
	BucketReport = "report"
)

// Report is the JSON document stored next to an archived PDF.
type Report struct {
	PDF         uuid.UUID               `json:"pdf_id"`
	Source      string                  `json:"source"`
	ArchivedAt  time.Time               `json:"archived_at"`
	Diagnostics statement.Diagnostics   `json:"diagnostics"`
	Sample      []statement.Transaction `json:"sample"`
}

// Archive stores PDFs whose extraction failed the quality gate.
type Archive struct {
	store  Storage
	logger *slog.Logger
	now    func() time.Time
}

func NewArchive(store Storage, logger *slog.Logger) *Archive {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{store: store, logger: logger, now: time.Now}
}

// Archive copies the PDF and writes its report.
func (a *Archive) Archive(ctx context.Context, pdfPath string, diag statement.Diagnostics, sample []statement.Transaction) error {
	f, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pdf, err := a.store.Upload(ctx, BucketPDF, filepath.Base(pdfPath), "application/pdf", f)
	if err != nil {
		return fmt.Errorf("upload pdf: %w", err)
	}

	report := Report{
		PDF:         pdf.ID,
		Source:      pdfPath,
		ArchivedAt:  a.now().UTC(),
		Diagnostics: diag,
		Sample:      sample,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := a.store.Upload(ctx, BucketReport, pdf.ID.String()+".json", "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload report: %w", err)
	}

	a.logger.Info("statement archived",
		slog.String("source", pdfPath),
		slog.String("id", pdf.ID.String()),
		slog.String("quality", diag.Quality.String()))
	return nil
}

// Sweep deletes archived files older than maxAge and returns how many were
// removed. It keeps going past individual failures and reports the first.
func (a *Archive) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := a.now().Add(-maxAge)
	removed := 0
	var firstErr error
	for _, bucket := range []string{BucketPDF, BucketReport} {
		files, err := a.store.List(ctx, bucket)
		if err != nil {
			return removed, fmt.Errorf("list %s: %w", bucket, err)
		}
		for _, info := range files {
			if !info.CreatedAt.Before(cutoff) {
				continue
			}
			if err := a.store.Delete(ctx, bucket, info.ID); err != nil {
				a.logger.Warn("sweep delete failed",
					slog.String("bucket", bucket),
					slog.String("id", info.ID.String()),
					slog.Any("error", err))
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			removed++
		}
	}
	return removed, firstErr
}
