package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	info, err := s.Upload(ctx, "pdf", "../jan:statement.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size)
	assert.NotContains(t, info.Path, "/")
	assert.NotContains(t, info.Path, "..")

	got, err := s.GetInfo(ctx, "pdf", info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	data, err := os.ReadFile(filepath.Join(s.bucketDir("pdf"), got.Path))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(data))

	files, err := s.List(ctx, "pdf")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	require.NoError(t, s.Delete(ctx, "pdf", info.ID))
	_, err = s.GetInfo(ctx, "pdf", info.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageEmptyBucket(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	files, err := s.List(context.Background(), "report")
	require.NoError(t, err)
	assert.Empty(t, files)

	assert.ErrorIs(t, s.Delete(context.Background(), "report", uuid.New()), ErrNotFound)
}

func TestNewLocalStorageNeedsPath(t *testing.T) {
	_, err := NewLocalStorage("")
	assert.Error(t, err)
}

func TestArchiveWritesPDFAndReport(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	a := NewArchive(s, nil)

	src := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0o600))

	diag := statement.Diagnostics{StrategyUsed: "text-layout", Quality: statement.QualityPoor}
	sample := []statement.Transaction{{Description: "Coffee", DateString: "01/02"}}
	require.NoError(t, a.Archive(ctx, src, diag, sample))

	pdfs, err := s.List(ctx, BucketPDF)
	require.NoError(t, err)
	require.Len(t, pdfs, 1)
	assert.Equal(t, "bad.pdf", pdfs[0].Name)

	reports, err := s.List(ctx, BucketReport)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	data, err := os.ReadFile(filepath.Join(s.bucketDir(BucketReport), reports[0].Path))
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, pdfs[0].ID.String(), raw["pdf_id"])
	assert.Equal(t, "poor", raw["diagnostics"].(map[string]any)["quality_score"])
}

func TestArchiveMissingSource(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	err = NewArchive(s, nil).Archive(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), statement.Diagnostics{}, nil)
	assert.Error(t, err)
}

func TestSweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	old, err := s.Upload(ctx, BucketPDF, "old.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = s.Upload(ctx, BucketReport, old.ID.String()+".json", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(29 * 24 * time.Hour) }
	_, err = s.Upload(ctx, BucketPDF, "new.pdf", "application/pdf", strings.NewReader("y"))
	require.NoError(t, err)

	a := NewArchive(s, nil)
	a.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	removed, err := a.Sweep(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	left, err := s.List(ctx, BucketPDF)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new.pdf", left[0].Name)
}
