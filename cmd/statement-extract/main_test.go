package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/pkg/cron"
	"github.com/FACorreiaa/statement-extractor/pkg/storage"
)

func TestServeNeedsSomethingToRun(t *testing.T) {
	assert.Error(t, serve(context.Background(), &Dependencies{}))
}

func TestServeSweepsExpiredArchiveOnStart(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Upload(context.Background(), storage.BucketPDF, "old.pdf", "application/pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	archive := storage.NewArchive(store, nil)
	sched := cron.NewScheduler(archive, "@every 1h", time.Millisecond, nil)
	defer func() { <-sched.Stop().Done() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, &Dependencies{Scheduler: sched}) }()

	assert.Eventually(t, func() bool {
		files, err := store.List(context.Background(), storage.BucketPDF)
		return err == nil && len(files) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
