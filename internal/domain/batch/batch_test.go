package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

type fakeExtractor struct {
	delay   time.Duration
	fail    map[string]bool
	active  atomic.Int32
	mu      sync.Mutex
	maxSeen int32
}

func (f *fakeExtractor) Extract(ctx context.Context, path string) (*statement.Result, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	f.mu.Lock()
	if n > f.maxSeen {
		f.maxSeen = n
	}
	f.mu.Unlock()

	time.Sleep(f.delay)
	if f.fail[path] {
		return nil, statement.InputError("probe", errors.New("no such file"))
	}
	return &statement.Result{Diagnostics: statement.Diagnostics{StrategyUsed: path}}, nil
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	ex := &fakeExtractor{fail: map[string]bool{"b.pdf": true}}
	items := NewRunner(ex, 2, nil).Run(context.Background(), []string{"a.pdf", "b.pdf", "c.pdf"})

	require.Len(t, items, 3)
	assert.Equal(t, "a.pdf", items[0].Result.Diagnostics.StrategyUsed)
	assert.ErrorIs(t, items[1].Err, statement.ErrInput)
	assert.Nil(t, items[1].Result)
	assert.Equal(t, "c.pdf", items[2].Result.Diagnostics.StrategyUsed)
}

func TestRunBoundsConcurrency(t *testing.T) {
	ex := &fakeExtractor{delay: 20 * time.Millisecond}
	paths := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	items := NewRunner(ex, 3, nil).Run(context.Background(), paths)

	assert.Len(t, items, len(paths))
	assert.LessOrEqual(t, ex.maxSeen, int32(3))
	assert.Positive(t, ex.maxSeen)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := NewRunner(&fakeExtractor{}, 1, nil).Run(ctx, []string{"a.pdf", "b.pdf"})
	for _, it := range items {
		assert.ErrorIs(t, it.Err, context.Canceled)
	}
}

func TestDefaultWorkers(t *testing.T) {
	assert.Equal(t, DefaultWorkers, NewRunner(&fakeExtractor{}, 0, nil).workers)
}
