package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sweeper struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
	err    error
	done   chan struct{}
}

func (s *sweeper) Sweep(_ context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	s.calls++
	s.maxAge = maxAge
	s.mu.Unlock()
	if s.done != nil {
		s.done <- struct{}{}
	}
	return 3, s.err
}

func TestSweepUsesRetention(t *testing.T) {
	sw := &sweeper{}
	s := NewScheduler(sw, "", 48*time.Hour, nil)

	s.sweepArchive()
	assert.Equal(t, 1, sw.calls)
	assert.Equal(t, 48*time.Hour, sw.maxAge)
	assert.Equal(t, DefaultSchedule, s.schedule)
}

func TestSweepErrorIsLogged(t *testing.T) {
	sw := &sweeper{err: errors.New("permission denied")}
	NewScheduler(sw, "", time.Hour, nil).sweepArchive()
	assert.Equal(t, 1, sw.calls)
}

func TestRunNow(t *testing.T) {
	sw := &sweeper{done: make(chan struct{}, 1)}
	NewScheduler(sw, "", time.Hour, nil).RunNow()

	select {
	case <-sw.done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not run")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&sweeper{}, "not a schedule", time.Hour, nil)
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s := NewScheduler(&sweeper{}, "@every 1h", time.Hour, nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	<-s.Stop().Done()
}
