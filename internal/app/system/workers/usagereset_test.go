package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/leadscout/internal/app/system/workers"
	"go.uber.org/zap"
)

type countingResetter struct {
	calls atomic.Int64
	err   error
}

func (c *countingResetter) ResetDaily(ctx context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestUsageReset_FiresOnInterval(t *testing.T) {
	tracker := &countingResetter{}
	w := workers.NewUsageReset(tracker, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	time.Sleep(60 * time.Millisecond)
	w.Stop()

	if tracker.calls.Load() == 0 {
		t.Error("tracker.ResetDaily was never called")
	}
}

func TestUsageReset_StopHaltsLoop(t *testing.T) {
	tracker := &countingResetter{}
	w := workers.NewUsageReset(tracker, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	time.Sleep(25 * time.Millisecond)
	w.Stop()

	after := tracker.calls.Load()
	time.Sleep(40 * time.Millisecond)
	if got := tracker.calls.Load(); got != after {
		t.Errorf("reset fired after Stop: %d -> %d", after, got)
	}
}

func TestUsageReset_SurvivesTrackerErrors(t *testing.T) {
	tracker := &countingResetter{err: errors.New("db down")}
	w := workers.NewUsageReset(tracker, zap.NewNop(), 10*time.Millisecond)

	w.Start()
	time.Sleep(45 * time.Millisecond)
	w.Stop()

	// Errors are logged, not fatal: the loop keeps polling.
	if tracker.calls.Load() < 2 {
		t.Errorf("loop stopped after an error: %d calls", tracker.calls.Load())
	}
}
