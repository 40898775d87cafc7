// internal/app/system/workers/usagereset.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Resetter is the slice of the quota tracker the worker needs.
type Resetter interface {
	ResetDaily(ctx context.Context) error
}

// UsageReset is a background worker that rolls daily search quotas over.
// It polls on a short interval; the tracker itself decides which
// organizations are due, so polling more often than quotas reset is cheap
// and firing twice is harmless (the rollover is idempotent).
//
// The worker runs on its own goroutine, independent of request handling,
// and is started in bootstrap Startup and stopped in Shutdown.
type UsageReset struct {
	tracker  Resetter
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewUsageReset creates the worker. interval is how often to check for due
// organizations (e.g., 1 minute).
func NewUsageReset(tracker Resetter, logger *zap.Logger, interval time.Duration) *UsageReset {
	return &UsageReset{
		tracker:  tracker,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background reset loop.
func (w *UsageReset) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("usage reset worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *UsageReset) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("usage reset worker stopped")
}

func (w *UsageReset) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.reset()
		}
	}
}

func (w *UsageReset) reset() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.tracker.ResetDaily(ctx); err != nil {
		w.log.Error("daily quota reset failed", zap.Error(err))
	}
}
