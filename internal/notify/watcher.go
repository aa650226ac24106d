package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// SnapshotFunc returns the current task collection
type SnapshotFunc func() []models.Task

// Watcher runs Center.Check on a fixed interval and, when Changes is set,
// after every change to the collection
type Watcher struct {
	Center   *Center
	Snapshot SnapshotFunc
	Changes  <-chan struct{}
	Interval time.Duration
	// Now defaults to time.Now
	Now func() time.Time
	// OnNotify receives each non-empty batch of new notifications
	OnNotify func([]Notification)
	Logger   *slog.Logger
}

// Run checks immediately, then on every tick or change until ctx is done.
// A nil Changes channel never fires.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("notification watcher started", "interval", interval)
	w.check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("notification watcher stopped")
			return nil
		case <-ticker.C:
			w.check()
		case <-w.Changes:
			w.check()
		}
	}
}

func (w *Watcher) check() {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	added := w.Center.Check(w.Snapshot(), now())
	if len(added) > 0 && w.OnNotify != nil {
		w.OnNotify(added)
	}
}
