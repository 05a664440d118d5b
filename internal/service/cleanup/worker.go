package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/service/game"
)

type Worker struct {
	SessionManager     *game.SessionManager
	Interval           time.Duration
	IdleTimeout        time.Duration
	FinishedSessionTTL time.Duration
	logger             *zap.Logger
}

func NewWorker(sm *game.SessionManager, interval, idleTimeout, finishedTTL time.Duration, logger *zap.Logger) *Worker {
	return &Worker{
		SessionManager:     sm,
		Interval:           interval,
		IdleTimeout:        idleTimeout,
		FinishedSessionTTL: finishedTTL,
		logger:             logger.Named("cleanup"),
	}
}

// Start runs one pass immediately, then one per Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("background worker started", zap.Duration("interval", w.Interval))
	w.RunCleanup(time.Now())

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("background worker stopped")
			return
		case now := <-ticker.C:
			w.RunCleanup(now)
		}
	}
}

// RunCleanup executes a single cleanup pass.
func (w *Worker) RunCleanup(now time.Time) int {
	removed := w.SessionManager.CleanupOldSessions(now, w.IdleTimeout, w.FinishedSessionTTL)
	w.logger.Debug("cleanup pass finished",
		zap.Int("removed", removed),
		zap.Int("remaining", w.SessionManager.Count()))
	return removed
}
