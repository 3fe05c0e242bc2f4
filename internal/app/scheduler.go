package app

import (
	"context"
	"time"

	"github.com/riskibarqy/football-live/internal/platform/logging"
	"github.com/riskibarqy/football-live/internal/usecase"
)

type periodicSyncer interface {
	TryRunSync(ctx context.Context) usecase.SyncResult
}

// RunSyncTicker runs one sync immediately and then every interval until ctx
// is done. Ticks that land while a sync is still running are skipped.
func RunSyncTicker(ctx context.Context, syncer periodicSyncer, interval time.Duration, logger *logging.Logger) {
	if interval <= 0 || syncer == nil {
		return
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("app.sync_ticker")

	tick := func() {
		result := syncer.TryRunSync(ctx)
		switch {
		case result.Skipped:
			logger.InfoContext(ctx, "sync tick skipped", "reason", result.Error)
		case result.Error != "":
			logger.WarnContext(ctx, "sync tick failed", "error", result.Error, "fallback", result.Fallback)
		default:
			logger.InfoContext(ctx, "sync tick finished",
				"synced", result.SyncedCount,
				"live", result.LiveCount,
				"duration", result.Duration,
			)
		}
	}

	logger.Info("sync ticker started", "interval", interval)
	tick()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("sync ticker stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}
