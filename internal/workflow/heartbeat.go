package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
)

// HeartbeatMonitor periodically logs that a long-running stage is still
// alive. The queue has no heartbeat endpoint, so progress is only visible in
// the logs.
type HeartbeatMonitor struct {
	logger   *slog.Logger
	interval time.Duration
}

// NewHeartbeatMonitor creates a monitor. A non-positive interval disables it.
func NewHeartbeatMonitor(logger *slog.Logger, interval time.Duration) *HeartbeatMonitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HeartbeatMonitor{logger: logger, interval: interval}
}

// StartLoop logs a heartbeat for item every interval until ctx is cancelled.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, logger *slog.Logger, item *jobs.Item) {
	defer wg.Done()
	if h == nil || h.interval <= 0 || item == nil {
		return
	}
	if logger == nil {
		logger = logging.WithContext(ctx, h.logger)
	}
	logger = logger.With(logging.String(logging.FieldComponent, "workflow-heartbeat"))
	started := time.Now()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("job still rendering",
				logging.Duration("stage_elapsed", time.Since(started).Round(time.Second)),
				logging.Duration("job_elapsed", time.Since(item.StartedAt).Round(time.Second)),
				logging.String(logging.FieldEventType, "job_heartbeat"),
			)
		}
	}
}
