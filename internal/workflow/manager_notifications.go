package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
)

func jobTitle(job jobs.Job) string {
	return fmt.Sprintf("%s part %d", job.Series, int(job.Part))
}

func (m *Manager) notifyJobCompleted(ctx context.Context, logger *slog.Logger, item *jobs.Item, elapsed time.Duration) {
	if m.notifier == nil {
		return
	}
	video := item.Artifacts.PublishedURL
	if video == "" {
		video = m.layout.FinishedVideo(item.Job)
	}
	if err := m.notifier.NotifyJobCompleted(ctx, jobTitle(item.Job), video, elapsed); err != nil {
		logNotificationFailure(logger, "job completion notification failed", err)
	}
}

func (m *Manager) notifyJobFailed(ctx context.Context, logger *slog.Logger, stageName string, item *jobs.Item, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	if err := m.notifier.NotifyJobFailed(ctx, jobTitle(item.Job), stageName, stageErr); err != nil {
		logNotificationFailure(logger, "job failure notification failed", err)
	}
}

func logNotificationFailure(logger *slog.Logger, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Debug("shutting down, notification skipped")
		return
	}
	logging.WarnWithContext(logger, msg, "notification_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
		logging.String(logging.FieldImpact, "job outcome was not pushed"),
	)
}
