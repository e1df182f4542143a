package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vidgen/internal/jobs"
	"vidgen/internal/journal"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

func (m *Manager) handleJobFailure(ctx context.Context, logger *slog.Logger, stageName string, item *jobs.Item, entryID int64, stageErr error) error {
	err := m.reportFailure(ctx, item, stageErr)
	message := failureMessage(stageName, stageErr)

	details := services.Details(stageErr)
	attrs := []logging.Attr{
		logging.String(logging.FieldStage, stageName),
		logging.String("resolved_status", string(jobs.StatusError)),
		logging.String("error_message", message),
		logging.String("error_operation", details.Operation),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.String(logging.FieldErrorHint, details.Hint),
		logging.Alert("job_failure"),
		logging.Duration("job_duration", time.Since(item.StartedAt).Round(time.Millisecond)),
		logging.Error(err),
	}
	logging.ErrorWithContext(logger, "job failed", "job_failure", attrs...)

	m.finishJournal(ctx, logger, entryID, journal.Outcome{
		Status:       jobs.StatusError,
		FailedStage:  stageName,
		ErrorKind:    string(details.Kind),
		ErrorMessage: message,
		Voice:        item.Voice,
		VideoPath:    item.Artifacts.Video,
	})

	m.mu.Lock()
	m.failed++
	m.lastErr = err
	m.mu.Unlock()
	m.setLastItem(item)
	m.notifyJobFailed(ctx, logger, stageName, item, stageErr)
	return err
}

func (m *Manager) handleJobSuccess(ctx context.Context, logger *slog.Logger, item *jobs.Item, entryID int64) {
	elapsed := time.Since(item.StartedAt)
	finished := m.layout.FinishedVideo(item.Job)
	logger.Info("job completed",
		logging.String("video", item.Artifacts.Video),
		logging.String("finished_video", finished),
		logging.String("published_url", item.Artifacts.PublishedURL),
		logging.String("voice", item.Voice),
		logging.Duration("job_duration", elapsed.Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "job_complete"),
	)
	m.finishJournal(ctx, logger, entryID, journal.Outcome{
		Status:        jobs.StatusDone,
		Voice:         item.Voice,
		VideoPath:     item.Artifacts.Video,
		FinishedVideo: finished,
		PublishedURL:  item.Artifacts.PublishedURL,
	})

	m.mu.Lock()
	m.processed++
	m.lastErr = nil
	m.mu.Unlock()
	m.setLastItem(item)
	m.notifyJobCompleted(ctx, logger, item, elapsed)
}

func failureMessage(stageName string, stageErr error) string {
	if stageErr == nil {
		return workflowFailureMessage(stageName, "failed without error detail")
	}
	message := strings.TrimSpace(services.Details(stageErr).Message)
	if message == "" {
		message = strings.TrimSpace(stageErr.Error())
	}
	if message == "" {
		message = workflowFailureMessage(stageName, "failed")
	}
	return message
}

func workflowFailureMessage(stageName, defaultMsg string) string {
	if stageName != "" {
		return fmt.Sprintf("%s %s", stageName, defaultMsg)
	}
	return fmt.Sprintf("workflow %s", defaultMsg)
}

func (m *Manager) beginJournal(ctx context.Context, logger *slog.Logger, item *jobs.Item) int64 {
	if m.journal == nil {
		return 0
	}
	id, err := m.journal.Begin(ctx, item)
	if err != nil {
		logging.WarnWithContext(logger, "journal entry not recorded", "journal_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "this attempt will be missing from history"),
		)
		return 0
	}
	return id
}

func (m *Manager) finishJournal(ctx context.Context, logger *slog.Logger, id int64, outcome journal.Outcome) {
	if m.journal == nil || id == 0 {
		return
	}
	if err := m.journal.Finish(ctx, id, outcome); err != nil {
		logging.WarnWithContext(logger, "journal entry not finalized", "journal_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check state_dir permissions"),
			logging.String(logging.FieldImpact, "history shows this attempt as still rendering"),
		)
	}
}
