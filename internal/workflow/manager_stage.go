package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// processJob claims job, runs every stage and reports the outcome to the
// queue. The returned error is nil only when the job reached done. A non-nil
// payloadErr skips the stages and marks the claimed job as error.
func (m *Manager) processJob(ctx context.Context, job *jobs.Job, payloadErr error) error {
	requestID := uuid.NewString()
	jobCtx := jobContext(ctx, job.ID, requestID)
	base, closeLog := m.jobLogger(*job)
	defer closeLog()
	logger := logging.WithContext(jobCtx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))

	if err := m.client.UpdateStatus(jobCtx, job.ID, jobs.StatusRendering); err != nil {
		logging.ErrorWithContext(logger, "failed to mark job rendering; job skipped", "job_claim_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check queue API availability"),
		)
		m.setLastError(err)
		return err
	}

	item := jobs.NewItem(*job, requestID)
	item.Job.Status = jobs.StatusRendering
	m.setCurrent(item)
	defer m.setCurrent(nil)

	logger.Info("job started",
		logging.String("series", item.Job.Series),
		logging.Int("part", int(item.Job.Part)),
		logging.String("language", item.Job.Language),
		logging.String(logging.FieldEventType, "job_start"),
	)
	entryID := m.beginJournal(jobCtx, logger, item)

	stages := m.stageList()
	restore := m.assignStageLoggers(stages, logging.WithContext(jobCtx, base))
	defer restore()

	failedStage, err := "queue", payloadErr
	if payloadErr == nil {
		failedStage, err = m.runStages(jobCtx, base, stages, item)
	}
	if err == nil {
		if reportErr := m.reportSuccess(jobCtx, item); reportErr != nil {
			failedStage, err = "report", reportErr
		}
	}
	if err != nil {
		return m.handleJobFailure(jobCtx, logger, failedStage, item, entryID, err)
	}
	m.handleJobSuccess(jobCtx, logger, item, entryID)
	return nil
}

// runStages runs every Prepare before the first Execute, then each Execute in
// order. It returns the name of the stage that failed.
func (m *Manager) runStages(ctx context.Context, base *slog.Logger, stages []pipelineStage, item *jobs.Item) (string, error) {
	if err := item.Job.Validate(); err != nil {
		return "queue", err
	}
	for _, stg := range stages {
		if err := stg.handler.Prepare(services.WithStage(ctx, stg.name), item); err != nil {
			return stg.name, err
		}
	}
	for _, stg := range stages {
		stageCtx := services.WithStage(ctx, stg.name)
		stageLogger := logging.WithContext(stageCtx, base).With(logging.String(logging.FieldComponent, "workflow-manager"))
		started := time.Now()
		stageLogger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))

		if err := m.executeWithHeartbeat(stageCtx, stageLogger, stg.handler, item); err != nil {
			return stg.name, err
		}
		stageLogger.Info("stage completed",
			logging.Duration("stage_duration", time.Since(started).Round(time.Millisecond)),
			logging.String(logging.FieldEventType, "stage_complete"),
		)
	}
	return "", nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, logger *slog.Logger, handler stage.Handler, item *jobs.Item) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, logger, item)

	err := handler.Execute(ctx, item)
	hbCancel()
	hbWG.Wait()
	return err
}

// reportSuccess publishes the download path and then marks the job done.
// Both updates must succeed.
func (m *Manager) reportSuccess(ctx context.Context, item *jobs.Item) error {
	finished := m.layout.FinishedVideo(item.Job)
	if err := m.client.SetFinishedVideo(ctx, item.Job.ID, finished); err != nil {
		return fmt.Errorf("report finished video: %w", err)
	}
	if err := m.client.UpdateStatus(ctx, item.Job.ID, jobs.StatusDone); err != nil {
		return fmt.Errorf("report done status: %w", err)
	}
	item.Job.Status = jobs.StatusDone
	return nil
}

// reportFailure marks the job as error and joins any reporting error with
// the stage error.
func (m *Manager) reportFailure(ctx context.Context, item *jobs.Item, stageErr error) error {
	item.Job.Status = jobs.StatusError
	if err := m.client.UpdateStatus(ctx, item.Job.ID, jobs.StatusError); err != nil {
		return errors.Join(stageErr, fmt.Errorf("report error status: %w", err))
	}
	return stageErr
}
