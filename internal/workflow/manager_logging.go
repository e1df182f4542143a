package workflow

import (
	"context"
	"io"
	"log/slog"

	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// jobContext detaches ctx from cancellation so a stop signal received while a
// job is rendering lets that job finish and report.
func jobContext(ctx context.Context, jobID, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)
	ctx = services.WithJobID(ctx, jobID)
	if requestID != "" {
		ctx = services.WithRequestID(ctx, requestID)
	}
	return ctx
}

// jobLogger returns the base logger for one job: the manager logger teed into
// the job's own log file when one can be opened. The returned close func is
// always safe to call.
func (m *Manager) jobLogger(job jobs.Job) (*slog.Logger, func()) {
	base := m.root
	if m.jobLogs == nil {
		return base, func() {}
	}
	handler, closer, path, err := m.jobLogs.Open(job)
	if err != nil {
		logging.WarnWithContext(base, "job log unavailable", "job_log_failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("log_file", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check log_dir permissions"),
			logging.String(logging.FieldImpact, "job output only appears in the daemon log"),
		)
		return base, func() {}
	}
	logger := slog.New(logging.TeeHandler(base.Handler(), handler)).
		With(logging.String("job_log", path))
	return logger, closeQuietly(closer)
}

func closeQuietly(closer io.Closer) func() {
	return func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
}

// assignStageLoggers routes handler logs into logger until the returned
// restore func runs.
func (m *Manager) assignStageLoggers(stages []pipelineStage, logger *slog.Logger) func() {
	for _, stg := range stages {
		if aware, ok := stg.handler.(stage.LoggerAware); ok {
			aware.SetLogger(logger)
		}
	}
	return func() {
		for _, stg := range stages {
			if aware, ok := stg.handler.(stage.LoggerAware); ok {
				aware.SetLogger(m.root)
			}
		}
	}
}
