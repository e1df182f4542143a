package stage

import (
	"context"
	"log/slog"

	"vidgen/internal/jobs"
)

// Handler describes the contract the workflow manager needs from each stage.
//
// Prepare must not touch the filesystem or the network; the manager runs
// every stage's Prepare before the first Execute so a bad job is rejected
// before any work starts.
type Handler interface {
	Prepare(context.Context, *jobs.Item) error
	Execute(context.Context, *jobs.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware is implemented by handlers that accept a per-job logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
