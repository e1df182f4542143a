package storage

import (
	"context"
	"log/slog"
	"path/filepath"

	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// Stage uploads the composed video after a successful render.
type Stage struct {
	publisher *Publisher
	logger    *slog.Logger
}

// NewStage wraps a publisher as a pipeline stage.
func NewStage(publisher *Publisher, logger *slog.Logger) *Stage {
	return &Stage{publisher: publisher, logger: logging.NewComponentLogger(logger, "publish")}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "publish"))
	}
}

func (s *Stage) Prepare(context.Context, *jobs.Item) error {
	if s.publisher == nil {
		return services.Wrap(services.ErrConfiguration, "publish", "prepare", "publisher not configured", nil)
	}
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	video := item.Artifacts.Video
	if err := fileutil.RequireFile(video); err != nil {
		return services.Wrap(services.ErrNotFound, "publish", "validate inputs", "rendered video missing", err)
	}
	key := s.publisher.Key(jobs.SeriesDir(item.Job.Series), filepath.Base(video))
	url, err := s.publisher.Upload(ctx, video, key)
	if err != nil {
		return err
	}
	item.Artifacts.PublishedURL = url
	logging.WithContext(ctx, s.logger).Info("publish complete",
		logging.String("url", url),
		logging.String(logging.FieldEventType, "stage_publish_complete"),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.publisher == nil {
		return stage.Unhealthy("publish", "publisher not configured")
	}
	return stage.Healthy("publish")
}
