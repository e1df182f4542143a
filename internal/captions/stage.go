package captions

import (
	"context"
	"log/slog"

	"vidgen/internal/deps"
	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// Stage transcribes the narration and writes both caption files.
type Stage struct {
	generator *Generator
	layout    jobs.Layout
	uvx       string
	logger    *slog.Logger
}

// NewStage wraps a generator as a pipeline stage. uvx is only used for
// health reporting.
func NewStage(generator *Generator, layout jobs.Layout, uvx string, logger *slog.Logger) *Stage {
	return &Stage{generator: generator, layout: layout, uvx: uvx, logger: logging.NewComponentLogger(logger, "caption")}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "caption"))
	}
}

func (s *Stage) Prepare(_ context.Context, item *jobs.Item) error {
	item.Artifacts.SRT = s.layout.SRTPath(item.Job)
	item.Artifacts.ASS = s.layout.ASSPath(item.Job)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	if err := fileutil.RequireFile(item.Artifacts.Narration); err != nil {
		return services.Wrap(services.ErrNotFound, "caption", "validate inputs", "narration audio missing", err)
	}
	result, err := s.generator.Generate(ctx, item.Artifacts.Narration, s.layout.WorkBase(item.Job), item.Job.Language)
	if err != nil {
		return err
	}
	for _, path := range []string{result.SRT, result.ASS} {
		if err := fileutil.RequireFile(path); err != nil {
			return services.Wrap(services.ErrExternalTool, "caption", "verify output", path, err)
		}
	}
	item.Artifacts.SRT = result.SRT
	item.Artifacts.ASS = result.ASS
	logging.WithContext(ctx, s.logger).Info("captions written",
		logging.Int("captions", len(result.Captions)),
		logging.String("srt", result.SRT),
		logging.String("ass", result.ASS),
		logging.String(logging.FieldEventType, "captions_written"),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if err := deps.Check(s.uvx); err != nil {
		return stage.Unhealthy("caption", err.Error())
	}
	return stage.Healthy("caption")
}
