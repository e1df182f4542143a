package compose

import (
	"context"
	"fmt"
	"log/slog"

	"vidgen/internal/deps"
	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// Stage renders the final video from the inspected artifacts.
type Stage struct {
	compositor *Compositor
	layout     jobs.Layout
	run        services.CommandRunner
	logger     *slog.Logger
}

// NewStage wraps a compositor as a pipeline stage.
func NewStage(compositor *Compositor, layout jobs.Layout, logger *slog.Logger) *Stage {
	return &Stage{
		compositor: compositor,
		layout:     layout,
		run:        services.RunCommand,
		logger:     logging.NewComponentLogger(logger, "compose"),
	}
}

// WithCommandRunner replaces the runner used by the encoder health check.
func (s *Stage) WithCommandRunner(run services.CommandRunner) {
	if run != nil {
		s.run = run
	}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "compose"))
		s.compositor.logger = s.logger
	}
}

func (s *Stage) Prepare(_ context.Context, item *jobs.Item) error {
	item.Artifacts.Video = s.layout.VideoPath(item.Job)
	return nil
}

func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	for _, path := range []string{item.Artifacts.Background, item.Artifacts.Narration, item.Artifacts.ASS} {
		if err := fileutil.RequireFile(path); err != nil {
			return services.Wrap(services.ErrNotFound, "compose", "validate inputs", path, err)
		}
	}
	if item.Narration.Duration <= 0 {
		return services.Wrap(services.ErrValidation, "compose", "validate inputs", "narration duration unknown; run inspection first", nil)
	}

	render, err := s.compositor.Compose(ctx, Input{
		Background:         item.Artifacts.Background,
		Audio:              item.Artifacts.Narration,
		Captions:           item.Artifacts.ASS,
		BackgroundDuration: item.Background.Duration,
		AudioDuration:      item.Narration.Duration,
	})
	if err != nil {
		return err
	}
	if render.Path != item.Artifacts.Video {
		logging.WithContext(ctx, s.logger).Debug("render path differs from layout",
			logging.String("render", render.Path),
			logging.String("expected", item.Artifacts.Video),
		)
	}
	item.Artifacts.Video = render.Path
	return nil
}

// HealthCheck verifies ffmpeg is installed and built with the configured encoder.
func (s *Stage) HealthCheck(ctx context.Context) stage.Health {
	ffmpeg := s.compositor.FFmpeg()
	if err := deps.Check(ffmpeg); err != nil {
		return stage.Unhealthy("compose", err.Error())
	}
	codec := s.compositor.Codec()
	ok, err := deps.HasEncoder(ctx, s.run, ffmpeg, codec)
	if err != nil {
		return stage.Unhealthy("compose", fmt.Sprintf("list encoders: %v", err))
	}
	if !ok {
		return stage.Unhealthy("compose", fmt.Sprintf("ffmpeg lacks encoder %s", codec))
	}
	return stage.Healthy("compose")
}
