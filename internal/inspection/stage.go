package inspection

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"vidgen/internal/deps"
	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/media"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// ProbeFunc reads metadata for one media file.
type ProbeFunc func(ctx context.Context, binary, path string) (media.Metadata, error)

// Stage probes the background clip and the narration audio.
type Stage struct {
	ffprobe string
	probe   ProbeFunc
	logger  *slog.Logger
}

// NewStage builds the inspection stage around the ffprobe binary.
func NewStage(ffprobe string, logger *slog.Logger) *Stage {
	return &Stage{ffprobe: ffprobe, probe: media.Inspect, logger: logging.NewComponentLogger(logger, "inspect")}
}

// WithProbe replaces the metadata reader (tests).
func (s *Stage) WithProbe(probe ProbeFunc) {
	if probe != nil {
		s.probe = probe
	}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "inspect"))
	}
}

func (s *Stage) Prepare(context.Context, *jobs.Item) error { return nil }

// Execute probes both inputs concurrently.
func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	for _, path := range []string{item.Artifacts.Background, item.Artifacts.Narration} {
		if err := fileutil.RequireFile(path); err != nil {
			return services.Wrap(services.ErrNotFound, "inspect", "validate inputs", path, err)
		}
	}

	var background, narration media.Metadata
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		meta, err := s.probe(groupCtx, s.ffprobe, item.Artifacts.Background)
		background = meta
		return err
	})
	group.Go(func() error {
		meta, err := s.probe(groupCtx, s.ffprobe, item.Artifacts.Narration)
		narration = meta
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	item.Background = background
	item.Narration = narration
	logging.WithContext(ctx, s.logger).Info("media inspected",
		logging.Float64("background_seconds", background.Duration),
		logging.Float64("narration_seconds", narration.Duration),
		logging.Int("background_width", background.Width),
		logging.Int("background_height", background.Height),
		logging.String(logging.FieldEventType, "media_inspected"),
	)
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if err := deps.Check(s.ffprobe); err != nil {
		return stage.Unhealthy("inspect", err.Error())
	}
	return stage.Healthy("inspect")
}
