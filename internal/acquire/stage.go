package acquire

import (
	"context"
	"log/slog"
	"strings"

	"vidgen/internal/deps"
	"vidgen/internal/fileutil"
	"vidgen/internal/jobs"
	"vidgen/internal/logging"
	"vidgen/internal/services"
	"vidgen/internal/stage"
)

// Stage resolves the background clip for a job: the job's URL when set,
// otherwise a random clip already on disk.
type Stage struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewStage wraps a fetcher as a pipeline stage.
func NewStage(fetcher *Fetcher, logger *slog.Logger) *Stage {
	return &Stage{fetcher: fetcher, logger: logging.NewComponentLogger(logger, "acquire")}
}

// SetLogger swaps in the per-job logger.
func (s *Stage) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String(logging.FieldComponent, "acquire"))
	}
}

func (s *Stage) Prepare(context.Context, *jobs.Item) error { return nil }

func (s *Stage) Execute(ctx context.Context, item *jobs.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	url := strings.TrimSpace(item.Job.BackgroundURL)

	var (
		path string
		err  error
	)
	if url != "" {
		path, err = s.fetcher.Fetch(ctx, url)
	} else {
		path, err = s.fetcher.PickRandom()
		if err == nil {
			logger.Info("using local background",
				logging.String("path", path),
				logging.String(logging.FieldEventType, "background_picked"),
			)
		}
	}
	if err != nil {
		return err
	}
	if err := fileutil.RequireFile(path); err != nil {
		return services.Wrap(services.ErrExternalTool, "acquire", "verify background", path, err)
	}
	item.Artifacts.Background = path
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if err := deps.Check(s.fetcher.Binary()); err != nil {
		return stage.Unhealthy("acquire", err.Error())
	}
	return stage.Healthy("acquire")
}
