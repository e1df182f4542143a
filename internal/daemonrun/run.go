package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"vidgen/internal/acquire"
	"vidgen/internal/captions"
	"vidgen/internal/compose"
	"vidgen/internal/config"
	"vidgen/internal/daemon"
	"vidgen/internal/inspection"
	"vidgen/internal/jobs"
	"vidgen/internal/journal"
	"vidgen/internal/logging"
	"vidgen/internal/narration"
	"vidgen/internal/preflight"
	"vidgen/internal/services"
	"vidgen/internal/services/whisperx"
	"vidgen/internal/storage"
	"vidgen/internal/workflow"
)

// Options configures worker runtime behavior.
type Options struct {
	LogLevel      string
	SkipPreflight bool
}

// Runtime bundles the collaborators shared by the run and once commands.
type Runtime struct {
	Config  *config.Config
	Logger  *slog.Logger
	Client  *jobs.Client
	Catalog narration.Catalog
	Journal *journal.Store
	Manager *workflow.Manager
}

// Build opens the journal, constructs the queue client and registers every
// stage on a new workflow manager. Preflight checks are attached unless
// skipPreflight is set.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, skipPreflight bool) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	apiURL := cfg.QueueAPIURL()
	if apiURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "queue endpoint",
			"set queue.base_url or BASE_URL", config.ErrMissingBaseURL)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "startup", "ensure directories", "", err)
	}

	store, err := journal.Open(ctx, cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	client := jobs.NewClient(apiURL, time.Duration(cfg.Queue.RequestTimeout)*time.Second, logger)
	catalog := narration.NewCatalog(cfg.Narration.CatalogURL, cfg.Narration.CatalogPath,
		time.Duration(cfg.Narration.RequestTimeout)*time.Second)

	opts := []workflow.ManagerOption{workflow.WithJournal(store)}
	if !skipPreflight {
		opts = append(opts, workflow.WithPreflight(func(ctx context.Context) []preflight.Result {
			return preflight.RunAll(ctx, cfg, client, catalog)
		}))
	}
	mgr := workflow.NewManager(cfg, client, logger, opts...)

	stages, err := BuildStages(ctx, cfg, mgr.Layout(), catalog, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	mgr.ConfigureStages(stages)

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Catalog: catalog,
		Journal: store,
		Manager: mgr,
	}, nil
}

// Close releases the journal.
func (r *Runtime) Close() error {
	if r == nil || r.Journal == nil {
		return nil
	}
	return r.Journal.Close()
}

// BuildStages constructs the pipeline handlers from config. The publish
// stage is only registered when storage is enabled.
func BuildStages(ctx context.Context, cfg *config.Config, layout jobs.Layout, catalog narration.Catalog, logger *slog.Logger) (workflow.StageSet, error) {
	fetcher := acquire.NewFetcher(cfg.Tools.YTDLP, cfg.Paths.BackgroundsDir, logger)
	synth := narration.NewSynthesizer(catalog, cfg.Tools.UVX, logger)

	transcriber := whisperx.NewService(whisperx.Config{
		Model:       cfg.Captions.Model,
		CUDAEnabled: cfg.Captions.CUDAEnabled,
		VADMethod:   cfg.Captions.VADMethod,
	}, cfg.Tools.UVX)
	style := captions.DefaultStyle(cfg.Compose.FontName)
	generator := captions.NewGenerator(transcriber, style, logger)

	compositor := compose.NewCompositor(cfg.Tools.FFmpeg, cfg.Compose.VideoCodec, cfg.Paths.RenderDir, style, logger)

	narrateStage := narration.NewStage(synth, layout, logger)
	narrateStage.WithDefaultVoice(cfg.Narration.DefaultVoice)

	set := workflow.StageSet{
		Acquire: acquire.NewStage(fetcher, logger),
		Narrate: narrateStage,
		Caption: captions.NewStage(generator, layout, cfg.Tools.UVX, logger),
		Inspect: inspection.NewStage(cfg.Tools.FFprobe, logger),
		Compose: compose.NewStage(compositor, layout, logger),
	}
	if cfg.Storage.Enabled {
		publisher, err := storage.NewPublisher(ctx, cfg.Storage, logger)
		if err != nil {
			return workflow.StageSet{}, fmt.Errorf("init storage publisher: %w", err)
		}
		set.Publish = storage.NewStage(publisher, logger)
	}
	return set, nil
}

// NewLogger builds the process logger from config, honouring a level
// override, and prunes expired daily and per-job log files.
func NewLogger(cfg *config.Config, level string) (*slog.Logger, error) {
	if strings.TrimSpace(level) != "" {
		cfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Logging.DailyFile {
		logging.CleanupOldLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays,
			logging.DailyLogPath(cfg.Paths.LogDir, time.Now()))
	}
	logging.CleanupOldLogs(logger, filepath.Join(cfg.Paths.LogDir, "jobs"), cfg.Logging.RetentionDays, "")
	return logger, nil
}

// Run starts the worker loop and blocks until SIGINT or SIGTERM. The job in
// flight when the signal arrives is allowed to finish.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger, err := NewLogger(cfg, opts.LogLevel)
	if err != nil {
		return err
	}
	logDependencySnapshot(logger, cfg)

	rt, err := Build(signalCtx, cfg, logger, opts.SkipPreflight)
	if err != nil {
		logging.ErrorWithContext(logger, "worker startup failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, services.Details(err).Hint),
		)
		return err
	}
	defer rt.Close()

	d, err := daemon.New(cfg, logger, rt.Manager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "worker start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check preflight output and the state_dir lock"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("vidgen worker shutting down; waiting for the current job",
		logging.String(logging.FieldEventType, "daemon_shutdown"),
	)
	d.Stop()
	return nil
}

// RunOnce processes at most one job and reports whether one was picked.
func RunOnce(ctx context.Context, cfg *config.Config, opts Options) (bool, error) {
	logger, err := NewLogger(cfg, opts.LogLevel)
	if err != nil {
		return false, err
	}
	rt, err := Build(ctx, cfg, logger, true)
	if err != nil {
		return false, err
	}
	defer rt.Close()
	return rt.Manager.RunOnce(ctx)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("queue_api", cfg.QueueAPIURL()),
		logging.Bool("yt_dlp_available", binaryAvailable(cfg.Tools.YTDLP)),
		logging.Bool("uvx_available", binaryAvailable(cfg.Tools.UVX)),
		logging.Bool("ffprobe_available", binaryAvailable(cfg.Tools.FFprobe)),
		logging.Bool("ffmpeg_available", binaryAvailable(cfg.Tools.FFmpeg)),
		logging.String("video_codec", cfg.Compose.VideoCodec),
		logging.String("whisperx_model", cfg.Captions.Model),
		logging.Bool("whisperx_cuda", cfg.Captions.CUDAEnabled),
		logging.Bool("storage_enabled", cfg.Storage.Enabled),
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
