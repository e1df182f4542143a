package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vidgen/internal/config"
	"vidgen/internal/jobs"
	"vidgen/internal/journal"
	"vidgen/internal/logging"
	"vidgen/internal/notifications"
	"vidgen/internal/preflight"
)

// QueueClient is the queue API surface the manager drives.
type QueueClient interface {
	Pick(ctx context.Context) (*jobs.Job, error)
	UpdateStatus(ctx context.Context, id string, status jobs.Status) error
	SetFinishedVideo(ctx context.Context, id, path string) error
}

// Journal records render attempts locally.
type Journal interface {
	Begin(ctx context.Context, item *jobs.Item) (int64, error)
	Finish(ctx context.Context, id int64, outcome journal.Outcome) error
}

// PreflightFunc runs readiness checks before the poll loop starts.
type PreflightFunc func(ctx context.Context) []preflight.Result

// Manager polls the queue and runs each picked job through the registered
// stages, one job at a time.
type Manager struct {
	cfg      *config.Config
	client   QueueClient
	logger   *slog.Logger
	root     *slog.Logger
	layout   jobs.Layout
	notifier notifications.Service
	journal  Journal
	checks   PreflightFunc

	pollInterval  time.Duration
	retryInterval time.Duration

	heartbeat *HeartbeatMonitor
	jobLogs   *JobLogger

	stages []pipelineStage

	mu        sync.RWMutex
	running   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastErr   error
	lastItem  *jobs.Item
	current   *jobs.Item
	processed int
	failed    int
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*Manager)

// WithNotifier replaces the notifier built from config.
func WithNotifier(notifier notifications.Service) ManagerOption {
	return func(m *Manager) {
		if notifier != nil {
			m.notifier = notifier
		}
	}
}

// WithJournal records every attempt in j.
func WithJournal(j Journal) ManagerOption {
	return func(m *Manager) { m.journal = j }
}

// WithPreflight runs checks once in Start; any failure aborts startup.
func WithPreflight(checks PreflightFunc) ManagerOption {
	return func(m *Manager) { m.checks = checks }
}

// WithIntervals overrides the poll and error retry waits.
func WithIntervals(poll, retry time.Duration) ManagerOption {
	return func(m *Manager) {
		if poll > 0 {
			m.pollInterval = poll
		}
		if retry > 0 {
			m.retryInterval = retry
		}
	}
}

// NewManager constructs a workflow manager around a queue client.
func NewManager(cfg *config.Config, client QueueClient, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Manager{
		cfg:    cfg,
		client: client,
		logger: logger.With(logging.String(logging.FieldComponent, "workflow-manager")),
		root:   logger,
		layout: jobs.Layout{
			OutputDir:      cfg.Paths.OutputDir,
			RenderDir:      cfg.Paths.RenderDir,
			FinishedPrefix: cfg.Queue.FinishedVideoPrefix,
		},
		notifier:      notifications.NewService(cfg),
		pollInterval:  time.Duration(cfg.Workflow.PollInterval) * time.Second,
		retryInterval: time.Duration(cfg.Workflow.ErrorRetryInterval) * time.Second,
		heartbeat:     NewHeartbeatMonitor(logger, time.Duration(cfg.Workflow.HeartbeatInterval)*time.Second),
		jobLogs:       NewJobLogger(cfg),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Layout returns the artifact layout derived from config.
func (m *Manager) Layout() jobs.Layout { return m.layout }
