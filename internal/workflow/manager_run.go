package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// Start begins background processing. The loop stops when ctx is cancelled
// or Stop is called; a job already rendering is allowed to finish.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if len(m.stages) == 0 {
		m.mu.Unlock()
		return errors.New("workflow stages not configured")
	}
	m.mu.Unlock()

	if err := m.runPreflightChecks(ctx); err != nil {
		m.setLastError(err)
		return err
	}

	m.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("workflow started",
		logging.Duration("poll_interval", m.pollInterval),
		logging.Duration("error_retry_interval", m.retryInterval),
		logging.Int("stages", len(m.stageList())),
		logging.String(logging.FieldEventType, "workflow_started"),
	)
	go m.loop(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight job.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		m.wg.Wait()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workflow stopped", logging.String(logging.FieldEventType, "workflow_stopped"))
}

// Wait blocks until the processing loop exits.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) loop(ctx context.Context) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		picked, err := m.RunOnce(ctx)
		switch {
		case err != nil && !picked:
			m.handlePickError(ctx, err)
		case err != nil:
			// The job may still be pending when its claim or error report
			// failed; back off so it is not picked again immediately.
			m.logger.Debug("job failed; backing off before next poll",
				logging.Duration("retry_in", m.retryInterval),
				logging.String(logging.FieldEventType, "job_failure_backoff"),
			)
			m.waitOrShutdown(ctx, m.retryInterval)
		case !picked:
			m.waitOrShutdown(ctx, m.pollInterval)
		}
	}
}

// RunOnce picks at most one job and runs it to completion. It reports
// whether a job was picked; a job failure is returned alongside picked=true.
// An empty queue returns (false, nil).
func (m *Manager) RunOnce(ctx context.Context) (bool, error) {
	if len(m.stageList()) == 0 {
		return false, errors.New("workflow stages not configured")
	}
	job, err := m.client.Pick(ctx)
	if err != nil {
		if services.Classify(err) == services.KindNoWork {
			m.logger.Debug("no pending job", logging.String(logging.FieldEventType, "queue_empty"))
			return false, nil
		}
		if job == nil || strings.TrimSpace(job.ID) == "" {
			return false, err
		}
		// The payload is broken but identifiable: settle it as error.
		return true, m.processJob(ctx, job, err)
	}
	if job == nil {
		return false, nil
	}
	return true, m.processJob(ctx, job, nil)
}

func (m *Manager) handlePickError(ctx context.Context, err error) {
	m.setLastError(err)
	if errors.Is(err, context.Canceled) {
		return
	}
	details := services.Details(err)
	logging.ErrorWithContext(m.logger, "failed to pick next job", "queue_pick_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.String(logging.FieldErrorHint, "check queue API availability and base_url"),
		logging.Duration("retry_in", m.retryInterval),
	)
	m.waitOrShutdown(ctx, m.retryInterval)
}

func (m *Manager) waitOrShutdown(ctx context.Context, d time.Duration) {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
