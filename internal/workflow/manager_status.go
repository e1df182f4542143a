package workflow

import (
	"context"

	"vidgen/internal/jobs"
	"vidgen/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	Processed   int
	Failed      int
	LastError   string
	LastItem    *jobs.Item
	Current     *jobs.Item
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information and runs every stage
// health check.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{
		Running:   m.running,
		Processed: m.processed,
		Failed:    m.failed,
		LastItem:  copyItem(m.lastItem),
		Current:   copyItem(m.current),
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	stages := append([]pipelineStage(nil), m.stages...)
	m.mu.RUnlock()

	summary.StageHealth = make(map[string]stage.Health, len(stages))
	for _, stg := range stages {
		summary.StageHealth[stg.name] = stg.handler.HealthCheck(ctx)
	}
	return summary
}

func copyItem(item *jobs.Item) *jobs.Item {
	if item == nil {
		return nil
	}
	dup := *item
	return &dup
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastItem(item *jobs.Item) {
	m.mu.Lock()
	m.lastItem = copyItem(item)
	m.mu.Unlock()
}

func (m *Manager) setCurrent(item *jobs.Item) {
	m.mu.Lock()
	m.current = copyItem(item)
	m.mu.Unlock()
}
