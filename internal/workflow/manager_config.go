package workflow

import "vidgen/internal/stage"

// StageSet bundles the concrete handlers in pipeline order. Publish is
// optional.
type StageSet struct {
	Acquire stage.Handler
	Narrate stage.Handler
	Caption stage.Handler
	Inspect stage.Handler
	Compose stage.Handler
	Publish stage.Handler
}

type pipelineStage struct {
	name    string
	handler stage.Handler
}

// ConfigureStages registers the handlers the workflow will run. Nil
// handlers are skipped.
func (m *Manager) ConfigureStages(set StageSet) {
	candidates := []pipelineStage{
		{name: "acquire", handler: set.Acquire},
		{name: "narrate", handler: set.Narrate},
		{name: "caption", handler: set.Caption},
		{name: "inspect", handler: set.Inspect},
		{name: "compose", handler: set.Compose},
		{name: "publish", handler: set.Publish},
	}
	stages := make([]pipelineStage, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.handler != nil {
			stages = append(stages, candidate)
		}
	}

	m.mu.Lock()
	m.stages = stages
	m.mu.Unlock()
}

func (m *Manager) stageList() []pipelineStage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]pipelineStage(nil), m.stages...)
}
