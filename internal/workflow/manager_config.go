package workflow

import "pulpit/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
//
// The foreground lane carries script generation and narration so a fresh run
// reaches audio quickly; rendering and publishing run in the background lane
// where a long ffmpeg encode cannot hold up the next day's script.
func (m *Manager) ConfigureStages(set StageSet) {
	foreground := &laneState{kind: laneForeground, name: "foreground", notificationsEnabled: true}
	background := &laneState{kind: laneBackground, name: "background", notificationsEnabled: false}

	if set.Scriptwriter != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "scriptwriter",
			handler:          set.Scriptwriter,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusScripting,
			doneStatus:       queue.StatusScripted,
		})
	}
	if set.Narrator != nil {
		foreground.stages = append(foreground.stages, pipelineStage{
			name:             "narrator",
			handler:          set.Narrator,
			startStatus:      queue.StatusScripted,
			processingStatus: queue.StatusSynthesizing,
			doneStatus:       queue.StatusSynthesized,
		})
	}
	publisherStart := queue.StatusSynthesized
	if set.Renderer != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "renderer",
			handler:          set.Renderer,
			startStatus:      queue.StatusSynthesized,
			processingStatus: queue.StatusRendering,
			doneStatus:       queue.StatusRendered,
		})
		publisherStart = queue.StatusRendered
	}
	if set.Publisher != nil {
		background.stages = append(background.stages, pipelineStage{
			name:             "publisher",
			handler:          set.Publisher,
			startStatus:      publisherStart,
			processingStatus: queue.StatusPublishing,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(foreground.stages) > 0 {
		foreground.finalize()
		lanes[foreground.kind] = foreground
		order = append(order, foreground.kind)
	}
	if len(background.stages) > 0 {
		background.finalize()
		lanes[background.kind] = background
		order = append(order, background.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
