package workflow

import (
	"context"
	"errors"

	"pulpit/internal/queue"
)

// RunItem drives a single queue item through the configured stages in
// order, synchronously, until no stage accepts its status. It must not
// be used while Start's lane loops are running.
func (m *Manager) RunItem(ctx context.Context, item *queue.Item) error {
	if item == nil {
		return errors.New("workflow run: item is required")
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	lanes := make([]*laneState, 0, len(m.laneOrder))
	for _, kind := range m.laneOrder {
		if lane := m.lanes[kind]; lane != nil {
			lanes = append(lanes, lane)
		}
	}
	m.mu.Unlock()
	if len(lanes) == 0 {
		return errors.New("workflow stages not configured")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var current *laneState
		for _, lane := range lanes {
			if _, ok := lane.stageForStatus(item.Status); ok {
				current = lane
				break
			}
		}
		if current == nil {
			return nil
		}
		if err := m.processItem(ctx, current, m.logger, item); err != nil {
			// Review routing is operator action, not a run failure.
			if item.Status == queue.StatusReview {
				return nil
			}
			return err
		}
		if item.Status == queue.StatusFailed || item.NeedsReview {
			return nil
		}
	}
}
