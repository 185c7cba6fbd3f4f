package workflow

import (
	"context"
	"sync"
	"testing"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/stage"
	"pulpit/internal/testsupport"
)

// stubHandler is a configurable stage.Handler for manager tests.
type stubHandler struct {
	name      string
	prepare   func(context.Context, *queue.Item) error
	execute   func(context.Context, *queue.Item) error
	healthErr string
}

func (s *stubHandler) Prepare(ctx context.Context, item *queue.Item) error {
	if s.prepare != nil {
		return s.prepare(ctx, item)
	}
	return nil
}

func (s *stubHandler) Execute(ctx context.Context, item *queue.Item) error {
	if s.execute != nil {
		return s.execute(ctx, item)
	}
	return nil
}

func (s *stubHandler) HealthCheck(context.Context) stage.Health {
	if s.healthErr != "" {
		return stage.Unhealthy(s.name, s.healthErr)
	}
	return stage.Healthy(s.name)
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, _ notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) published() []notifications.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]notifications.Event, len(r.events))
	copy(cp, r.events)
	return cp
}

func (r *recordingNotifier) has(event notifications.Event) bool {
	for _, e := range r.published() {
		if e == event {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T) (*Manager, *queue.Store, *config.Config, *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	manager := NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	return manager, store, cfg, notifier
}

// laneFor returns the configured lane containing the given stage name.
func laneFor(t *testing.T, m *Manager, stageName string) *laneState {
	t.Helper()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, lane := range m.lanes {
		for _, stg := range lane.stages {
			if stg.name == stageName {
				return lane
			}
		}
	}
	t.Fatalf("no lane contains stage %q", stageName)
	return nil
}
