package workflow

import (
	"context"
	"errors"
	"testing"

	"pulpit/internal/queue"
	"pulpit/internal/services"
	"pulpit/internal/testsupport"
)

func TestRunItemDrivesAllStages(t *testing.T) {
	manager, store, _, _ := newTestManager(t)

	var order []string
	record := func(name string) *stubHandler {
		return &stubHandler{
			name: name,
			execute: func(context.Context, *queue.Item) error {
				order = append(order, name)
				return nil
			},
		}
	}
	manager.ConfigureStages(StageSet{
		Scriptwriter: record("scriptwriter"),
		Narrator:     record("narrator"),
		Renderer:     record("renderer"),
		Publisher:    record("publisher"),
	})

	item := testsupport.MustNewRun(t, store, "2026-04-01", "grace")
	if err := manager.RunItem(context.Background(), item); err != nil {
		t.Fatalf("RunItem: %v", err)
	}

	want := []string{"scriptwriter", "narrator", "renderer", "publisher"}
	if len(order) != len(want) {
		t.Fatalf("stage order = %v", order)
	}
	for i, name := range want {
		if order[i] != name {
			t.Fatalf("stage %d = %q, want %q", i, order[i], name)
		}
	}
	if item.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", item.Status)
	}

	persisted, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if persisted.Status != queue.StatusCompleted {
		t.Fatalf("persisted status = %s", persisted.Status)
	}
}

func TestRunItemStopsOnFailure(t *testing.T) {
	manager, store, _, _ := newTestManager(t)

	manager.ConfigureStages(StageSet{
		Scriptwriter: &stubHandler{name: "scriptwriter"},
		Narrator: &stubHandler{
			name: "narrator",
			execute: func(context.Context, *queue.Item) error {
				return errors.New("voice unavailable")
			},
		},
		Renderer: &stubHandler{name: "renderer"},
	})

	item := testsupport.MustNewRun(t, store, "2026-04-01", "")
	if err := manager.RunItem(context.Background(), item); err == nil {
		t.Fatal("expected stage error")
	}
	if item.Status != queue.StatusFailed {
		t.Fatalf("status = %s", item.Status)
	}
}

func TestRunItemReviewRoutingIsNotAFailure(t *testing.T) {
	manager, store, _, _ := newTestManager(t)

	manager.ConfigureStages(StageSet{
		Scriptwriter: &stubHandler{
			name: "scriptwriter",
			execute: func(context.Context, *queue.Item) error {
				return services.Wrap(services.ErrValidation, "scripting", "validate script",
					"Script came back empty", nil)
			},
		},
	})

	item := testsupport.MustNewRun(t, store, "2026-04-01", "")
	if err := manager.RunItem(context.Background(), item); err != nil {
		t.Fatalf("RunItem: %v", err)
	}
	if item.Status != queue.StatusReview {
		t.Fatalf("status = %s", item.Status)
	}
	if !item.NeedsReview {
		t.Fatal("needs_review not set")
	}
}

func TestRunItemRefusedWhileRunning(t *testing.T) {
	manager, store, _, _ := newTestManager(t)
	manager.ConfigureStages(StageSet{Scriptwriter: &stubHandler{name: "scriptwriter"}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	item := testsupport.MustNewRun(t, store, "2026-04-02", "")
	if err := manager.RunItem(context.Background(), item); err == nil {
		t.Fatal("expected refusal while lanes are running")
	}
}
