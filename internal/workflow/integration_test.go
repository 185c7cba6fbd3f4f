package workflow

import (
	"context"
	"testing"
	"time"

	"pulpit/internal/queue"
	"pulpit/internal/testsupport"
)

func TestWorkflowProcessesItemEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping workflow integration test in short mode")
	}

	manager, store, cfg, notifier := newTestManager(t)
	cfg.Workflow.QueuePollInterval = 1
	manager.pollInterval = 100 * time.Millisecond

	manager.ConfigureStages(StageSet{
		Scriptwriter: &stubHandler{
			name: "scriptwriter",
			execute: func(_ context.Context, item *queue.Item) error {
				item.Title = "On Hope"
				item.ScriptFile = "/tmp/on-hope.json"
				return nil
			},
		},
		Narrator: &stubHandler{
			name: "narrator",
			execute: func(_ context.Context, item *queue.Item) error {
				item.AudioFile = "/tmp/on-hope.mp3"
				return nil
			},
		},
		Renderer: &stubHandler{
			name: "renderer",
			execute: func(_ context.Context, item *queue.Item) error {
				item.VideoFile = "/tmp/on-hope.mp4"
				return nil
			},
		},
		Publisher: &stubHandler{
			name: "publisher",
			execute: func(_ context.Context, item *queue.Item) error {
				item.FinalFile = "/library/on-hope.mp4"
				return nil
			},
		},
	})

	item := testsupport.MustNewRun(t, store, "2026-03-14", "hope")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	deadline := time.Now().Add(15 * time.Second)
	for {
		got, err := store.GetByID(context.Background(), item.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Status == queue.StatusCompleted {
			if got.FinalFile != "/library/on-hope.mp4" {
				t.Fatalf("final file = %q", got.FinalFile)
			}
			if got.ProgressPercent < 100 {
				t.Fatalf("progress = %.0f", got.ProgressPercent)
			}
			break
		}
		if got.Status == queue.StatusFailed || got.Status == queue.StatusReview {
			t.Fatalf("item ended in %s: %s", got.Status, got.ErrorMessage)
		}
		if time.Now().After(deadline) {
			t.Fatalf("item stuck in %s", got.Status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if len(notifier.published()) == 0 {
		t.Fatal("expected queue notifications to be published")
	}
}
