package api

import (
	"testing"
	"time"

	"pulpit/internal/queue"
	"pulpit/internal/stage"
	"pulpit/internal/workflow"
)

func TestFromQueueItemCarriesArtifacts(t *testing.T) {
	created := time.Date(2026, 3, 14, 6, 0, 0, 0, time.UTC)
	item := &queue.Item{
		ID:             7,
		RunDate:        "2026-03-14",
		Title:          "Walking in Faith",
		SeedTopic:      "perseverance",
		Status:         queue.StatusRendered,
		ScriptFile:     "/runs/2026-03-14/script.json",
		AudioFile:      "/runs/2026-03-14/narration.mp3",
		VideoFile:      "/runs/2026-03-14/sermon.mp4",
		CreatedAt:      created,
		ProgressStage:  "Rendering",
		ProgressPercent: 100,
		MetadataJSON:   `{"title":"Walking in Faith"}`,
	}

	dto := FromQueueItem(item)
	if dto.ID != 7 || dto.RunDate != "2026-03-14" || dto.Title != "Walking in Faith" {
		t.Fatalf("unexpected identity fields: %+v", dto)
	}
	if dto.Status != "rendered" {
		t.Fatalf("unexpected status %q", dto.Status)
	}
	if dto.VideoFile != "/runs/2026-03-14/sermon.mp4" {
		t.Fatalf("unexpected video file %q", dto.VideoFile)
	}
	if dto.CreatedAt == "" {
		t.Fatal("expected created timestamp")
	}
	if len(dto.Metadata) == 0 {
		t.Fatal("expected metadata pass-through")
	}
}

func TestFromQueueItemNormalizesCompletedProgressStage(t *testing.T) {
	item := &queue.Item{
		Status:          queue.StatusCompleted,
		ProgressStage:   "Publishing",
		ProgressPercent: 42,
	}

	dto := FromQueueItem(item)
	if dto.Progress.Stage != "Completed" {
		t.Fatalf("expected completed stage, got %q", dto.Progress.Stage)
	}
	if dto.Progress.Percent != 100 {
		t.Fatalf("expected percent 100, got %v", dto.Progress.Percent)
	}
}

func TestFromQueueItemPreservesReviewCompletionStage(t *testing.T) {
	item := &queue.Item{
		Status:          queue.StatusCompleted,
		NeedsReview:     true,
		ProgressStage:   "Manual assembly",
		ProgressPercent: 100,
	}

	dto := FromQueueItem(item)
	if dto.Progress.Stage != "Manual assembly" {
		t.Fatalf("expected manual assembly stage, got %q", dto.Progress.Stage)
	}
}

func TestFromQueueItemFillsEmptyProgressStageFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status queue.Status
		want   string
	}{
		{name: "pending", status: queue.StatusPending, want: "Pending"},
		{name: "synthesizing", status: queue.StatusSynthesizing, want: "Synthesizing"},
		{name: "rendering", status: queue.StatusRendering, want: "Rendering"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := FromQueueItem(&queue.Item{Status: tt.status})
			if dto.Progress.Stage != tt.want {
				t.Fatalf("expected stage %q, got %q", tt.want, dto.Progress.Stage)
			}
		})
	}
}

func TestFromStatusSummarySortsStageHealth(t *testing.T) {
	summary := workflow.StatusSummary{
		Running:    true,
		QueueStats: map[queue.Status]int{queue.StatusPending: 2},
		StageHealth: map[string]stage.Health{
			"renderer":     {Name: "renderer", Ready: true},
			"narrator":     {Name: "narrator", Ready: false, Detail: "missing API key"},
			"scriptwriter": {Name: "scriptwriter", Ready: true},
		},
	}

	wf := FromStatusSummary(summary)
	if !wf.Running {
		t.Fatal("expected running workflow")
	}
	if wf.QueueStats["pending"] != 2 {
		t.Fatalf("unexpected stats %v", wf.QueueStats)
	}
	names := make([]string, 0, len(wf.StageHealth))
	for _, h := range wf.StageHealth {
		names = append(names, h.Name)
	}
	want := []string{"narrator", "renderer", "scriptwriter"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected sorted names %v, got %v", want, names)
		}
	}
	if wf.StageHealth[0].Detail != "missing API key" {
		t.Fatalf("expected detail to survive, got %+v", wf.StageHealth[0])
	}
}

func TestFromQueueItemNil(t *testing.T) {
	dto := FromQueueItem(nil)
	if dto.ID != 0 || dto.Status != "" {
		t.Fatalf("expected zero DTO, got %+v", dto)
	}
	if items := FromQueueItems(nil); items != nil {
		t.Fatalf("expected nil slice, got %v", items)
	}
}
