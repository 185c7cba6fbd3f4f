package publisher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/services"
	"pulpit/internal/services/youtube"
	"pulpit/internal/testsupport"
)

type stubUploader struct {
	err       error
	calls     int
	lastPath  string
	lastVideo youtube.Video
}

func (s *stubUploader) Upload(ctx context.Context, path string, video youtube.Video) (*youtube.Result, error) {
	s.calls++
	s.lastPath = path
	s.lastVideo = video
	if s.err != nil {
		return nil, s.err
	}
	return &youtube.Result{VideoID: "vid-123", VideoURL: "https://youtu.be/vid-123"}, nil
}

func (s *stubUploader) HealthCheck(ctx context.Context) error { return s.err }

type recordingNotifier struct {
	events []notifications.Event
}

func (r *recordingNotifier) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	r.events = append(r.events, event)
	return nil
}

func renderedItem(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Item {
	t.Helper()
	item := testsupport.MustNewRun(t, store, "2026-03-14", "")
	item.Title = "Walking in Faith"
	item.MetadataJSON = queue.Metadata{
		TitleValue:  "Walking in Faith",
		Description: "A reflection on trust.",
		Tags:        []string{"daily sermon"},
	}.ToJSON()

	videoPath := filepath.Join(cfg.Paths.OutputDir, "2026-03-14", "sermon.mp4")
	testsupport.WriteFile(t, videoPath, "mp4")
	item.VideoFile = videoPath
	return item
}

func TestExecuteUploadsAndFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithYouTube())
	store := testsupport.MustOpenStore(t, cfg)
	item := renderedItem(t, cfg, store)

	uploader := &stubUploader{}
	notifier := &recordingNotifier{}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), uploader, notifier)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.VideoID != "vid-123" {
		t.Fatalf("video id = %q", item.VideoID)
	}
	if uploader.lastVideo.Title != "Walking in Faith" {
		t.Fatalf("upload title = %q", uploader.lastVideo.Title)
	}
	if uploader.lastVideo.Description != "A reflection on trust." {
		t.Fatalf("upload description = %q", uploader.lastVideo.Description)
	}

	wantFinal := filepath.Join(cfg.Paths.LibraryDir, "2026-03-14-walking_in_faith.mp4")
	if item.FinalFile != wantFinal {
		t.Fatalf("final file = %q, want %q", item.FinalFile, wantFinal)
	}
	if _, err := os.Stat(wantFinal); err != nil {
		t.Fatalf("library file missing: %v", err)
	}
	if _, err := os.Stat(item.VideoFile); !os.IsNotExist(err) {
		t.Fatal("source video should be moved out of the run directory")
	}

	if len(notifier.events) == 0 || notifier.events[len(notifier.events)-1] != notifications.EventPublishCompleted {
		t.Fatalf("events = %v", notifier.events)
	}
}

func TestExecuteLibraryMoveOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := renderedItem(t, cfg, store)

	handler := NewWithDependencies(cfg, store, logging.NewNop(), nil, &recordingNotifier{})
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if item.VideoID != "" {
		t.Fatalf("unexpected upload: %q", item.VideoID)
	}
	if item.FinalFile == "" {
		t.Fatal("final file not recorded")
	}
	if _, err := os.Stat(item.FinalFile); err != nil {
		t.Fatalf("library file missing: %v", err)
	}
}

func TestExecuteSkipsUploadWhenVideoIDPersisted(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithYouTube())
	store := testsupport.MustOpenStore(t, cfg)
	item := renderedItem(t, cfg, store)
	item.VideoID = "vid-earlier"

	uploader := &stubUploader{}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), uploader, nil)

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if uploader.calls != 0 {
		t.Fatalf("upload calls = %d, want 0", uploader.calls)
	}
	if item.VideoID != "vid-earlier" {
		t.Fatalf("video id = %q", item.VideoID)
	}
	if item.FinalFile == "" {
		t.Fatal("library move should still complete the item")
	}
}

func TestExecuteUploadFailureIsTransient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithYouTube())
	store := testsupport.MustOpenStore(t, cfg)
	item := renderedItem(t, cfg, store)

	uploader := &stubUploader{err: errors.New("quota exceeded")}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), uploader, nil)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.FailureStatus(err) != queue.StatusFailed {
		t.Fatalf("failure status = %s", services.FailureStatus(err))
	}
}

func TestExecuteUploadEnabledWithoutClient(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithYouTube())
	store := testsupport.MustOpenStore(t, cfg)
	item := renderedItem(t, cfg, store)

	handler := NewWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.FailureStatus(err) != queue.StatusReview {
		t.Fatalf("failure status = %s", services.FailureStatus(err))
	}
}

func TestPrepareRejectsMissingVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, "2026-03-14", "")

	handler := NewWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	if err := handler.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected error without video file")
	}
}

func TestHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	handler := NewWithDependencies(cfg, store, logging.NewNop(), nil, nil)
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy library mode, got %+v", health)
	}

	cfg.YouTube.Enabled = true
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without upload client")
	}

	handler = NewWithDependencies(cfg, store, logging.NewNop(), &stubUploader{}, nil)
	cfg.YouTube.RefreshToken = "refresh"
	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy upload mode, got %+v", health)
	}
}
