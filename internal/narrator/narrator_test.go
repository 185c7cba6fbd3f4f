package narrator

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
	"pulpit/internal/services/elevenlabs"
	"pulpit/internal/services/scriptgen"
	"pulpit/internal/testsupport"
)

type stubSynthesizer struct {
	err      error
	lastText string
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, outputPath string) (*elevenlabs.Result, error) {
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	if err := os.WriteFile(outputPath, []byte("mp3"), 0o644); err != nil {
		return nil, err
	}
	return &elevenlabs.Result{AudioPath: outputPath, OutputFormat: "mp3_44100_128", SizeBytes: 3}, nil
}

func (s *stubSynthesizer) HealthCheck(ctx context.Context) error { return s.err }

type noopNotifier struct {
	events []notifications.Event
}

func (n *noopNotifier) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	n.events = append(n.events, event)
	return nil
}

func fakePadAudio(t *testing.T) {
	t.Helper()
	original := padAudio
	padAudio = func(ctx context.Context, binary, inputPath, outputPath string, padMillis int) error {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		return os.WriteFile(outputPath, data, 0o644)
	}
	t.Cleanup(func() { padAudio = original })
}

func itemWithScript(t *testing.T, cfg *config.Config, store *queue.Store) *queue.Item {
	t.Helper()
	item := testsupport.MustNewRun(t, store, "2026-03-14", "")
	script := scriptgen.Script{
		Title:    "Walking in Faith",
		Sections: []scriptgen.Section{{Text: "Grace meets us where we are."}},
	}
	scriptPath := filepath.Join(cfg.Paths.OutputDir, "2026-03-14", "script.json")
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := script.Save(scriptPath); err != nil {
		t.Fatalf("save script: %v", err)
	}
	item.Title = script.Title
	item.ScriptFile = scriptPath
	return item
}

func TestExecuteSynthesizesNarration(t *testing.T) {
	fakePadAudio(t)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := itemWithScript(t, cfg, store)

	tts := &stubSynthesizer{}
	notifier := &noopNotifier{}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), tts, notifier)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if tts.lastText != "Grace meets us where we are." {
		t.Fatalf("synthesized text = %q", tts.lastText)
	}
	if item.AudioFile == "" {
		t.Fatal("audio file not recorded")
	}
	if _, err := os.Stat(item.AudioFile); err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
	if filepath.Base(item.AudioFile) != "narration.mp3" {
		t.Fatalf("audio file = %q", item.AudioFile)
	}
	rawPath := filepath.Join(filepath.Dir(item.AudioFile), "narration_raw.mp3")
	if _, err := os.Stat(rawPath); !os.IsNotExist(err) {
		t.Fatal("raw synthesis audio should be removed")
	}
	if len(notifier.events) == 0 || notifier.events[0] != notifications.EventNarrationCompleted {
		t.Fatalf("events = %v", notifier.events)
	}
}

func TestPrepareRejectsMissingScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, "2026-03-14", "")

	handler := NewWithDependencies(cfg, store, logging.NewNop(), &stubSynthesizer{}, nil)
	err := handler.Prepare(context.Background(), item)
	if err == nil {
		t.Fatal("expected error without script file")
	}
	if services.FailureStatus(err) != queue.StatusReview {
		t.Fatalf("failure status = %s", services.FailureStatus(err))
	}
}

func TestExecuteSynthesisFailureIsTransient(t *testing.T) {
	fakePadAudio(t)
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := itemWithScript(t, cfg, store)

	tts := &stubSynthesizer{err: errors.New("synthesis down")}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), tts, nil)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.FailureStatus(err) != queue.StatusFailed {
		t.Fatalf("failure status = %s", services.FailureStatus(err))
	}
}

func TestHealthCheckRequiresCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := NewWithDependencies(cfg, store, logging.NewNop(), &stubSynthesizer{}, nil)

	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}
	cfg.ElevenLabs.VoiceID = ""
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without voice id")
	}
}
