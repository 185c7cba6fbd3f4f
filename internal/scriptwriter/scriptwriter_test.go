package scriptwriter

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/services"
	"pulpit/internal/services/scriptgen"
	"pulpit/internal/testsupport"
)

type stubGenerator struct {
	script  *scriptgen.Script
	err     error
	lastReq scriptgen.Request
}

func (s *stubGenerator) GenerateScript(ctx context.Context, req scriptgen.Request) (*scriptgen.Script, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.script, nil
}

func (s *stubGenerator) HealthCheck(ctx context.Context) error { return s.err }

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (r *recordingNotifier) Publish(ctx context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingNotifier) has(event notifications.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

func sampleScript() *scriptgen.Script {
	return &scriptgen.Script{
		Title:       "Walking in Faith",
		Description: "A reflection on trust.",
		Tags:        []string{"daily sermon"},
		Sections: []scriptgen.Section{
			{Heading: "Opening", Text: "Grace meets us where we are.", ImageQuery: "sunrise"},
			{Text: "Every morning is a fresh start."},
		},
	}
}

func TestExecuteGeneratesScript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, "2026-03-14", "trust")

	gen := &stubGenerator{script: sampleScript()}
	notifier := &recordingNotifier{}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), gen, notifier)

	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if gen.lastReq.RunDate != "2026-03-14" || gen.lastReq.SeedTopic != "trust" {
		t.Fatalf("request = %+v", gen.lastReq)
	}
	if item.Title != "Walking in Faith" {
		t.Fatalf("title = %q", item.Title)
	}
	if item.ScriptFile == "" {
		t.Fatal("script file not recorded")
	}
	if _, err := os.Stat(item.ScriptFile); err != nil {
		t.Fatalf("script file missing: %v", err)
	}
	if !strings.Contains(item.ScriptFile, "2026-03-14") {
		t.Fatalf("script path should use run date: %q", item.ScriptFile)
	}

	meta := queue.MetadataFromJSON(item.MetadataJSON, "")
	if meta.Title() != "Walking in Faith" {
		t.Fatalf("metadata title = %q", meta.Title())
	}
	if meta.Description != "A reflection on trust." {
		t.Fatalf("metadata description = %q", meta.Description)
	}

	loaded, err := scriptgen.LoadScript(item.ScriptFile)
	if err != nil {
		t.Fatalf("reload script: %v", err)
	}
	if len(loaded.Sections) != 2 {
		t.Fatalf("sections = %d", len(loaded.Sections))
	}

	if !notifier.has(notifications.EventScriptCompleted) {
		t.Fatal("expected script completion notification")
	}
}

func TestExecuteGenerationFailureIsTransient(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, "2026-03-14", "")

	gen := &stubGenerator{err: errors.New("upstream down")}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), gen, &recordingNotifier{})

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error")
	}
	if services.FailureStatus(err) != queue.StatusFailed {
		t.Fatalf("failure status = %s", services.FailureStatus(err))
	}
}

func TestExecuteFallsBackToBodyDescription(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.MustNewRun(t, store, "2026-03-15", "")

	script := sampleScript()
	script.Description = ""
	gen := &stubGenerator{script: script}
	handler := NewWithDependencies(cfg, store, logging.NewNop(), gen, &recordingNotifier{})

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	meta := queue.MetadataFromJSON(item.MetadataJSON, "")
	if !strings.Contains(meta.Description, "Grace meets us") {
		t.Fatalf("description = %q", meta.Description)
	}
}

func TestHealthCheckRequiresAPIKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	handler := NewWithDependencies(cfg, store, logging.NewNop(), &stubGenerator{}, nil)

	if health := handler.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("expected healthy, got %+v", health)
	}

	cfg.Scriptwriter.APIKey = ""
	if health := handler.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy without api key")
	}
}
