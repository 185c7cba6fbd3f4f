package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"pulpit/internal/queue"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewRun(ctx, "2026-03-01", "Grace"); err != nil {
		t.Fatalf("first run: %v", err)
	}

	second, err := env.store.NewRun(ctx, "2026-03-02", "Hope")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	second.Status = queue.StatusFailed
	if err := env.store.Update(ctx, second); err != nil {
		t.Fatalf("second failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "2026-03-01")
	requireContains(t, out, "Grace")
	requireContains(t, out, "Hope")
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	run, err := env.store.NewRun(ctx, "2026-03-01", "Grace")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	run.Status = queue.StatusFailed
	if err := env.store.Update(ctx, run); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	updated, err := env.store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("lookup run: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear failed: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")

	out, _, err = runCLI(t, []string{"queue", "clear"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	run, err := env.store.NewRun(ctx, "2026-03-01", "Grace")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	run.Status = queue.StatusFailed
	if err := env.store.Update(ctx, run); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", run.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d reset for retry", run.ID))
}

func TestQueueStopSpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	run, err := env.store.NewRun(ctx, "2026-03-01", "Grace")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	run.Status = queue.StatusRendering
	if err := env.store.Update(ctx, run); err != nil {
		t.Fatalf("mark rendering: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "stop", fmt.Sprintf("%d", run.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue stop: %v", err)
	}
	requireContains(t, out, "Stopped 1 items")

	updated, err := env.store.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("lookup run: %v", err)
	}
	if updated.Status != queue.StatusReview {
		t.Fatalf("expected review, got %s", updated.Status)
	}
	if updated.ReviewReason != queue.UserStopReason {
		t.Fatalf("expected review reason %q, got %q", queue.UserStopReason, updated.ReviewReason)
	}
	if !updated.NeedsReview {
		t.Fatalf("expected needs_review to be true")
	}
}

func TestQueueRetryInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "retry", "abc"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid item id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestQueueListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewRun(ctx, "2026-03-01", "Grace"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := env.store.NewRun(ctx, "2026-03-02", "Hope"); err != nil {
		t.Fatalf("second run: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(payload.Items))
	}
	for _, item := range payload.Items {
		if _, ok := item["id"]; !ok {
			t.Fatal("missing 'id' key in JSON item")
		}
		if _, ok := item["status"]; !ok {
			t.Fatal("missing 'status' key in JSON item")
		}
		if _, ok := item["runDate"]; !ok {
			t.Fatal("missing 'runDate' key in JSON item")
		}
	}
}

func TestQueueStatusJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewRun(ctx, "2026-03-01", "Grace"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := env.store.NewRun(ctx, "2026-03-02", "Hope")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	second.Status = queue.StatusFailed
	if err := env.store.Update(ctx, second); err != nil {
		t.Fatalf("second failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status --json: %v", err)
	}

	var payload struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload.Counts["pending"] != 1 {
		t.Fatalf("expected pending=1, got %v", payload.Counts)
	}
	if payload.Counts["failed"] != 1 {
		t.Fatalf("expected failed=1, got %v", payload.Counts)
	}
}

func TestQueueDescribeJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	run, err := env.store.NewRun(ctx, "2026-03-01", "Grace")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "describe", fmt.Sprintf("%d", run.ID), "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe --json: %v", err)
	}

	var payload struct {
		Item map[string]any `json:"item"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if payload.Item["id"] != float64(run.ID) {
		t.Fatalf("expected id %d, got %v", run.ID, payload.Item["id"])
	}
	if payload.Item["runDate"] != "2026-03-01" {
		t.Fatalf("expected runDate 2026-03-01, got %v", payload.Item["runDate"])
	}
}

func TestQueueDescribeText(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	run, err := env.store.NewRun(ctx, "2026-03-01", "Grace")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	run.Status = queue.StatusScripted
	run.Title = "On Grace"
	run.ScriptFile = filepath.Join(env.cfg.Paths.OutputDir, "2026-03-01", "script.json")
	if err := env.store.Update(ctx, run); err != nil {
		t.Fatalf("update run: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "describe", fmt.Sprintf("%d", run.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue describe: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item #%d", run.ID))
	requireContains(t, out, "2026-03-01")
	requireContains(t, out, "On Grace")
	requireContains(t, out, "Scripted")
	requireContains(t, out, "script.json")
}

func TestQueueHealthJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewRun(ctx, "2026-03-01", "Grace"); err != nil {
		t.Fatalf("new run: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "health", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue health --json: %v", err)
	}

	var health map[string]any
	if err := json.Unmarshal([]byte(out), &health); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if health["Total"] != float64(1) {
		t.Fatalf("expected Total=1, got %v", health["Total"])
	}
	if health["Pending"] != float64(1) {
		t.Fatalf("expected Pending=1, got %v", health["Pending"])
	}
}

func TestQueueListStoreFallback(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewRun(ctx, "2026-03-01", "Grace"); err != nil {
		t.Fatalf("new run: %v", err)
	}

	missingSocket := filepath.Join(env.baseDir, "missing.sock")
	out, _, err := runCLI(t, []string{"queue", "list"}, missingSocket, env.configPath)
	if err != nil {
		t.Fatalf("queue list fallback: %v", err)
	}
	requireContains(t, out, "2026-03-01")
	requireContains(t, out, "Grace")
}

func TestQueueHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "Database path:")
	requireContains(t, out, "queue_items table present:")
}
