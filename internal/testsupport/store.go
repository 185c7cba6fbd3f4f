package testsupport

import (
	"context"
	"testing"

	"pulpit/internal/config"
	"pulpit/internal/queue"
)

// MustOpenStore opens a queue store for the given config, ensuring the log
// directory exists first. It fails the test on error and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open queue store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustNewRun enqueues a fresh run item and fails the test on error.
func MustNewRun(t testing.TB, store *queue.Store, runDate, seedTopic string) *queue.Item {
	t.Helper()

	item, err := store.NewRun(context.Background(), runDate, seedTopic)
	if err != nil {
		t.Fatalf("enqueue run %s: %v", runDate, err)
	}
	return item
}
