package deps_test

import (
	"testing"

	"pulpit/internal/config"
	"pulpit/internal/deps"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	statuses := deps.CheckBinaries([]deps.Requirement{
		{Name: "definitely-missing", Command: "pulpit-no-such-binary"},
		{Name: "unconfigured", Command: ""},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if status.Available {
			t.Fatalf("%s should be unavailable", status.Name)
		}
		if status.Detail == "" {
			t.Fatalf("%s should carry a detail message", status.Name)
		}
	}
	missing := deps.MissingRequired(statuses)
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing required, got %v", missing)
	}
}

func TestRequiredCoversMediaTooling(t *testing.T) {
	cfg := config.Default()
	reqs := deps.Required(&cfg)

	names := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		names[req.Name] = true
		if req.Optional {
			t.Fatalf("%s should be mandatory", req.Name)
		}
	}
	for _, want := range []string{"ffmpeg", "ffprobe"} {
		if !names[want] {
			t.Fatalf("expected requirement %s, got %v", want, reqs)
		}
	}
}
