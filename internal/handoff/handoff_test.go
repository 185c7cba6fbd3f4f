package handoff

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"pulpit/internal/testsupport"
)

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()
	cardPath := filepath.Join(dir, "card.png")
	testsupport.WriteFile(t, cardPath, "png")
	audioPath := filepath.Join(dir, "voice.mp3")
	testsupport.WriteFile(t, audioPath, "mp3")

	reviewDir := filepath.Join(dir, "review")
	bundle, err := Write(reviewDir, Input{
		Title:        "Walking in Faith",
		Subtitle:     "A daily sermon",
		RunDate:      "2026-03-14",
		Description:  "Today we reflect on trust.",
		CardPath:     cardPath,
		AudioPath:    audioPath,
		OverlayLines: []string{"Grace meets us where we are.", "Every morning is a fresh start."},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	wantDir := filepath.Join(reviewDir, "2026-03-14-walking_in_faith")
	if bundle.Dir != wantDir {
		t.Fatalf("bundle dir = %q, want %q", bundle.Dir, wantDir)
	}
	for _, path := range []string{bundle.CSVPath, bundle.CardPath, bundle.AudioPath, bundle.InstructionsPath} {
		if path == "" {
			t.Fatal("bundle path missing")
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("bundle file missing: %v", err)
		}
	}
	if filepath.Ext(bundle.AudioPath) != ".mp3" {
		t.Fatalf("audio copy = %q", bundle.AudioPath)
	}

	instructions, err := os.ReadFile(bundle.InstructionsPath)
	if err != nil {
		t.Fatalf("read instructions: %v", err)
	}
	if !strings.Contains(string(instructions), "Bulk Create") {
		t.Fatalf("instructions = %s", instructions)
	}
}

func TestWriteCSVSortedHeaders(t *testing.T) {
	bundle, err := Write(t.TempDir(), Input{
		Title:        "Walking in Faith",
		Subtitle:     "A daily sermon",
		RunDate:      "2026-03-14",
		Description:  "Today we reflect on trust.",
		OverlayLines: []string{"Line one"},
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	file, err := os.Open(bundle.CSVPath)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}

	headers := records[0]
	if !sort.StringsAreSorted(headers) {
		t.Fatalf("headers not sorted: %v", headers)
	}
	values := map[string]string{}
	for i, header := range headers {
		values[header] = records[1][i]
	}
	if values["title"] != "Walking in Faith" {
		t.Fatalf("title = %q", values["title"])
	}
	if values["date"] != "2026-03-14" {
		t.Fatalf("date = %q", values["date"])
	}
	if values["overlay_01"] != "Line one" {
		t.Fatalf("overlay_01 = %q", values["overlay_01"])
	}
}

func TestWriteWithoutOptionalFiles(t *testing.T) {
	bundle, err := Write(t.TempDir(), Input{Title: "Walking in Faith"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if bundle.CardPath != "" || bundle.AudioPath != "" {
		t.Fatalf("expected no optional copies: %+v", bundle)
	}
	if _, err := os.Stat(bundle.CSVPath); err != nil {
		t.Fatalf("csv missing: %v", err)
	}
}

func TestWriteRequiresTitle(t *testing.T) {
	if _, err := Write(t.TempDir(), Input{}); err == nil {
		t.Fatal("expected error without title")
	}
}
