package stage

import (
	"errors"
	"path/filepath"
	"testing"

	"pulpit/internal/services"
	"pulpit/internal/testsupport"
)

func TestRequireFile_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narration.mp3")
	testsupport.WriteFile(t, path, "audio")

	if err := RequireFile("narrator", "narration audio", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireFile_EmptyPath(t *testing.T) {
	err := RequireFile("renderer", "narration audio", "")
	if err == nil {
		t.Fatal("expected error for empty path")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequireFile_Missing(t *testing.T) {
	err := RequireFile("renderer", "script", filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRequireFile_Directory(t *testing.T) {
	err := RequireFile("publisher", "final video", t.TempDir())
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for directory, got %v", err)
	}
}
