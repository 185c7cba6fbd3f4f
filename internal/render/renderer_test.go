package render

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"pulpit/internal/testsupport"
)

// fakeCommands records every ffmpeg invocation and pre-creates its output
// file so the pipeline can proceed without a real encoder.
func fakeCommands(t *testing.T) *[][]string {
	t.Helper()
	var calls [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		if len(args) > 0 {
			outputPath := args[len(args)-1]
			os.MkdirAll(filepath.Dir(outputPath), 0o755)
			os.WriteFile(outputPath, []byte("clip"), 0o644)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &calls
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	os.Exit(0)
}

func TestRenderBuildsFullPipeline(t *testing.T) {
	calls := fakeCommands(t)
	cfg := testsupport.NewConfig(t)

	renderer := New(cfg, WithProbe(func(ctx context.Context, path string) (float64, error) {
		return 60, nil
	}))

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "narration.mp3")
	testsupport.WriteFile(t, audioPath, "mp3")
	imageA := filepath.Join(dir, "a.png")
	testsupport.WriteFile(t, imageA, "png")
	outputPath := filepath.Join(dir, "sermon.mp4")

	result, err := renderer.Render(context.Background(), Input{
		Title:      "Walking in Faith",
		RunDate:    "2026-03-14",
		AudioPath:  audioPath,
		OutputPath: outputPath,
		Images:     []string{imageA},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.VideoPath != outputPath {
		t.Fatalf("video path = %q", result.VideoPath)
	}
	if result.DurationSeconds != 60 {
		t.Fatalf("duration = %f", result.DurationSeconds)
	}
	if result.SlideCount == 0 {
		t.Fatal("expected slides")
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("final file missing: %v", err)
	}

	// title card, intro clip, slide clips, concat, mux
	if len(*calls) != 4+result.SlideCount {
		t.Fatalf("call count = %d, want %d", len(*calls), 4+result.SlideCount)
	}
	titleCard := (*calls)[0]
	if !containsArg(titleCard, "lavfi") {
		t.Fatalf("first call should render the title card: %v", titleCard)
	}
	if !strings.Contains(strings.Join(titleCard, " "), "Walking in Faith") {
		t.Fatalf("title card missing title text: %v", titleCard)
	}
	last := (*calls)[len(*calls)-1]
	joined := strings.Join(last, " ")
	if !strings.Contains(joined, "-shortest") || !strings.Contains(joined, "+faststart") {
		t.Fatalf("final call should mux audio: %v", last)
	}
	concat := (*calls)[len(*calls)-2]
	if !containsArg(concat, "concat") {
		t.Fatalf("expected concat before mux: %v", concat)
	}

	listData, err := os.ReadFile(filepath.Join(dir, "cache", "concat_list.txt"))
	if err != nil {
		t.Fatalf("read concat list: %v", err)
	}
	if !strings.Contains(string(listData), "clip_00_intro_still.mp4") {
		t.Fatalf("concat list missing intro: %s", listData)
	}
}

func TestRenderFallsBackToTitleCard(t *testing.T) {
	fakeCommands(t)
	cfg := testsupport.NewConfig(t)
	renderer := New(cfg, WithProbe(func(ctx context.Context, path string) (float64, error) {
		return 30, nil
	}))

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "narration.mp3")
	testsupport.WriteFile(t, audioPath, "mp3")

	result, err := renderer.Render(context.Background(), Input{
		Title:      "Walking in Faith",
		AudioPath:  audioPath,
		OutputPath: filepath.Join(dir, "sermon.mp4"),
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if result.SlideCount == 0 {
		t.Fatal("expected title card slides when no images provided")
	}
}

func TestRenderRequiresInputs(t *testing.T) {
	renderer := New(testsupport.NewConfig(t))
	if _, err := renderer.Render(context.Background(), Input{OutputPath: "out.mp4"}); err == nil {
		t.Fatal("expected error without audio path")
	}
	if _, err := renderer.Render(context.Background(), Input{AudioPath: "in.mp3"}); err == nil {
		t.Fatal("expected error without output path")
	}
}

func TestRenderRejectsZeroDuration(t *testing.T) {
	fakeCommands(t)
	cfg := testsupport.NewConfig(t)
	renderer := New(cfg, WithProbe(func(ctx context.Context, path string) (float64, error) {
		return 0, nil
	}))
	dir := t.TempDir()
	_, err := renderer.Render(context.Background(), Input{
		Title:      "Walking in Faith",
		AudioPath:  filepath.Join(dir, "narration.mp3"),
		OutputPath: filepath.Join(dir, "sermon.mp4"),
	})
	if err == nil {
		t.Fatal("expected error for zero duration audio")
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.jpg"), "x")
	testsupport.WriteFile(t, filepath.Join(dir, "a.png"), "x")
	testsupport.WriteFile(t, filepath.Join(dir, "notes.txt"), "x")

	images := ListImages(dir)
	if len(images) != 2 {
		t.Fatalf("images = %v", images)
	}
	if filepath.Base(images[0]) != "a.png" || filepath.Base(images[1]) != "b.jpg" {
		t.Fatalf("unexpected order: %v", images)
	}

	if images := ListImages(filepath.Join(dir, "missing")); images != nil {
		t.Fatalf("expected nil for missing dir, got %v", images)
	}
}

func TestEscapeDrawText(t *testing.T) {
	escaped := escapeDrawText(`It's 50% grace: always`)
	for _, fragment := range []string{`\'`, `\%`, `\:`} {
		if !strings.Contains(escaped, fragment) {
			t.Fatalf("missing %q in %q", fragment, escaped)
		}
	}
}

func TestPadAudioArgs(t *testing.T) {
	args := padAudioArgs("in.mp3", "out.mp3", 500)
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "adelay=500:all=1") {
		t.Fatalf("missing head padding: %s", joined)
	}
	if !strings.Contains(joined, "apad=pad_dur=0.500") {
		t.Fatalf("missing tail padding: %s", joined)
	}
	if !strings.Contains(joined, "libmp3lame") {
		t.Fatalf("missing codec: %s", joined)
	}
}

func containsArg(args []string, target string) bool {
	for _, arg := range args {
		if arg == target {
			return true
		}
	}
	return false
}
