package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/media/ffprobe"
)

var commandContext = exec.CommandContext

// Renderer assembles the Ken Burns slideshow with ffmpeg.
type Renderer struct {
	cfg           *config.Config
	logger        *slog.Logger
	probeDuration func(ctx context.Context, path string) (float64, error)
}

// Option customises a Renderer, primarily for tests.
type Option func(*Renderer)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProbe replaces the audio duration probe.
func WithProbe(probe func(ctx context.Context, path string) (float64, error)) Option {
	return func(r *Renderer) {
		if probe != nil {
			r.probeDuration = probe
		}
	}
}

// New constructs a Renderer from configuration.
func New(cfg *config.Config, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	r.probeDuration = func(ctx context.Context, path string) (float64, error) {
		result, err := ffprobe.Inspect(ctx, cfg.FFprobeBinary(), path)
		if err != nil {
			return 0, err
		}
		return result.DurationSeconds(), nil
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Input names the artifacts the renderer consumes.
type Input struct {
	Title     string
	Subtitle  string
	RunDate   string
	AudioPath string
	// OutputPath is the final MP4 location; intermediate clips live in a
	// cache directory beside it.
	OutputPath string
	Images     []string
}

// Result describes a finished render.
type Result struct {
	VideoPath       string
	DurationSeconds float64
	SlideCount      int
}

// Render builds the video: static title-card intro, panning slides covering
// the narration, concat of the pre-encoded clips, then the audio mux. The
// finished file is renamed into place so a crash never leaves a partial final.
func (r *Renderer) Render(ctx context.Context, in Input) (*Result, error) {
	if strings.TrimSpace(in.AudioPath) == "" {
		return nil, errors.New("audio path is required")
	}
	if strings.TrimSpace(in.OutputPath) == "" {
		return nil, errors.New("output path is required")
	}

	totalSeconds, err := r.probeDuration(ctx, in.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("probe narration duration: %w", err)
	}
	if totalSeconds <= 0 {
		return nil, fmt.Errorf("narration audio reports no duration: %s", in.AudioPath)
	}

	cacheDir := filepath.Join(filepath.Dir(in.OutputPath), "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create render cache: %w", err)
	}

	cardPath := filepath.Join(cacheDir, "title_card.png")
	card := TitleCard{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Brand:    r.cfg.Render.BrandName,
		FontPath: r.cfg.Render.FontPath,
		Width:    r.cfg.Render.Width,
		Height:   r.cfg.Render.Height,
	}
	if in.RunDate != "" {
		if parsed, err := time.Parse("2006-01-02", in.RunDate); err == nil {
			card.Date = parsed
		}
	}
	if err := r.WriteTitleCard(ctx, card, cardPath); err != nil {
		return nil, err
	}

	images := in.Images
	if len(images) == 0 {
		images = []string{cardPath}
	}
	plan := BuildPlan(totalSeconds, r.cfg.Render.IntroSeconds, images,
		r.cfg.Render.MinSlideSeconds, r.cfg.Render.MaxSlideSeconds)

	r.logger.Info("render plan ready",
		logging.Float64("narration_seconds", totalSeconds),
		logging.Float64("intro_seconds", plan.IntroSeconds),
		logging.Int("slides", len(plan.Slides)))

	clips := make([]string, 0, len(plan.Slides)+1)
	introClip := filepath.Join(cacheDir, "clip_00_intro_still.mp4")
	if err := runFFmpeg(ctx, r.cfg.FFmpegBinary(), "intro-still",
		r.introClipArgs(cardPath, plan.IntroSeconds, introClip)); err != nil {
		return nil, err
	}
	clips = append(clips, introClip)

	for i, slide := range plan.Slides {
		clipPath := filepath.Join(cacheDir, fmt.Sprintf("clip_%02d.mp4", i+1))
		label := fmt.Sprintf("slide-clip:%s", filepath.Base(slide.Image))
		if err := runFFmpeg(ctx, r.cfg.FFmpegBinary(), label,
			r.slideClipArgs(slide, clipPath)); err != nil {
			return nil, err
		}
		clips = append(clips, clipPath)
	}

	concatList := filepath.Join(cacheDir, "concat_list.txt")
	if err := writeConcatList(concatList, clips); err != nil {
		return nil, err
	}
	concatVideo := filepath.Join(cacheDir, "video_concat.mp4")
	if err := runFFmpeg(ctx, r.cfg.FFmpegBinary(), "concat",
		concatArgs(concatList, concatVideo)); err != nil {
		return nil, err
	}

	muxed := filepath.Join(cacheDir, "final_mux.mp4")
	if err := runFFmpeg(ctx, r.cfg.FFmpegBinary(), "mux",
		muxArgs(concatVideo, in.AudioPath, muxed)); err != nil {
		return nil, err
	}

	if err := os.Remove(in.OutputPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("clear previous render: %w", err)
	}
	if err := os.Rename(muxed, in.OutputPath); err != nil {
		return nil, fmt.Errorf("move final render: %w", err)
	}

	return &Result{
		VideoPath:       in.OutputPath,
		DurationSeconds: totalSeconds,
		SlideCount:      len(plan.Slides),
	}, nil
}

// introClipArgs encodes the static title-card intro (no motion).
func (r *Renderer) introClipArgs(cardPath string, seconds float64, outputPath string) []string {
	fps := fmt.Sprintf("%d", r.cfg.Render.FPS)
	cover := scaleToCover(r.cfg.Render.Width, r.cfg.Render.Height)
	return []string{
		"-y",
		"-framerate", fps, "-loop", "1", "-i", cardPath,
		"-filter_complex", fmt.Sprintf("[0:v]%s,format=yuv420p[vout]", cover),
		"-map", "[vout]",
		"-vsync", "cfr",
		"-r", fps,
		"-t", fmt.Sprintf("%.3f", seconds),
		"-c:v", "libx264", "-preset", r.cfg.Render.Preset,
		"-b:v", r.cfg.Render.VideoBitrate, "-pix_fmt", "yuv420p",
		outputPath,
	}
}

// slideClipArgs encodes one fixed-zoom panning slide.
func (r *Renderer) slideClipArgs(slide Slide, outputPath string) []string {
	fps := r.cfg.Render.FPS
	frames := int(slide.Seconds * float64(fps))
	if frames < 1 {
		frames = 1
	}
	zoom, x, y := zoompanExprs(frames, slide.Mode, r.cfg.Render.Zoom)
	cover := scaleToCover(r.cfg.Render.Width, r.cfg.Render.Height)
	filter := fmt.Sprintf(
		"[0:v]%s[v];[v]zoompan=z='%s':x='%s':y='%s':d=1:fps=%d:s=%dx%d,format=yuv420p[vout]",
		cover, zoom, x, y, fps, r.cfg.Render.Width, r.cfg.Render.Height)
	fpsArg := fmt.Sprintf("%d", fps)
	return []string{
		"-y",
		"-framerate", fpsArg, "-loop", "1", "-i", slide.Image,
		"-filter_complex", filter,
		"-map", "[vout]",
		"-vsync", "cfr",
		"-r", fpsArg,
		"-t", fmt.Sprintf("%.3f", slide.Seconds),
		"-c:v", "libx264", "-preset", r.cfg.Render.Preset,
		"-b:v", r.cfg.Render.VideoBitrate, "-pix_fmt", "yuv420p",
		outputPath,
	}
}

func concatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}

// muxArgs attaches the narration track; -shortest makes the audio the source
// of truth for the final duration.
func muxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	}
}

func writeConcatList(listPath string, clips []string) error {
	var buf bytes.Buffer
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path: %w", err)
		}
		fmt.Fprintf(&buf, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}

// ListImages returns the image files in dir sorted by name. Missing
// directories yield an empty list so the renderer falls back to the title
// card background.
func ListImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".webp":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	return images
}

func runFFmpeg(ctx context.Context, binary, label string, args []string) error {
	cmd := commandContext(ctx, binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", label, err, outputTail(output.String()))
	}
	return nil
}

// outputTail keeps the last few lines of ffmpeg chatter, where the actual
// error message lives.
func outputTail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > 6 {
		lines = lines[len(lines)-6:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
