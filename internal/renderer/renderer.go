package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pulpit/internal/config"
	"pulpit/internal/deps"
	"pulpit/internal/handoff"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/render"
	"pulpit/internal/services"
	"pulpit/internal/services/scriptgen"
	"pulpit/internal/stage"
)

// VideoRenderer describes the ffmpeg assembly engine.
type VideoRenderer interface {
	Render(ctx context.Context, in render.Input) (*render.Result, error)
	WriteTitleCard(ctx context.Context, card render.TitleCard, outputPath string) error
}

// Renderer turns narration audio into the finished video, or prepares the
// Canva handoff bundle when local rendering is disabled.
type Renderer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	video    VideoRenderer
	notifier notifications.Service
}

// New constructs the renderer stage handler using default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	return NewWithDependencies(cfg, store, logger, render.New(cfg, render.WithLogger(logger)), notifications.NewService(cfg))
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, video VideoRenderer, notifier notifications.Service) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "renderer"))
	}
	return &Renderer{store: store, cfg: cfg, logger: stageLogger, video: video, notifier: notifier}
}

// SetLogger swaps the stage logger for per-item log routing.
func (r *Renderer) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger.With(logging.String("component", "renderer"))
	}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Rendering"
	}
	item.ProgressMessage = "Preparing video assembly"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting render preparation",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.Bool("local_render", r.cfg.LocalRender()),
	)
	return stage.RequireFile("rendering", "narration audio", item.AudioFile)
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	if r.cfg.LocalRender() {
		return r.renderLocal(ctx, item)
	}
	return r.prepareHandoff(ctx, item)
}

func (r *Renderer) renderLocal(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	runDir := stage.RunDirectory(r.cfg.Paths.OutputDir, item)
	images := render.ListImages(r.cfg.Paths.AssetsDir)
	r.updateProgress(ctx, item, "Assembling slideshow video", 10)

	result, err := r.video.Render(ctx, render.Input{
		Title:      displayTitle(item),
		Subtitle:   r.subtitle(),
		RunDate:    item.RunDate,
		AudioPath:  item.AudioFile,
		OutputPath: filepath.Join(runDir, "sermon.mp4"),
		Images:     images,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "assemble video",
			"Video assembly failed", err)
	}
	item.VideoFile = result.VideoPath
	item.TitleCardFile = filepath.Join(runDir, "cache", "title_card.png")

	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Video ready: %s", filepath.Base(result.VideoPath))
	logger.Info(
		"render completed",
		logging.String("video_file", result.VideoPath),
		logging.Float64("duration_seconds", result.DurationSeconds),
		logging.Int("slides", result.SlideCount),
	)

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, notifications.EventRenderCompleted, notifications.Payload{
			"title": displayTitle(item),
		}); err != nil {
			logger.Warn("render notification failed", logging.Error(err))
		}
	}
	return nil
}

func (r *Renderer) prepareHandoff(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	script, err := scriptgen.LoadScript(item.ScriptFile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "rendering", "load script",
			"Script document is unreadable; rerun the scripting stage", err)
	}

	runDir := stage.RunDirectory(r.cfg.Paths.OutputDir, item)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "rendering", "create run directory",
			"Failed to create output directory", err)
	}

	r.updateProgress(ctx, item, "Rendering title card", 20)
	cardPath := filepath.Join(runDir, "title_card.png")
	card := render.TitleCard{
		Title:    displayTitle(item),
		Subtitle: r.subtitle(),
		Brand:    r.cfg.Render.BrandName,
		Width:    r.cfg.Render.Width,
		Height:   r.cfg.Render.Height,
		FontPath: r.cfg.Render.FontPath,
	}
	if err := r.video.WriteTitleCard(ctx, card, cardPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "render title card",
			"Title card rendering failed", err)
	}
	item.TitleCardFile = cardPath

	r.updateProgress(ctx, item, "Writing Canva bundle", 60)
	meta := queue.MetadataFromJSON(item.MetadataJSON, item.Title)
	bundle, err := handoff.Write(r.cfg.Paths.ReviewDir, handoff.Input{
		Title:        displayTitle(item),
		Subtitle:     r.subtitle(),
		RunDate:      item.RunDate,
		Description:  meta.Description,
		CardPath:     cardPath,
		AudioPath:    item.AudioFile,
		OverlayLines: render.OverlayLines(script.FullText(), 90),
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "rendering", "write handoff bundle",
			"Failed to write Canva handoff bundle", err)
	}
	item.HandoffCSVFile = bundle.CSVPath

	item.Status = queue.StatusReview
	item.NeedsReview = true
	item.ReviewReason = "Canva handoff ready for manual assembly"
	item.ProgressStage = "Manual assembly"
	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Handoff bundle ready: %s", filepath.Base(bundle.Dir))
	logger.Info("handoff bundle completed", logging.String("bundle_dir", bundle.Dir))

	if r.notifier != nil {
		if err := r.notifier.Publish(ctx, notifications.EventHandoffReady, notifications.Payload{
			"title": displayTitle(item),
			"dir":   bundle.Dir,
		}); err != nil {
			logger.Warn("handoff notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the assembly engine's prerequisites for the
// configured render mode.
func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	const name = "renderer"
	if r.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if !r.cfg.LocalRender() {
		if strings.TrimSpace(r.cfg.Paths.ReviewDir) == "" {
			return stage.Unhealthy(name, "review directory not configured")
		}
		return stage.Healthy(name)
	}
	statuses := deps.CheckBinaries(deps.Required(r.cfg))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return stage.Unhealthy(name, fmt.Sprintf("missing binaries: %s", strings.Join(missing, ", ")))
	}
	return stage.Healthy(name)
}

func (r *Renderer) subtitle() string {
	if subtitle := strings.TrimSpace(r.cfg.Render.Subtitle); subtitle != "" {
		return subtitle
	}
	return strings.TrimSpace(r.cfg.Render.BrandName)
}

func (r *Renderer) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, r.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := r.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist renderer progress", logging.Error(err))
		return
	}
	*item = copy
}

func displayTitle(item *queue.Item) string {
	if title := strings.TrimSpace(item.Title); title != "" {
		return title
	}
	return "Daily Sermon"
}
