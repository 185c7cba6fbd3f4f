package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pulpit/internal/config"
	"pulpit/internal/fileutil"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/services"
	"pulpit/internal/services/youtube"
	"pulpit/internal/stage"
	"pulpit/internal/textutil"
)

// Uploader describes the video upload service.
type Uploader interface {
	Upload(ctx context.Context, path string, video youtube.Video) (*youtube.Result, error)
	HealthCheck(ctx context.Context) error
}

// Publisher uploads the finished video to YouTube and files the local copy
// into the library. When uploads are disabled the library move alone
// completes the item.
type Publisher struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	uploader Uploader
	notifier notifications.Service
}

// New constructs the publisher stage handler using default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Publisher, error) {
	var uploader Uploader
	if cfg.YouTube.Enabled {
		client, err := youtube.NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("build upload client: %w", err)
		}
		uploader = client
	}
	return NewWithDependencies(cfg, store, logger, uploader, notifications.NewService(cfg)), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, uploader Uploader, notifier notifications.Service) *Publisher {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "publisher"))
	}
	return &Publisher{store: store, cfg: cfg, logger: stageLogger, uploader: uploader, notifier: notifier}
}

// SetLogger swaps the stage logger for per-item log routing.
func (p *Publisher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger.With(logging.String("component", "publisher"))
	}
}

func (p *Publisher) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Publishing"
	}
	item.ProgressMessage = "Preparing publication"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting publication preparation",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.Bool("upload_enabled", p.cfg.YouTube.Enabled),
	)
	return stage.RequireFile("publishing", "video file", item.VideoFile)
}

func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, p.logger)
	meta := queue.MetadataFromJSON(item.MetadataJSON, item.Title)

	// A retry after the upload succeeded but the library move failed must
	// not publish the video twice; the persisted video ID marks it done.
	if p.cfg.YouTube.Enabled && item.VideoID == "" {
		if p.uploader == nil {
			return services.Wrap(services.ErrConfiguration, "publishing", "resolve uploader",
				"YouTube upload enabled but no upload client available; check youtube credentials", nil)
		}
		p.updateProgress(ctx, item, "Uploading to YouTube", 10)
		result, err := p.uploader.Upload(ctx, item.VideoFile, youtube.Video{
			Title:       meta.Title(),
			Description: meta.Description,
			Tags:        meta.Tags,
		})
		if err != nil {
			return services.Wrap(services.ErrTransient, "publishing", "upload video",
				"YouTube upload failed", err)
		}
		item.VideoID = result.VideoID
		logger.Info("upload completed",
			logging.String("video_id", result.VideoID),
			logging.String("video_url", result.VideoURL),
		)
	}

	p.updateProgress(ctx, item, "Filing video into library", 80)
	finalPath, err := p.moveToLibrary(item)
	if err != nil {
		return err
	}
	item.FinalFile = finalPath

	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Published: %s", filepath.Base(finalPath))
	logger.Info("publication completed", logging.String("final_file", finalPath))

	if p.notifier != nil {
		payload := notifications.Payload{"title": meta.Title()}
		if item.VideoID != "" {
			payload["videoId"] = item.VideoID
		}
		if err := p.notifier.Publish(ctx, notifications.EventPublishCompleted, payload); err != nil {
			logger.Warn("publish notification failed", logging.Error(err))
		}
	}
	return nil
}

// moveToLibrary renames the finished video into the library directory using
// a date-and-title filename. Falls back to leaving the file in place when no
// library directory is configured.
func (p *Publisher) moveToLibrary(item *queue.Item) (string, error) {
	libraryDir := strings.TrimSpace(p.cfg.Paths.LibraryDir)
	if libraryDir == "" {
		return item.VideoFile, nil
	}
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "publishing", "ensure library dir",
			"Failed to create library directory", err)
	}

	name := textutil.SanitizeToken(item.Title)
	if strings.TrimSpace(item.RunDate) != "" {
		name = item.RunDate + "-" + name
	}
	target := filepath.Join(libraryDir, name+filepath.Ext(item.VideoFile))
	if err := fileutil.MoveFile(item.VideoFile, target); err != nil {
		return "", services.Wrap(services.ErrTransient, "publishing", "move to library",
			"Failed to move video into library", err)
	}
	return target, nil
}

// HealthCheck verifies publication prerequisites for the configured mode.
func (p *Publisher) HealthCheck(ctx context.Context) stage.Health {
	const name = "publisher"
	if p.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if p.cfg.YouTube.Enabled {
		if p.uploader == nil {
			return stage.Unhealthy(name, "upload client unavailable")
		}
		if strings.TrimSpace(p.cfg.YouTube.RefreshToken) == "" {
			return stage.Unhealthy(name, "youtube refresh token not configured")
		}
		return stage.Healthy(name)
	}
	if strings.TrimSpace(p.cfg.Paths.LibraryDir) == "" {
		return stage.Unhealthy(name, "library directory not configured")
	}
	return stage.Healthy(name)
}

func (p *Publisher) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, p.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := p.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist publisher progress", logging.Error(err))
		return
	}
	*item = copy
}
