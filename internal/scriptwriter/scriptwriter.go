package scriptwriter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/notifications"
	"pulpit/internal/queue"
	"pulpit/internal/services"
	"pulpit/internal/services/scriptgen"
	"pulpit/internal/stage"
	"pulpit/internal/textutil"
)

// Generator describes the script generation service.
type Generator interface {
	GenerateScript(ctx context.Context, req scriptgen.Request) (*scriptgen.Script, error)
	HealthCheck(ctx context.Context) error
}

// Scriptwriter produces the day's sermon script and stores it as the first
// pipeline artifact.
type Scriptwriter struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   Generator
	notifier notifications.Service
}

// New constructs the scriptwriter stage handler using default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Scriptwriter, error) {
	if strings.TrimSpace(cfg.Scriptwriter.APIKey) == "" {
		return nil, fmt.Errorf("build script generator: api key is required")
	}
	client := scriptgen.NewClient(scriptgen.Config{
		APIKey:         cfg.Scriptwriter.APIKey,
		BaseURL:        cfg.Scriptwriter.BaseURL,
		Model:          cfg.Scriptwriter.Model,
		PromptPath:     cfg.Scriptwriter.PromptPath,
		Referer:        cfg.Scriptwriter.Referer,
		Title:          cfg.Scriptwriter.Title,
		TimeoutSeconds: cfg.Scriptwriter.TimeoutSeconds,
	})
	return NewWithDependencies(cfg, store, logger, client, notifications.NewService(cfg)), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client Generator, notifier notifications.Service) *Scriptwriter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "scriptwriter"))
	}
	return &Scriptwriter{store: store, cfg: cfg, logger: stageLogger, client: client, notifier: notifier}
}

// SetLogger swaps the stage logger for per-item log routing.
func (s *Scriptwriter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger.With(logging.String("component", "scriptwriter"))
	}
}

func (s *Scriptwriter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Scripting"
	}
	item.ProgressMessage = "Generating sermon script"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting script generation",
		logging.String(logging.FieldRunDate, strings.TrimSpace(item.RunDate)),
		logging.String("seed_topic", strings.TrimSpace(item.SeedTopic)),
	)
	return nil
}

func (s *Scriptwriter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	script, err := s.client.GenerateScript(ctx, scriptgen.Request{
		RunDate:   item.RunDate,
		SeedTopic: item.SeedTopic,
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "scripting", "generate script",
			"Script generation failed", err)
	}

	s.updateProgress(ctx, item, "Saving script", 80)

	item.Title = script.Title
	runDir := stage.RunDirectory(s.cfg.Paths.OutputDir, item)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "scripting", "create run directory",
			"Failed to create output directory", err)
	}
	scriptPath := filepath.Join(runDir, "script.json")
	if err := script.Save(scriptPath); err != nil {
		return services.Wrap(services.ErrTransient, "scripting", "save script",
			"Failed to write script document", err)
	}
	item.ScriptFile = scriptPath

	meta := queue.Metadata{
		TitleValue:  script.Title,
		Description: publishDescription(script),
		Tags:        script.Tags,
	}
	item.MetadataJSON = meta.ToJSON()

	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Script ready: %s", script.Title)
	logger.Info(
		"script generation completed",
		logging.String("title", script.Title),
		logging.Int("sections", len(script.Sections)),
		logging.Int("words", script.WordCount()),
		logging.String("script_file", scriptPath),
	)

	if s.notifier != nil {
		if err := s.notifier.Publish(ctx, notifications.EventScriptCompleted, notifications.Payload{
			"title": script.Title,
			"words": script.WordCount(),
		}); err != nil {
			logger.Warn("script notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies the generation service is configured.
func (s *Scriptwriter) HealthCheck(ctx context.Context) stage.Health {
	const name = "scriptwriter"
	if s.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(s.cfg.Scriptwriter.APIKey) == "" {
		return stage.Unhealthy(name, "scriptwriter api key not configured")
	}
	if s.client == nil {
		return stage.Unhealthy(name, "generation client unavailable")
	}
	return stage.Healthy(name)
}

func (s *Scriptwriter) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, s.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := s.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist scriptwriter progress", logging.Error(err))
		return
	}
	*item = copy
}

// publishDescription builds the YouTube description: the script's own
// description when present, otherwise the opening of the sermon body.
func publishDescription(script *scriptgen.Script) string {
	if desc := strings.TrimSpace(script.Description); desc != "" {
		return desc
	}
	return textutil.TruncateWords(script.FullText(), 120)
}
