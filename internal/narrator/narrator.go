package narrator

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
	"pulpit/internal/render"
	"pulpit/internal/services"
	"pulpit/internal/services/elevenlabs"
	"pulpit/internal/services/scriptgen"
	"pulpit/internal/stage"
)

// Synthesizer describes the text-to-speech service.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outputPath string) (*elevenlabs.Result, error)
	HealthCheck(ctx context.Context) error
}

// padAudio is swappable in tests so synthesis tests run without ffmpeg.
var padAudio = render.PadAudio

// Narrator converts the sermon script into narration audio.
type Narrator struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	tts      Synthesizer
	notifier notifications.Service
}

// New constructs the narrator stage handler using default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Narrator, error) {
	client, err := elevenlabs.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("build synthesis client: %w", err)
	}
	return NewWithDependencies(cfg, store, logger, client, notifications.NewService(cfg)), nil
}

// NewWithDependencies allows injecting collaborators (used in tests).
func NewWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, tts Synthesizer, notifier notifications.Service) *Narrator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "narrator"))
	}
	return &Narrator{store: store, cfg: cfg, logger: stageLogger, tts: tts, notifier: notifier}
}

// SetLogger swaps the stage logger for per-item log routing.
func (n *Narrator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		n.logger = logger.With(logging.String("component", "narrator"))
	}
}

func (n *Narrator) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, n.logger)
	if item.ProgressStage == "" {
		item.ProgressStage = "Synthesizing"
	}
	item.ProgressMessage = "Preparing narration"
	item.ProgressPercent = 0
	item.ErrorMessage = ""
	logger.Info(
		"starting narration preparation",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String("script_file", strings.TrimSpace(item.ScriptFile)),
	)
	return stage.RequireFile("synthesizing", "script file", item.ScriptFile)
}

func (n *Narrator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, n.logger)

	script, err := scriptgen.LoadScript(item.ScriptFile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "synthesizing", "load script",
			"Script document is unreadable; rerun the scripting stage", err)
	}

	runDir := stage.RunDirectory(n.cfg.Paths.OutputDir, item)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "synthesizing", "create run directory",
			"Failed to create output directory", err)
	}

	n.updateProgress(ctx, item, "Synthesizing narration", 10)
	rawPath := filepath.Join(runDir, "narration_raw.mp3")
	result, err := n.tts.Synthesize(ctx, script.FullText(), rawPath)
	if err != nil {
		return services.Wrap(services.ErrTransient, "synthesizing", "synthesize narration",
			"Text-to-speech synthesis failed", err)
	}
	logger.Info(
		"synthesis completed",
		logging.String("output_format", result.OutputFormat),
		logging.Int64("bytes", result.SizeBytes),
	)

	n.updateProgress(ctx, item, "Padding narration audio", 80)
	audioPath := filepath.Join(runDir, "narration.mp3")
	if err := padAudio(ctx, n.cfg.FFmpegBinary(), rawPath, audioPath, n.cfg.ElevenLabs.PadMilliseconds); err != nil {
		return services.Wrap(services.ErrExternalTool, "synthesizing", "pad narration",
			"Failed to pad narration audio", err)
	}
	if err := os.Remove(rawPath); err != nil {
		logger.Warn("failed to remove raw synthesis audio", logging.Error(err))
	}
	item.AudioFile = audioPath

	item.ProgressPercent = 100
	item.ProgressMessage = fmt.Sprintf("Narration ready: %s", filepath.Base(audioPath))
	logger.Info("narration completed", logging.String("audio_file", audioPath))

	if n.notifier != nil {
		if err := n.notifier.Publish(ctx, notifications.EventNarrationCompleted, notifications.Payload{
			"title": strings.TrimSpace(item.Title),
		}); err != nil {
			logger.Warn("narration notification failed", logging.Error(err))
		}
	}
	return nil
}

// HealthCheck verifies synthesis credentials are configured.
func (n *Narrator) HealthCheck(ctx context.Context) stage.Health {
	const name = "narrator"
	if n.cfg == nil {
		return stage.Unhealthy(name, "configuration unavailable")
	}
	if strings.TrimSpace(n.cfg.ElevenLabs.APIKey) == "" {
		return stage.Unhealthy(name, "elevenlabs api key not configured")
	}
	if strings.TrimSpace(n.cfg.ElevenLabs.VoiceID) == "" {
		return stage.Unhealthy(name, "elevenlabs voice id not configured")
	}
	if n.tts == nil {
		return stage.Unhealthy(name, "synthesis client unavailable")
	}
	return stage.Healthy(name)
}

func (n *Narrator) updateProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	logger := logging.WithContext(ctx, n.logger)
	copy := *item
	copy.ProgressMessage = message
	copy.ProgressPercent = percent
	if err := n.store.Update(ctx, &copy); err != nil {
		logger.Warn("failed to persist narrator progress", logging.Error(err))
		return
	}
	*item = copy
}
