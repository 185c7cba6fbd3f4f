package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"pulpit/internal/config"
	"pulpit/internal/daemon"
	"pulpit/internal/ipc"
	"pulpit/internal/logging"
	"pulpit/internal/narrator"
	"pulpit/internal/notifications"
	"pulpit/internal/publisher"
	"pulpit/internal/queue"
	"pulpit/internal/renderer"
	"pulpit/internal/scriptwriter"
	"pulpit/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the pulpit daemon runtime loop. It blocks until the context is
// cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "pulpit.log")
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "pulpit.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	workflowManager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
	if err := RegisterStages(workflowManager, cfg, store, logger); err != nil {
		return err
	}

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	socketPath := filepath.Join(cfg.Paths.LogDir, "pulpit.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String("hint", "check configuration and queue database access"),
		)
	}

	<-signalCtx.Done()
	logger.Info("pulpit daemon shutting down")
	return nil
}

// RegisterStages builds the four pipeline handlers from config and wires
// them into the manager. Shared by the daemon runtime and the one-shot
// generate command.
func RegisterStages(mgr *workflow.Manager, cfg *config.Config, store *queue.Store, logger *slog.Logger) error {
	if mgr == nil || cfg == nil {
		return nil
	}

	scriptStage, err := scriptwriter.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("configure scriptwriter stage: %w", err)
	}
	narratorStage, err := narrator.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("configure narrator stage: %w", err)
	}
	publisherStage, err := publisher.New(cfg, store, logger)
	if err != nil {
		return fmt.Errorf("configure publisher stage: %w", err)
	}

	mgr.ConfigureStages(workflow.StageSet{
		Scriptwriter: scriptStage,
		Narrator:     narratorStage,
		Renderer:     renderer.New(cfg, store, logger),
		Publisher:    publisherStage,
	})
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	ffmpeg := cfg.FFmpegBinary()
	ffprobe := cfg.FFprobeBinary()
	logger.Info("dependency snapshot",
		logging.Bool("scriptwriter_key_present", strings.TrimSpace(cfg.Scriptwriter.APIKey) != ""),
		logging.Bool("elevenlabs_key_present", strings.TrimSpace(cfg.ElevenLabs.APIKey) != ""),
		logging.Bool("youtube_enabled", cfg.YouTube.Enabled),
		logging.Bool("ffmpeg_available", binaryAvailable(ffmpeg)),
		logging.String("ffmpeg_binary", ffmpeg),
		logging.Bool("ffprobe_available", binaryAvailable(ffprobe)),
		logging.String("ffprobe_binary", ffprobe),
		logging.String("render_mode", cfg.Render.Mode),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
