package workflow

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"pulpit/internal/config"
	"pulpit/internal/logging"
	"pulpit/internal/queue"
	"pulpit/internal/textutil"
)

// ItemLogger manages dedicated log files for per-item processing.
type ItemLogger struct {
	baseDir string
	cfg     *config.Config
}

// NewItemLogger creates a new item logger rooted under the configured log directory.
func NewItemLogger(cfg *config.Config) *ItemLogger {
	dir := ""
	if cfg != nil && cfg.Paths.LogDir != "" {
		dir = filepath.Join(cfg.Paths.LogDir, "items")
	}
	return &ItemLogger{baseDir: dir, cfg: cfg}
}

// PathFor returns the log file path for an item. The name is deterministic so
// repeated stage executions append to the same file.
func (l *ItemLogger) PathFor(item *queue.Item) (string, error) {
	if item == nil {
		return "", fmt.Errorf("queue item is nil")
	}
	if strings.TrimSpace(l.baseDir) == "" {
		return "", fmt.Errorf("item log directory not configured")
	}
	return filepath.Join(l.baseDir, l.filename(item)), nil
}

// HandlerFor builds a slog.Handler appending to the item's log file.
func (l *ItemLogger) HandlerFor(item *queue.Item) (slog.Handler, error) {
	path, err := l.PathFor(item)
	if err != nil {
		return nil, err
	}

	level := "info"
	format := "json"
	if l.cfg != nil {
		if strings.TrimSpace(l.cfg.Logging.Level) != "" {
			level = l.cfg.Logging.Level
		}
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		return nil, err
	}
	return logger.Handler(), nil
}

func (l *ItemLogger) filename(item *queue.Item) string {
	runDate := strings.TrimSpace(item.RunDate)
	if runDate == "" {
		return fmt.Sprintf("item-%d.log", item.ID)
	}
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return fmt.Sprintf("%s-item-%d.log", runDate, item.ID)
	}
	return fmt.Sprintf("%s-%d-%s.log", runDate, item.ID, textutil.SanitizeToken(title))
}
