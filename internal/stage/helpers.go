package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pulpit/internal/queue"
	"pulpit/internal/services"
)

// RequireFile verifies that an input artifact produced by an earlier stage
// exists on disk. On failure it returns a services.ErrValidation suitable for
// stage Execute methods, which routes the item to review rather than a retry
// loop.
func RequireFile(stageName, what, path string) error {
	if path == "" {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+what,
			fmt.Sprintf("No %s recorded for this item; rerun the earlier stage", what), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+what,
			fmt.Sprintf("%s %q is missing or unreadable; rerun the earlier stage", what, path), err)
	}
	if info.IsDir() {
		return services.Wrap(
			services.ErrValidation, stageName, "check "+what,
			fmt.Sprintf("%s %q is a directory", what, path), nil)
	}
	return nil
}

// RunDirectory returns the per-run artifact directory under outputDir, keyed
// by run date with the item ID as a fallback for ad-hoc items.
func RunDirectory(outputDir string, item *queue.Item) string {
	key := strings.TrimSpace(item.RunDate)
	if key == "" {
		key = fmt.Sprintf("item-%d", item.ID)
	}
	return filepath.Join(outputDir, key)
}
