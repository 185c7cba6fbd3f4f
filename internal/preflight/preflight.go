package preflight

import (
	"context"

	"pulpit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Output directory (always checked)
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))

	// Library directory (when configured)
	if cfg.Paths.LibraryDir != "" {
		results = append(results, CheckDirectoryAccess("Library directory", cfg.Paths.LibraryDir))
	}

	// Slide assets (local rendering reads images from here)
	if cfg.LocalRender() && cfg.Paths.AssetsDir != "" {
		results = append(results, CheckDirectoryAccess("Assets directory", cfg.Paths.AssetsDir))
	}

	// Script generation API
	results = append(results, CheckScriptAPI(ctx, cfg.Scriptwriter))

	// ElevenLabs synthesis
	results = append(results, CheckElevenLabs(ctx, cfg))

	// YouTube upload
	if cfg.YouTube.Enabled {
		results = append(results, CheckYouTube(ctx, cfg))
	}

	return results
}
