package preflight

import (
	"context"
	"strings"

	"pulpit/internal/config"
)

// CheckElevenLabsFromConfig evaluates ElevenLabs status from config and connectivity.
func CheckElevenLabsFromConfig(cfg *config.Config) Result {
	const name = "ElevenLabs"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.ElevenLabs.APIKey) == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	if strings.TrimSpace(cfg.ElevenLabs.VoiceID) == "" {
		return Result{Name: name, Detail: "Missing voice ID"}
	}
	check := CheckElevenLabs(context.Background(), cfg)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckYouTubeFromConfig evaluates YouTube upload status from config and connectivity.
func CheckYouTubeFromConfig(cfg *config.Config) Result {
	const name = "YouTube"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.YouTube.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.YouTube.ClientID) == "" ||
		strings.TrimSpace(cfg.YouTube.ClientSecret) == "" ||
		strings.TrimSpace(cfg.YouTube.RefreshToken) == "" {
		return Result{Name: name, Detail: "Missing credentials"}
	}
	check := CheckYouTube(context.Background(), cfg)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// RenderModeDetail renders a display-friendly summary of the assembly mode.
func RenderModeDetail(cfg *config.Config) string {
	if cfg == nil {
		return "Unknown"
	}
	if cfg.LocalRender() {
		return "Local ffmpeg assembly"
	}
	return "Canva handoff (CSV + title card)"
}
