package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pulpit/internal/config"
)

func validConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Scriptwriter.APIKey = "sk-test"
	cfg.ElevenLabs.APIKey = "el-test"
	cfg.ElevenLabs.VoiceID = "voice-test"
	return cfg
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ELEVENLABS_API_KEY", "el-env")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice-env")

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Scriptwriter.APIKey != "sk-env" {
		t.Fatalf("expected env fallback for scriptwriter key, got %q", cfg.Scriptwriter.APIKey)
	}
	if cfg.Render.Mode != config.RenderModeLocal {
		t.Fatalf("expected local render mode default, got %q", cfg.Render.Mode)
	}
	if cfg.YouTube.CategoryID != "22" {
		t.Fatalf("unexpected category default: %q", cfg.YouTube.CategoryID)
	}
}

func TestLoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
review_dir = "` + filepath.Join(dir, "review") + `"

[scriptwriter]
api_key = "sk-file"

[elevenlabs]
api_key = "el-file"
voice_id = "voice-file"

[render]
mode = "handoff"
zoom = 1.4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Render.Mode != config.RenderModeHandoff {
		t.Fatalf("render mode = %q, want handoff", cfg.Render.Mode)
	}
	if cfg.LocalRender() {
		t.Fatal("LocalRender should be false in handoff mode")
	}
	if cfg.Render.Zoom != 1.4 {
		t.Fatalf("zoom = %v, want 1.4", cfg.Render.Zoom)
	}
}

func TestValidateRejectsMissingVoice(t *testing.T) {
	cfg := validConfig(t)
	cfg.ElevenLabs.VoiceID = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "voice_id") {
		t.Fatalf("expected voice_id error, got %v", err)
	}
}

func TestValidateRejectsBadScheduleTime(t *testing.T) {
	cfg := validConfig(t)
	cfg.Schedule.Time = "25:99"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected schedule.time error")
	}
}

func TestValidateYouTubeRequiresCredentials(t *testing.T) {
	cfg := validConfig(t)
	cfg.YouTube.Enabled = true
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "youtube.client_id") {
		t.Fatalf("expected youtube.client_id error, got %v", err)
	}
}

func TestValidateHeartbeatOrdering(t *testing.T) {
	cfg := validConfig(t)
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected heartbeat timeout validation error")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ELEVENLABS_API_KEY", "el-env")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice-env")

	path := filepath.Join(t.TempDir(), "pulpit", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	} else if !exists {
		t.Fatal("expected sample config to exist")
	}
}
