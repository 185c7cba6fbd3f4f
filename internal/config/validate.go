package config

import (
	"errors"
	"fmt"
	"time"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScriptwriter(); err != nil {
		return err
	}
	if err := c.validateElevenLabs(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateSchedule(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScriptwriter() error {
	if c.Scriptwriter.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/pulpit/config.toml"
		}
		return fmt.Errorf("scriptwriter.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'pulpit config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateElevenLabs() error {
	if c.ElevenLabs.APIKey == "" {
		return errors.New("elevenlabs.api_key is required. Set ELEVENLABS_API_KEY env var or add it to the config file")
	}
	if c.ElevenLabs.VoiceID == "" {
		return errors.New("elevenlabs.voice_id is required. Set ELEVENLABS_VOICE_ID env var or add it to the config file")
	}
	if c.ElevenLabs.Stability < 0 || c.ElevenLabs.Stability > 1 {
		return errors.New("elevenlabs.stability must be between 0 and 1")
	}
	if c.ElevenLabs.SimilarityBoost < 0 || c.ElevenLabs.SimilarityBoost > 1 {
		return errors.New("elevenlabs.similarity_boost must be between 0 and 1")
	}
	if c.ElevenLabs.Style < 0 || c.ElevenLabs.Style > 1 {
		return errors.New("elevenlabs.style must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.MinSlideSeconds > c.Render.MaxSlideSeconds {
		return errors.New("render.min_slide_seconds must not exceed render.max_slide_seconds")
	}
	if c.Render.Zoom <= 1 {
		return errors.New("render.zoom must be greater than 1")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if !c.YouTube.Enabled {
		return nil
	}
	if c.YouTube.ClientID == "" {
		return errors.New("youtube.client_id must be set when youtube.enabled is true")
	}
	if c.YouTube.ClientSecret == "" {
		return errors.New("youtube.client_secret must be set when youtube.enabled is true")
	}
	if c.YouTube.RefreshToken == "" {
		return errors.New("youtube.refresh_token must be set when youtube.enabled is true")
	}
	switch c.YouTube.Privacy {
	case "public", "unlisted", "private":
	default:
		return fmt.Errorf("youtube.privacy: unsupported value %q", c.YouTube.Privacy)
	}
	return nil
}

func (c *Config) validateSchedule() error {
	if _, err := time.Parse("15:04", c.Schedule.Time); err != nil {
		return fmt.Errorf("schedule.time must be HH:MM, got %q", c.Schedule.Time)
	}
	if c.Schedule.Timezone != "" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return fmt.Errorf("schedule.timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
