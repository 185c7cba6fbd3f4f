package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeScriptwriter(); err != nil {
		return err
	}
	if err := c.normalizeElevenLabs(); err != nil {
		return err
	}
	if err := c.normalizeRender(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeSchedule()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		c.Paths.AssetsDir = defaultAssetsDir
	}
	if c.Paths.AssetsDir, err = expandPath(c.Paths.AssetsDir); err != nil {
		return fmt.Errorf("paths.assets_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScriptwriter() error {
	c.Scriptwriter.APIKey = strings.TrimSpace(c.Scriptwriter.APIKey)
	if c.Scriptwriter.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.Scriptwriter.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Scriptwriter.APIKey = strings.TrimSpace(value)
		}
	}
	c.Scriptwriter.BaseURL = strings.TrimSpace(c.Scriptwriter.BaseURL)
	if c.Scriptwriter.BaseURL == "" {
		c.Scriptwriter.BaseURL = defaultScriptwriterBaseURL
	}
	c.Scriptwriter.Model = strings.TrimSpace(c.Scriptwriter.Model)
	if c.Scriptwriter.Model == "" {
		if value, ok := os.LookupEnv("OPENAI_MODEL"); ok && strings.TrimSpace(value) != "" {
			c.Scriptwriter.Model = strings.TrimSpace(value)
		} else {
			c.Scriptwriter.Model = defaultScriptwriterModel
		}
	}
	c.Scriptwriter.Title = strings.TrimSpace(c.Scriptwriter.Title)
	if c.Scriptwriter.Title == "" {
		c.Scriptwriter.Title = defaultScriptwriterTitle
	}
	if c.Scriptwriter.TimeoutSeconds <= 0 {
		c.Scriptwriter.TimeoutSeconds = defaultScriptwriterTimeoutSeconds
	}
	if strings.TrimSpace(c.Scriptwriter.PromptPath) != "" {
		var err error
		if c.Scriptwriter.PromptPath, err = expandPath(c.Scriptwriter.PromptPath); err != nil {
			return fmt.Errorf("scriptwriter.prompt_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeElevenLabs() error {
	c.ElevenLabs.APIKey = strings.TrimSpace(c.ElevenLabs.APIKey)
	if c.ElevenLabs.APIKey == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_API_KEY"); ok {
			c.ElevenLabs.APIKey = strings.TrimSpace(value)
		}
	}
	c.ElevenLabs.VoiceID = strings.TrimSpace(c.ElevenLabs.VoiceID)
	if c.ElevenLabs.VoiceID == "" {
		if value, ok := os.LookupEnv("ELEVENLABS_VOICE_ID"); ok {
			c.ElevenLabs.VoiceID = strings.TrimSpace(value)
		}
	}
	c.ElevenLabs.BaseURL = strings.TrimSpace(c.ElevenLabs.BaseURL)
	if c.ElevenLabs.BaseURL == "" {
		c.ElevenLabs.BaseURL = defaultElevenLabsBaseURL
	}
	c.ElevenLabs.ModelID = strings.TrimSpace(c.ElevenLabs.ModelID)
	if c.ElevenLabs.ModelID == "" {
		c.ElevenLabs.ModelID = defaultElevenLabsModelID
	}
	c.ElevenLabs.OutputFormat = strings.TrimSpace(c.ElevenLabs.OutputFormat)
	if c.ElevenLabs.OutputFormat == "" {
		c.ElevenLabs.OutputFormat = defaultElevenLabsOutputFormat
	}
	if c.ElevenLabs.Stability <= 0 {
		c.ElevenLabs.Stability = defaultElevenLabsStability
	}
	if c.ElevenLabs.SimilarityBoost <= 0 {
		c.ElevenLabs.SimilarityBoost = defaultElevenLabsSimilarity
	}
	if c.ElevenLabs.Style < 0 {
		c.ElevenLabs.Style = defaultElevenLabsStyle
	}
	if c.ElevenLabs.PadMilliseconds < 0 {
		c.ElevenLabs.PadMilliseconds = defaultElevenLabsPadMillis
	}
	if c.ElevenLabs.TimeoutSeconds <= 0 {
		c.ElevenLabs.TimeoutSeconds = defaultElevenLabsTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeRender() error {
	c.Render.Mode = strings.ToLower(strings.TrimSpace(c.Render.Mode))
	switch c.Render.Mode {
	case "", RenderModeLocal:
		c.Render.Mode = RenderModeLocal
	case RenderModeHandoff:
	default:
		return fmt.Errorf("render.mode: unsupported value %q", c.Render.Mode)
	}
	if c.Render.Width <= 0 {
		c.Render.Width = defaultRenderWidth
	}
	if c.Render.Height <= 0 {
		c.Render.Height = defaultRenderHeight
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultRenderFPS
	}
	if c.Render.Zoom <= 1 {
		c.Render.Zoom = defaultRenderZoom
	}
	if c.Render.IntroSeconds <= 0 {
		c.Render.IntroSeconds = defaultRenderIntroSeconds
	}
	if c.Render.MinSlideSeconds <= 0 {
		c.Render.MinSlideSeconds = defaultRenderMinSlide
	}
	if c.Render.MaxSlideSeconds <= 0 {
		c.Render.MaxSlideSeconds = defaultRenderMaxSlide
	}
	c.Render.VideoBitrate = strings.TrimSpace(c.Render.VideoBitrate)
	if c.Render.VideoBitrate == "" {
		c.Render.VideoBitrate = defaultRenderBitrate
	}
	c.Render.Preset = strings.TrimSpace(c.Render.Preset)
	if c.Render.Preset == "" {
		c.Render.Preset = defaultRenderPreset
	}
	c.Render.BrandName = strings.TrimSpace(c.Render.BrandName)
	if c.Render.BrandName == "" {
		c.Render.BrandName = defaultRenderBrandName
	}
	if strings.TrimSpace(c.Render.FontPath) != "" {
		var err error
		if c.Render.FontPath, err = expandPath(c.Render.FontPath); err != nil {
			return fmt.Errorf("render.font_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.ClientID = strings.TrimSpace(c.YouTube.ClientID)
	if c.YouTube.ClientID == "" {
		if value, ok := os.LookupEnv("YOUTUBE_CLIENT_ID"); ok {
			c.YouTube.ClientID = strings.TrimSpace(value)
		}
	}
	c.YouTube.ClientSecret = strings.TrimSpace(c.YouTube.ClientSecret)
	if c.YouTube.ClientSecret == "" {
		if value, ok := os.LookupEnv("YOUTUBE_CLIENT_SECRET"); ok {
			c.YouTube.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.YouTube.RefreshToken = strings.TrimSpace(c.YouTube.RefreshToken)
	if c.YouTube.RefreshToken == "" {
		if value, ok := os.LookupEnv("YOUTUBE_REFRESH_TOKEN"); ok {
			c.YouTube.RefreshToken = strings.TrimSpace(value)
		}
	}
	c.YouTube.CategoryID = strings.TrimSpace(c.YouTube.CategoryID)
	if c.YouTube.CategoryID == "" {
		c.YouTube.CategoryID = defaultYouTubeCategoryID
	}
	c.YouTube.Privacy = strings.ToLower(strings.TrimSpace(c.YouTube.Privacy))
	if c.YouTube.Privacy == "" {
		c.YouTube.Privacy = defaultYouTubePrivacy
	}
	if c.YouTube.ChunkSizeMiB <= 0 {
		c.YouTube.ChunkSizeMiB = defaultYouTubeChunkMiB
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Time = strings.TrimSpace(c.Schedule.Time)
	if c.Schedule.Time == "" {
		c.Schedule.Time = defaultScheduleTime
	}
	c.Schedule.Timezone = strings.TrimSpace(c.Schedule.Timezone)
	topics := make([]string, 0, len(c.Schedule.SeedTopics))
	for _, topic := range c.Schedule.SeedTopics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			topics = append(topics, trimmed)
		}
	}
	c.Schedule.SeedTopics = topics
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("PULPIT_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = 10
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
