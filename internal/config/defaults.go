package config

// Render mode values accepted by [render].mode.
const (
	RenderModeLocal   = "local"
	RenderModeHandoff = "handoff"
)

const (
	defaultOutputDir  = "~/.local/share/pulpit/output"
	defaultLibraryDir = "~/sermons"
	defaultLogDir     = "~/.local/share/pulpit/logs"
	defaultReviewDir  = "~/sermons/review"
	defaultAssetsDir  = "~/.local/share/pulpit/assets"

	defaultScriptwriterBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultScriptwriterModel          = "gpt-4o-mini"
	defaultScriptwriterTitle          = "Pulpit Scriptwriter"
	defaultScriptwriterTimeoutSeconds = 120

	defaultElevenLabsBaseURL        = "https://api.elevenlabs.io"
	defaultElevenLabsModelID        = "eleven_multilingual_v2"
	defaultElevenLabsOutputFormat   = "mp3_44100_128"
	defaultElevenLabsStability      = 0.30
	defaultElevenLabsSimilarity     = 0.75
	defaultElevenLabsStyle          = 0.75
	defaultElevenLabsPadMillis      = 500
	defaultElevenLabsTimeoutSeconds = 300

	defaultRenderWidth        = 1920
	defaultRenderHeight       = 1080
	defaultRenderFPS          = 30
	defaultRenderZoom         = 1.25
	defaultRenderIntroSeconds = 4.0
	defaultRenderMinSlide     = 4.0
	defaultRenderMaxSlide     = 12.0
	defaultRenderBitrate      = "4500k"
	defaultRenderPreset       = "veryfast"
	defaultRenderBrandName    = "Daily Sermon"

	defaultYouTubeCategoryID = "22"
	defaultYouTubePrivacy    = "public"
	defaultYouTubeChunkMiB   = 8

	defaultScheduleTime = "06:00"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"

	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			ReviewDir:  defaultReviewDir,
			AssetsDir:  defaultAssetsDir,
		},
		Scriptwriter: Scriptwriter{
			BaseURL:        defaultScriptwriterBaseURL,
			Model:          defaultScriptwriterModel,
			Title:          defaultScriptwriterTitle,
			TimeoutSeconds: defaultScriptwriterTimeoutSeconds,
		},
		ElevenLabs: ElevenLabs{
			BaseURL:         defaultElevenLabsBaseURL,
			ModelID:         defaultElevenLabsModelID,
			OutputFormat:    defaultElevenLabsOutputFormat,
			Stability:       defaultElevenLabsStability,
			SimilarityBoost: defaultElevenLabsSimilarity,
			Style:           defaultElevenLabsStyle,
			SpeakerBoost:    true,
			PadMilliseconds: defaultElevenLabsPadMillis,
			TimeoutSeconds:  defaultElevenLabsTimeoutSeconds,
		},
		Render: Render{
			Mode:            RenderModeLocal,
			Width:           defaultRenderWidth,
			Height:          defaultRenderHeight,
			FPS:             defaultRenderFPS,
			Zoom:            defaultRenderZoom,
			IntroSeconds:    defaultRenderIntroSeconds,
			MinSlideSeconds: defaultRenderMinSlide,
			MaxSlideSeconds: defaultRenderMaxSlide,
			VideoBitrate:    defaultRenderBitrate,
			Preset:          defaultRenderPreset,
			BrandName:       defaultRenderBrandName,
		},
		YouTube: YouTube{
			CategoryID:   defaultYouTubeCategoryID,
			Privacy:      defaultYouTubePrivacy,
			ChunkSizeMiB: defaultYouTubeChunkMiB,
		},
		Schedule: Schedule{
			Time: defaultScheduleTime,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Script:         true,
			Narration:      true,
			Render:         true,
			Publish:        true,
			Queue:          true,
			Review:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  5,
			ErrorRetryInterval: 10,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
