package config

const (
	defaultConfigPath          = "~/.config/vidgen/config.toml"
	defaultBackgroundsDir      = "~/.local/share/vidgen/backgrounds"
	defaultOutputDir           = "~/.local/share/vidgen/output"
	defaultRenderDir           = "~/.local/share/vidgen/renders"
	defaultLogDir              = "~/.local/share/vidgen/logs"
	defaultStateDir            = "~/.local/share/vidgen/state"
	defaultAPIPrefix           = "/api"
	defaultQueueTimeout        = 30
	defaultFinishedVideoPrefix = "/renders/"
	defaultPollInterval        = 10
	defaultErrorRetryInterval  = 10
	defaultHeartbeatInterval   = 60
	defaultYTDLP               = "yt-dlp"
	defaultFFmpeg              = "ffmpeg"
	defaultFFprobe             = "ffprobe"
	defaultUVX                 = "uvx"
	defaultVoice               = "en-US-ChristopherNeural"
	defaultCatalogURL          = "https://speech.platform.bing.com/consumer/speech/synthesize/readaloud/voices/list?trustedclienttoken=6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	defaultNarrationTimeout    = 30
	defaultCaptionModel        = "small"
	defaultVADMethod           = "silero"
	defaultVideoCodec          = "hevc_nvenc"
	defaultFontName            = "Lexend Bold"
	defaultStorageRegion       = "auto"
	defaultStorageKeyPrefix    = "renders"
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultLogRetentionDays    = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			BackgroundsDir: defaultBackgroundsDir,
			OutputDir:      defaultOutputDir,
			RenderDir:      defaultRenderDir,
			LogDir:         defaultLogDir,
			StateDir:       defaultStateDir,
		},
		Queue: Queue{
			APIPrefix:           defaultAPIPrefix,
			RequestTimeout:      defaultQueueTimeout,
			FinishedVideoPrefix: defaultFinishedVideoPrefix,
		},
		Workflow: Workflow{
			PollInterval:       defaultPollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
		},
		Tools: Tools{
			YTDLP:   defaultYTDLP,
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			UVX:     defaultUVX,
		},
		Narration: Narration{
			DefaultVoice:   defaultVoice,
			CatalogURL:     defaultCatalogURL,
			RequestTimeout: defaultNarrationTimeout,
		},
		Captions: Captions{
			Model:     defaultCaptionModel,
			VADMethod: defaultVADMethod,
		},
		Compose: Compose{
			VideoCodec: defaultVideoCodec,
			FontName:   defaultFontName,
		},
		Storage: Storage{
			Region:    defaultStorageRegion,
			KeyPrefix: defaultStorageKeyPrefix,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobCompleted:   true,
			JobFailed:      true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			DailyFile:     true,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
