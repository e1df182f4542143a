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
	c.normalizeQueue()
	c.normalizeWorkflow()
	c.normalizeTools()
	if err := c.normalizeNarration(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizeCompose()
	c.normalizeStorage()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.backgrounds_dir", &c.Paths.BackgroundsDir, defaultBackgroundsDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.render_dir", &c.Paths.RenderDir, defaultRenderDir},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeQueue() {
	c.Queue.BaseURL = strings.TrimSpace(c.Queue.BaseURL)
	if c.Queue.BaseURL == "" {
		if value, ok := os.LookupEnv("BASE_URL"); ok {
			c.Queue.BaseURL = strings.TrimSpace(value)
		}
	}
	c.Queue.BaseURL = strings.TrimRight(c.Queue.BaseURL, "/")
	c.Queue.APIPrefix = strings.TrimSpace(c.Queue.APIPrefix)
	if c.Queue.APIPrefix != "" && !strings.HasPrefix(c.Queue.APIPrefix, "/") {
		c.Queue.APIPrefix = "/" + c.Queue.APIPrefix
	}
	c.Queue.APIPrefix = strings.TrimRight(c.Queue.APIPrefix, "/")
	if c.Queue.RequestTimeout <= 0 {
		c.Queue.RequestTimeout = defaultQueueTimeout
	}
	if strings.TrimSpace(c.Queue.FinishedVideoPrefix) == "" {
		c.Queue.FinishedVideoPrefix = defaultFinishedVideoPrefix
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollInterval <= 0 {
		c.Workflow.PollInterval = defaultPollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YTDLP = orDefault(c.Tools.YTDLP, defaultYTDLP)
	c.Tools.FFmpeg = orDefault(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = orDefault(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.UVX = orDefault(c.Tools.UVX, defaultUVX)
}

func (c *Config) normalizeNarration() error {
	c.Narration.DefaultVoice = orDefault(c.Narration.DefaultVoice, defaultVoice)
	c.Narration.CatalogURL = strings.TrimSpace(c.Narration.CatalogURL)
	if c.Narration.CatalogPath = strings.TrimSpace(c.Narration.CatalogPath); c.Narration.CatalogPath != "" {
		expanded, err := expandPath(c.Narration.CatalogPath)
		if err != nil {
			return fmt.Errorf("narration.catalog_path: %w", err)
		}
		c.Narration.CatalogPath = expanded
	}
	if c.Narration.CatalogURL == "" && c.Narration.CatalogPath == "" {
		c.Narration.CatalogURL = defaultCatalogURL
	}
	if c.Narration.RequestTimeout <= 0 {
		c.Narration.RequestTimeout = defaultNarrationTimeout
	}
	return nil
}

func (c *Config) normalizeCaptions() {
	c.Captions.Model = orDefault(c.Captions.Model, defaultCaptionModel)
	c.Captions.VADMethod = strings.ToLower(orDefault(c.Captions.VADMethod, defaultVADMethod))
}

func (c *Config) normalizeCompose() {
	c.Compose.VideoCodec = orDefault(c.Compose.VideoCodec, defaultVideoCodec)
	c.Compose.FontName = orDefault(c.Compose.FontName, defaultFontName)
}

func (c *Config) normalizeStorage() {
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.Region = orDefault(c.Storage.Region, defaultStorageRegion)
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	c.Storage.PublicURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicURL), "/")
	c.Storage.KeyPrefix = strings.Trim(strings.TrimSpace(c.Storage.KeyPrefix), "/")
	c.Storage.AccessKeyID = strings.TrimSpace(c.Storage.AccessKeyID)
	if c.Storage.AccessKeyID == "" {
		if value, ok := os.LookupEnv("AWS_ACCESS_KEY_ID"); ok {
			c.Storage.AccessKeyID = strings.TrimSpace(value)
		}
	}
	c.Storage.SecretAccessKey = strings.TrimSpace(c.Storage.SecretAccessKey)
	if c.Storage.SecretAccessKey == "" {
		if value, ok := os.LookupEnv("AWS_SECRET_ACCESS_KEY"); ok {
			c.Storage.SecretAccessKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
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
		if value, ok := os.LookupEnv("VIDGEN_LOG_LEVEL"); ok {
			c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
