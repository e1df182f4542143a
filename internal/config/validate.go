package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingBaseURL is returned when no queue endpoint is configured.
var ErrMissingBaseURL = errors.New("queue.base_url is required")

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("%w. Set BASE_URL env var or edit %s (create with 'vidgen config init')", ErrMissingBaseURL, defaultPath)
	}
	parsed, err := url.Parse(c.Queue.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("queue.base_url %q must be an absolute http(s) URL", c.Queue.BaseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("queue.base_url %q must use http or https", c.Queue.BaseURL)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"queue.request_timeout":         c.Queue.RequestTimeout,
		"narration.request_timeout":     c.Narration.RequestTimeout,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.poll_interval":        c.Workflow.PollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.heartbeat_interval":   c.Workflow.HeartbeatInterval,
	})
}

func (c *Config) validateCaptions() error {
	switch c.Captions.VADMethod {
	case "silero", "pyannote":
		return nil
	default:
		return fmt.Errorf("captions.vad_method %q must be silero or pyannote", c.Captions.VADMethod)
	}
}

func (c *Config) validateStorage() error {
	if !c.Storage.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket must be set when storage.enabled is true")
	}
	if c.Storage.AccessKeyID == "" || c.Storage.SecretAccessKey == "" {
		return errors.New("storage.access_key_id and storage.secret_access_key must be set when storage.enabled is true (or export AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY)")
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
