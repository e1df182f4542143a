package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vidgen/internal/config"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce  sync.Once
	config      *config.Config
	configPath  string
	configFound bool
	configErr   error
	invalidErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, logLevelFlag: logLevelFlag}
}

// ensureConfig loads the configuration once. A file that parses but fails
// validation is kept so commands that do not talk to the queue still work;
// validConfig reports the validation error.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		c.configPath = resolved
		c.configFound = exists
		if err != nil && cfg == nil {
			c.configErr = err
			return
		}
		c.invalidErr = err
		c.config = cfg
	})
	return c.config, c.configErr
}

// validConfig returns the configuration only when it passed validation.
func (c *commandContext) validConfig() (*config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if c.invalidErr != nil {
		return nil, c.invalidErr
	}
	return cfg, nil
}

func (c *commandContext) logLevel() string {
	if c.logLevelFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.logLevelFlag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
