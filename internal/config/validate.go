package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAnthropic(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.APIBind == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateAnthropic() error {
	// An empty api_key is valid: the draft stage falls back to its local template.
	if c.Anthropic.APIKey != "" && c.Anthropic.Model == "" {
		return errors.New("anthropic.model must be set when anthropic.api_key is configured")
	}
	if c.Anthropic.MaxTokens <= 0 {
		return errors.New("anthropic.max_tokens must be positive")
	}
	if c.Anthropic.TimeoutSeconds <= 0 {
		return errors.New("anthropic.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if c.Embedding.Dimensions <= 0 {
		return errors.New("embedding.dimensions must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
