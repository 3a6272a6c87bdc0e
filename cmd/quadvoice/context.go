package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"quadvoice/internal/api"
	"quadvoice/internal/config"
	"quadvoice/internal/logging"
	"quadvoice/internal/services/anthropic"
	"quadvoice/internal/store"
	"quadvoice/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openService wires a store, engine, and api service for one command
// invocation. The caller must Close the returned store.
func (c *commandContext) openService() (*api.Service, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.NewNop()
	st := store.Open(cfg, logger)
	generator := anthropic.NewClient(anthropic.Config{
		APIKey:         cfg.Anthropic.APIKey,
		BaseURL:        cfg.Anthropic.BaseURL,
		Model:          cfg.Anthropic.Model,
		MaxTokens:      cfg.Anthropic.MaxTokens,
		TimeoutSeconds: cfg.Anthropic.TimeoutSeconds,
	})
	engine := workflow.NewEngine(generator, logger)
	return api.NewService(st, engine, cfg.Embedding.Dimensions, logger), st, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
