package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"quadvoice/internal/api"
	"quadvoice/internal/daemon"
	"quadvoice/internal/logging"
	"quadvoice/internal/services/anthropic"
	"quadvoice/internal/store"
	"quadvoice/internal/workflow"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(ctx, cmd)
		},
	}
}

func runServe(ctx *commandContext, cmd *cobra.Command) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	st := store.Open(cfg, logger)
	defer st.Close()

	generator := anthropic.NewClient(anthropic.Config{
		APIKey:         cfg.Anthropic.APIKey,
		BaseURL:        cfg.Anthropic.BaseURL,
		Model:          cfg.Anthropic.Model,
		MaxTokens:      cfg.Anthropic.MaxTokens,
		TimeoutSeconds: cfg.Anthropic.TimeoutSeconds,
	})
	if !generator.Configured() {
		logger.Warn("anthropic api key not configured; drafts use the local template")
	}

	engine := workflow.NewEngine(generator, logger)
	svc := api.NewService(st, engine, cfg.Embedding.Dimensions, logger)

	d, err := daemon.New(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	<-signalCtx.Done()
	logger.Info("shutting down")
	return nil
}
