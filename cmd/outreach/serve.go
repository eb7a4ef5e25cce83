package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bioedge/outreach/internal/anthropic"
	"github.com/bioedge/outreach/internal/api"
	"github.com/bioedge/outreach/internal/db"
	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/repository"
	"github.com/bioedge/outreach/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the outreach API server and generation worker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	campaigns := repository.NewCampaignRepository(database.DB)
	recipients := repository.NewRecipientRepository(database.DB)
	senders := repository.NewSenderProfileRepository(database.DB)
	contacts := repository.NewContactRepository(database.DB)
	m := metrics.New()

	// Without a key the server still runs: browsing, editing, and review
	// work, only generation reports its configuration error.
	var llm generator.TextGenerator
	client, err := anthropic.NewClient(anthropic.Config{
		APIKey:      cfg.Anthropic.APIKey,
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		Timeout:     cfg.Anthropic.Timeout,
	})
	switch {
	case err == nil:
		llm = client
		logger.Info("generation client ready", "model", client.Model())
	case errors.Is(err, anthropic.ErrNotConfigured):
		logger.Warn("ANTHROPIC_API_KEY not set; generation is disabled")
	default:
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	gen := generator.New(llm, campaigns, recipients, senders, m, logger, cfg.Anthropic.CallDelay)
	gen.SetEvents(promptEvents(cfg))

	var w *worker.Worker
	if cfg.Worker.Enabled {
		w = worker.New(campaigns, gen, logger, worker.Config{PollInterval: cfg.Worker.PollInterval})
		w.Start()
		defer w.Stop()
	}

	server := api.NewServer(&cfg.Server, campaigns, recipients, senders, contacts, gen, m, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down...", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
