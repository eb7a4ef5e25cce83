package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bioedge/outreach/internal/anthropic"
	"github.com/bioedge/outreach/internal/db"
	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/repository"
)

var generateCmd = &cobra.Command{
	Use:   "generate <campaign-id>",
	Short: "Generate drafts for every pending recipient of a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	campaignID := args[0]

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
		return err
	}

	client, err := anthropic.NewClient(anthropic.Config{
		APIKey:      cfg.Anthropic.APIKey,
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		Temperature: cfg.Anthropic.Temperature,
		Timeout:     cfg.Anthropic.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	campaigns := repository.NewCampaignRepository(database.DB)
	recipients := repository.NewRecipientRepository(database.DB)
	senders := repository.NewSenderProfileRepository(database.DB)
	gen := generator.New(client, campaigns, recipients, senders, metrics.New(), logger, cfg.Anthropic.CallDelay)
	gen.SetEvents(promptEvents(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := campaigns.GetByID(campaignID)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("campaign %s not found", campaignID)
	}

	if c.Status == models.CampaignDraft {
		if err := campaigns.UpdateStatus(c.ID, models.CampaignDraft, models.CampaignGenerating); err != nil {
			return err
		}
	} else if c.Status != models.CampaignGenerating {
		return fmt.Errorf("campaign is %s; only draft or generating campaigns can be generated", c.Status)
	}

	summary, err := gen.GenerateCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Printf("Interrupted after %d of %d recipients\n", summary.Generated+summary.Failed, summary.Total)
			return nil
		}
		return err
	}

	stats, err := campaigns.Stats(campaignID)
	if err != nil {
		return err
	}
	if stats.Pending == 0 && stats.Generating == 0 {
		if err := campaigns.UpdateStatus(campaignID, models.CampaignGenerating, models.CampaignReady); err != nil && !errors.Is(err, repository.ErrConflict) {
			return err
		}
	}

	fmt.Printf("Generated %d of %d recipients (%d failed)\n", summary.Generated, summary.Total, summary.Failed)
	return nil
}
