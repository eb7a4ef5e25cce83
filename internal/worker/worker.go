// Package worker runs the background generation loop: it polls for
// campaigns in the generating status and drives the batch generator over
// them one at a time.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/repository"
)

// Config holds worker configuration.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns default worker configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
	}
}

// Worker polls generating campaigns and processes their pending recipients.
// Campaigns are handled sequentially; the upstream model API is the
// bottleneck and parallel batches would only trip its rate limits.
type Worker struct {
	logger    *slog.Logger
	campaigns *repository.CampaignRepository
	gen       *generator.Service

	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new worker.
func New(campaigns *repository.CampaignRepository, gen *generator.Service, logger *slog.Logger, cfg Config) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		logger:       logger.With("component", "worker"),
		campaigns:    campaigns,
		gen:          gen,
		pollInterval: cfg.PollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start starts the worker.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	w.logger.Info("worker started", "poll_interval", w.pollInterval)
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")
	w.cancel()
	w.wg.Wait()
	w.logger.Info("worker stopped")
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.processCampaigns()
		}
	}
}

func (w *Worker) processCampaigns() {
	campaigns, err := w.campaigns.ListByStatus(models.CampaignGenerating)
	if err != nil {
		w.logger.Error("failed to list generating campaigns", "error", err)
		return
	}

	for _, c := range campaigns {
		select {
		case <-w.ctx.Done():
			return
		default:
			w.processCampaign(&c)
		}
	}
}

func (w *Worker) processCampaign(c *models.Campaign) {
	summary, err := w.gen.GenerateCampaign(w.ctx, c.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, generator.ErrNotConfigured) {
			// Leave the campaign in generating; it resumes once a key
			// is supplied and the process restarts.
			w.logger.Error("generation client not configured", "campaign_id", c.ID)
			return
		}
		w.logger.Error("campaign generation failed", "campaign_id", c.ID, "error", err)
		return
	}

	if summary.Total > 0 {
		w.logger.Info("generation batch finished",
			"campaign_id", c.ID, "total", summary.Total,
			"generated", summary.Generated, "failed", summary.Failed)
	}

	w.finishIfDrained(c)
}

// finishIfDrained flips a campaign to ready once no recipient is left in
// pending or generating. Failed recipients do not block the transition;
// they stay visible for retry.
func (w *Worker) finishIfDrained(c *models.Campaign) {
	stats, err := w.campaigns.Stats(c.ID)
	if err != nil {
		w.logger.Error("failed to get campaign stats", "campaign_id", c.ID, "error", err)
		return
	}

	if stats.Pending > 0 || stats.Generating > 0 {
		return
	}

	err = w.campaigns.UpdateStatus(c.ID, models.CampaignGenerating, models.CampaignReady)
	if err != nil {
		// Someone else moved the campaign between our read and write.
		if errors.Is(err, repository.ErrConflict) {
			return
		}
		w.logger.Error("failed to mark campaign ready", "campaign_id", c.ID, "error", err)
		return
	}

	w.logger.Info("campaign ready for review",
		"campaign_id", c.ID, "generated", stats.Generated, "failed", stats.Failed)
}
