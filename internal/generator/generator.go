// Package generator orchestrates one generation pass: persona resolution,
// prompt composition, the model call, parsing, and the recipient status
// updates around it. Recipients are processed strictly sequentially with a
// fixed delay between model calls to keep upstream rate limits predictable.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bioedge/outreach/internal/metrics"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/parse"
	"github.com/bioedge/outreach/internal/persona"
	"github.com/bioedge/outreach/internal/prompt"
	"github.com/bioedge/outreach/internal/repository"
)

// TextGenerator is the model call boundary. anthropic.Client implements it.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// DefaultCallDelay is the pause between consecutive model calls.
const DefaultCallDelay = 1500 * time.Millisecond

// ErrNotConfigured means no generation client is available; the batch is not
// started at all.
var ErrNotConfigured = errors.New("generation client is not configured")

// Service runs generation for campaigns and single recipients.
type Service struct {
	llm        TextGenerator
	campaigns  *repository.CampaignRepository
	recipients *repository.RecipientRepository
	senders    *repository.SenderProfileRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
	callDelay  time.Duration
	events     []prompt.Event
}

// SetEvents supplies upcoming events to mention in every prompt. Optional.
func (s *Service) SetEvents(events []prompt.Event) {
	s.events = events
}

// New creates a generation service. llm must be a configured client; a nil
// llm makes every generation attempt fail with a configuration error.
func New(
	llm TextGenerator,
	campaigns *repository.CampaignRepository,
	recipients *repository.RecipientRepository,
	senders *repository.SenderProfileRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
	callDelay time.Duration,
) *Service {
	if callDelay <= 0 {
		callDelay = DefaultCallDelay
	}
	return &Service{
		llm:        llm,
		campaigns:  campaigns,
		recipients: recipients,
		senders:    senders,
		metrics:    m,
		logger:     logger.With("component", "generator"),
		callDelay:  callDelay,
	}
}

// GenerateCampaign processes every pending recipient of a campaign in a
// stable order. One recipient's failure never aborts the rest; the summary
// reports both counts. Returns early only on context cancellation or when
// the campaign cannot be loaded at all.
func (s *Service) GenerateCampaign(ctx context.Context, campaignID string) (models.GenerationSummary, error) {
	var summary models.GenerationSummary

	// A missing credential aborts before any row is touched; no useful
	// partial work is possible.
	if s.llm == nil {
		return summary, ErrNotConfigured
	}

	campaign, sender, err := s.loadCampaign(campaignID)
	if err != nil {
		return summary, err
	}

	pending, _, err := s.recipients.List(models.RecipientFilter{
		CampaignID: campaignID,
		Status:     models.RecipientPending,
	})
	if err != nil {
		return summary, fmt.Errorf("failed to list pending recipients: %w", err)
	}
	summary.Total = len(pending)

	for i, rec := range pending {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if i > 0 {
			if err := s.sleep(ctx); err != nil {
				return summary, err
			}
		}

		if err := s.generateOne(ctx, campaign, sender, &rec, models.RecipientPending); err != nil {
			summary.Failed++
			s.logger.Error("generation failed", "campaign_id", campaignID, "recipient_id", rec.ID, "error", err)
			continue
		}
		summary.Generated++
	}

	s.logger.Info("campaign generation finished",
		"campaign_id", campaignID, "total", summary.Total,
		"generated", summary.Generated, "failed", summary.Failed)
	return summary, nil
}

// Regenerate discards a recipient's current draft and generates a new one.
// from is the recipient's current status (generated for regenerate, failed
// for retry).
func (s *Service) Regenerate(ctx context.Context, recipientID, from string) error {
	rec, err := s.recipients.GetByID(recipientID)
	if err != nil {
		return err
	}
	if rec == nil {
		return repository.ErrNotFound
	}

	campaign, sender, err := s.loadCampaign(rec.CampaignID)
	if err != nil {
		return err
	}
	return s.generateOne(ctx, campaign, sender, rec, from)
}

// generateOne walks a single recipient through generating and into either
// generated or failed.
func (s *Service) generateOne(ctx context.Context, campaign *models.Campaign, sender *models.SenderProfile, rec *models.Recipient, from string) error {
	if s.llm == nil {
		return ErrNotConfigured
	}

	if from == models.RecipientPending {
		if err := s.recipients.Transition(rec.ID, from, models.RecipientGenerating); err != nil {
			return err
		}
	} else {
		if err := s.recipients.StartRegenerate(rec.ID, from); err != nil {
			return err
		}
	}

	briefing := persona.BriefingFor(persona.Resolve(rec.BusinessType))
	systemPrompt := prompt.BuildSystemPrompt(campaign, sender, briefing, s.events)
	userPrompt := prompt.BuildUserPrompt(rec)

	start := time.Now()
	raw, err := s.llm.Generate(ctx, systemPrompt, userPrompt)
	s.metrics.ObserveGeneration(time.Since(start), err == nil)
	if err != nil {
		if mfErr := s.recipients.MarkFailed(rec.ID, err.Error()); mfErr != nil {
			s.logger.Error("failed to record generation failure", "recipient_id", rec.ID, "error", mfErr)
		}
		return fmt.Errorf("model call: %w", err)
	}

	result := parse.Parse(raw)
	if result.Outcome != parse.Parsed {
		s.logger.Warn("model response needed fallback parsing",
			"recipient_id", rec.ID, "outcome", result.Outcome.String())
		s.metrics.FallbackParses.Inc()
	}

	if err := s.recipients.SetGenerated(rec.ID, result.Subject, result.Body); err != nil {
		if mfErr := s.recipients.MarkFailed(rec.ID, err.Error()); mfErr != nil {
			s.logger.Error("failed to record generation failure", "recipient_id", rec.ID, "error", mfErr)
		}
		return fmt.Errorf("store generated email: %w", err)
	}
	return nil
}

// loadCampaign fetches the campaign and its sender profile, substituting an
// anonymous sender when none is configured.
func (s *Service) loadCampaign(campaignID string) (*models.Campaign, *models.SenderProfile, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign == nil {
		return nil, nil, repository.ErrNotFound
	}

	sender := &models.SenderProfile{Name: "The Editorial Team", Email: "hello@bioedge.example"}
	if campaign.SenderProfileID != "" {
		loaded, err := s.senders.GetByID(campaign.SenderProfileID)
		if err != nil {
			return nil, nil, err
		}
		if loaded != nil {
			sender = loaded
		}
	}
	return campaign, sender, nil
}

func (s *Service) sleep(ctx context.Context) error {
	timer := time.NewTimer(s.callDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
