package review

import (
	"context"

	"github.com/bioedge/outreach/internal/generator"
	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/repository"
)

// RepositoryStore adapts the recipient repository and the generation service
// to the queue's Store interface.
type RepositoryStore struct {
	recipients *repository.RecipientRepository
	gen        *generator.Service
}

// NewRepositoryStore builds the production Store.
func NewRepositoryStore(recipients *repository.RecipientRepository, gen *generator.Service) *RepositoryStore {
	return &RepositoryStore{recipients: recipients, gen: gen}
}

func (s *RepositoryStore) ListGenerated(campaignID string) ([]models.Recipient, error) {
	items, _, err := s.recipients.List(models.RecipientFilter{
		CampaignID: campaignID,
		Status:     models.RecipientGenerated,
	})
	return items, err
}

func (s *RepositoryStore) SaveContent(id, subject, body string) error {
	return s.recipients.UpdateContent(id, subject, body)
}

func (s *RepositoryStore) Approve(id string) error {
	return s.recipients.Transition(id, models.RecipientGenerated, models.RecipientApproved)
}

func (s *RepositoryStore) Delete(id string) error {
	return s.recipients.Transition(id, models.RecipientGenerated, models.RecipientDeleted)
}

func (s *RepositoryStore) Regenerate(ctx context.Context, id string) error {
	return s.gen.Regenerate(ctx, id, models.RecipientGenerated)
}

func (s *RepositoryStore) ApproveAll(campaignID string) (int, error) {
	return s.recipients.ApproveAll(campaignID)
}
