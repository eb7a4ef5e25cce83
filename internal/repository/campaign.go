package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bioedge/outreach/internal/models"
	"github.com/google/uuid"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = `id, name, status, purpose, tone, call_to_action, must_include, must_avoid,
	reference_email, context, max_words, subject_prompt, promotion_title, promotion_url,
	promotion_description, sender_profile_id, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*models.Campaign, error) {
	c := &models.Campaign{}
	var senderID sql.NullString
	err := row.Scan(
		&c.ID, &c.Name, &c.Status, &c.Purpose, &c.Tone, &c.CallToAction, &c.MustInclude,
		&c.MustAvoid, &c.ReferenceEmail, &c.Context, &c.MaxWords, &c.SubjectPrompt,
		&c.PromotionTitle, &c.PromotionURL, &c.PromotionDesc, &senderID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if senderID.Valid {
		c.SenderProfileID = senderID.String
	}
	return c, nil
}

// Create creates a new campaign in draft status.
func (r *CampaignRepository) Create(c *models.Campaign) error {
	c.ID = uuid.New().String()
	c.Status = models.CampaignDraft
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	var senderID any
	if c.SenderProfileID != "" {
		senderID = c.SenderProfileID
	}

	_, err := r.db.Exec(`
		INSERT INTO campaigns (id, name, status, purpose, tone, call_to_action, must_include, must_avoid,
			reference_email, context, max_words, subject_prompt, promotion_title, promotion_url,
			promotion_description, sender_profile_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Status, c.Purpose, c.Tone, c.CallToAction, c.MustInclude, c.MustAvoid,
		c.ReferenceEmail, c.Context, c.MaxWords, c.SubjectPrompt, c.PromotionTitle, c.PromotionURL,
		c.PromotionDesc, senderID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID returns a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(
		"SELECT "+campaignColumns+" FROM campaigns WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns campaigns with optional filtering
func (r *CampaignRepository) List(filter models.CampaignListFilter) ([]models.Campaign, int, error) {
	countQuery := "SELECT COUNT(*) FROM campaigns WHERE 1=1"
	args := []any{}

	if filter.Search != "" {
		countQuery += " AND (name LIKE ? OR purpose LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		countQuery += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + campaignColumns + " FROM campaigns WHERE 1=1"
	args = []any{}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR purpose LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY updated_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, *c)
	}

	return campaigns, total, nil
}

// ListByStatus returns all campaigns currently in the given status, oldest
// first. Used by the generation worker to find work.
func (r *CampaignRepository) ListByStatus(status string) ([]models.Campaign, error) {
	rows, err := r.db.Query(
		"SELECT "+campaignColumns+" FROM campaigns WHERE status = ? ORDER BY updated_at ASC", status,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, nil
}

// Update updates a campaign's configuration fields. Status is not touched
// here; use UpdateStatus.
func (r *CampaignRepository) Update(c *models.Campaign) error {
	c.UpdatedAt = time.Now()

	var senderID any
	if c.SenderProfileID != "" {
		senderID = c.SenderProfileID
	}

	res, err := r.db.Exec(`
		UPDATE campaigns SET name = ?, purpose = ?, tone = ?, call_to_action = ?, must_include = ?,
			must_avoid = ?, reference_email = ?, context = ?, max_words = ?, subject_prompt = ?,
			promotion_title = ?, promotion_url = ?, promotion_description = ?, sender_profile_id = ?,
			updated_at = ?
		WHERE id = ?`,
		c.Name, c.Purpose, c.Tone, c.CallToAction, c.MustInclude, c.MustAvoid, c.ReferenceEmail,
		c.Context, c.MaxWords, c.SubjectPrompt, c.PromotionTitle, c.PromotionURL, c.PromotionDesc,
		senderID, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves a campaign from one status to another. The expected
// current status guards against a concurrent transition.
func (r *CampaignRepository) UpdateStatus(id, from, to string) error {
	if !models.CanTransitionCampaign(from, to) {
		return fmt.Errorf("%w: campaign %s -> %s", ErrInvalidTransition, from, to)
	}
	res, err := r.db.Exec(
		"UPDATE campaigns SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now(), id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a campaign. Only draft campaigns are deletable.
func (r *CampaignRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM campaigns WHERE id = ? AND status = ?", id, models.CampaignDraft)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c, err := r.GetByID(id)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrNotFound
		}
		return fmt.Errorf("%w: only draft campaigns can be deleted", ErrConflict)
	}
	return nil
}

// Stats computes the derived recipient counters for a campaign. The values
// are produced by a live GROUP BY over recipient rows and are never cached.
func (r *CampaignRepository) Stats(campaignID string) (models.CampaignStats, error) {
	rows, err := r.db.Query(
		"SELECT status, COUNT(*) FROM recipients WHERE campaign_id = ? GROUP BY status", campaignID,
	)
	if err != nil {
		return models.CampaignStats{}, err
	}
	defer rows.Close()

	var stats models.CampaignStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return models.CampaignStats{}, err
		}
		stats.Recipients += count
		switch status {
		case models.RecipientPending:
			stats.Pending = count
		case models.RecipientGenerating:
			stats.Generating = count
		case models.RecipientGenerated:
			stats.Generated = count
		case models.RecipientApproved:
			stats.Approved = count
		case models.RecipientDeleted:
			stats.Deleted = count
		case models.RecipientFailed:
			stats.Failed = count
		case models.RecipientSent:
			stats.Sent = count
		}
	}
	return stats, rows.Err()
}
