package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bioedge/outreach/internal/models"
	"github.com/google/uuid"
)

type RecipientRepository struct {
	db *sql.DB
}

func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

const recipientColumns = `id, campaign_id, recipient_email, recipient_business_type,
	recipient_practice_name, recipient_city, recipient_state, recipient_total_opens,
	recipient_total_clicks, subject, body, status, attempts, last_error, created_at, updated_at`

func scanRecipient(row interface{ Scan(...any) error }) (*models.Recipient, error) {
	rec := &models.Recipient{}
	var subject, body, lastError sql.NullString
	err := row.Scan(
		&rec.ID, &rec.CampaignID, &rec.Email, &rec.BusinessType, &rec.PracticeName,
		&rec.City, &rec.State, &rec.TotalOpens, &rec.TotalClicks,
		&subject, &body, &rec.Status, &rec.Attempts, &lastError,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Subject = subject.String
	rec.Body = body.String
	rec.LastError = lastError.String
	return rec, nil
}

// CreateFromContacts seeds a campaign with pending recipients built from
// stored contacts. Contacts already present in the campaign are skipped.
func (r *RecipientRepository) CreateFromContacts(campaignID string, contacts []models.Contact) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	created := 0
	for _, c := range contacts {
		if strings.TrimSpace(c.Email) == "" {
			continue
		}
		res, err := tx.Exec(`
			INSERT INTO recipients (id, campaign_id, recipient_email, recipient_business_type,
				recipient_practice_name, recipient_city, recipient_state, recipient_total_opens,
				recipient_total_clicks, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(campaign_id, recipient_email) DO NOTHING`,
			uuid.New().String(), campaignID, c.Email, c.BusinessType, c.PracticeName,
			c.City, c.State, c.TotalOpens, c.TotalClicks, models.RecipientPending, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create recipient for %s: %w", c.Email, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit recipients: %w", err)
	}
	return created, nil
}

// GetByID returns a recipient by ID
func (r *RecipientRepository) GetByID(id string) (*models.Recipient, error) {
	rec, err := scanRecipient(r.db.QueryRow(
		"SELECT "+recipientColumns+" FROM recipients WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns a campaign's recipients with optional status filtering, in a
// stable order so batch processing and the review queue are deterministic.
func (r *RecipientRepository) List(filter models.RecipientFilter) ([]models.Recipient, int, error) {
	countQuery := "SELECT COUNT(*) FROM recipients WHERE campaign_id = ?"
	args := []any{filter.CampaignID}

	if filter.Status != "" {
		countQuery += " AND status = ?"
		args = append(args, filter.Status)
	}

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + recipientColumns + " FROM recipients WHERE campaign_id = ?"
	args = []any{filter.CampaignID}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	query += " ORDER BY created_at ASC, id ASC"

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

	recipients := []models.Recipient{}
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, 0, err
		}
		recipients = append(recipients, *rec)
	}

	return recipients, total, nil
}

// Transition performs a compare-and-swap status change. The row must
// currently be in the from status; otherwise ErrConflict (or ErrImmutable
// for terminal rows) is returned.
func (r *RecipientRepository) Transition(id, from, to string) error {
	if !models.CanTransitionRecipient(from, to) {
		return fmt.Errorf("%w: recipient %s -> %s", ErrInvalidTransition, from, to)
	}
	res, err := r.db.Exec(
		"UPDATE recipients SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		to, time.Now(), id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to transition recipient: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictFor(id)
	}
	return nil
}

// StartRegenerate moves a generated or failed recipient back into generating
// and discards any prior subject/body.
func (r *RecipientRepository) StartRegenerate(id, from string) error {
	if !models.CanTransitionRecipient(from, models.RecipientGenerating) {
		return fmt.Errorf("%w: recipient %s -> %s", ErrInvalidTransition, from, models.RecipientGenerating)
	}
	res, err := r.db.Exec(
		"UPDATE recipients SET status = ?, subject = NULL, body = NULL, updated_at = ? WHERE id = ? AND status = ?",
		models.RecipientGenerating, time.Now(), id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to start regeneration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictFor(id)
	}
	return nil
}

// SetGenerated records a successful generation: subject and body land on the
// row and the status moves generating -> generated. Empty content is
// rejected so a generated row always carries a reviewable email.
func (r *RecipientRepository) SetGenerated(id, subject, body string) error {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return fmt.Errorf("generated email must have a subject and body")
	}
	res, err := r.db.Exec(
		"UPDATE recipients SET status = ?, subject = ?, body = ?, last_error = NULL, updated_at = ? WHERE id = ? AND status = ?",
		models.RecipientGenerated, subject, body, time.Now(), id, models.RecipientGenerating,
	)
	if err != nil {
		return fmt.Errorf("failed to store generated email: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictFor(id)
	}
	return nil
}

// MarkFailed records a failed generation attempt: generating -> failed with
// the error message and an incremented attempt counter.
func (r *RecipientRepository) MarkFailed(id, errMsg string) error {
	res, err := r.db.Exec(
		"UPDATE recipients SET status = ?, attempts = attempts + 1, last_error = ?, updated_at = ? WHERE id = ? AND status = ?",
		models.RecipientFailed, errMsg, time.Now(), id, models.RecipientGenerating,
	)
	if err != nil {
		return fmt.Errorf("failed to mark recipient failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictFor(id)
	}
	return nil
}

// UpdateContent saves reviewer edits to subject/body. Only rows still in
// generated status are editable; sent and deleted rows stay immutable.
func (r *RecipientRepository) UpdateContent(id, subject, body string) error {
	res, err := r.db.Exec(
		"UPDATE recipients SET subject = ?, body = ?, updated_at = ? WHERE id = ? AND status = ?",
		subject, body, time.Now(), id, models.RecipientGenerated,
	)
	if err != nil {
		return fmt.Errorf("failed to update recipient content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.conflictFor(id)
	}
	return nil
}

// ApproveAll transitions every currently generated recipient of the campaign
// to approved and reports how many rows moved. Rows in any other status are
// untouched.
func (r *RecipientRepository) ApproveAll(campaignID string) (int, error) {
	res, err := r.db.Exec(
		"UPDATE recipients SET status = ?, updated_at = ? WHERE campaign_id = ? AND status = ?",
		models.RecipientApproved, time.Now(), campaignID, models.RecipientGenerated,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to approve all: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// conflictFor classifies why a compare-and-swap matched no rows.
func (r *RecipientRepository) conflictFor(id string) error {
	rec, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}
	if models.TerminalRecipientStatus(rec.Status) {
		return fmt.Errorf("%w: recipient is %s", ErrImmutable, rec.Status)
	}
	return fmt.Errorf("%w: recipient is %s", ErrConflict, rec.Status)
}
