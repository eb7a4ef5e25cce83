package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bioedge/outreach/internal/models"
	"github.com/google/uuid"
)

type SenderProfileRepository struct {
	db *sql.DB
}

func NewSenderProfileRepository(db *sql.DB) *SenderProfileRepository {
	return &SenderProfileRepository{db: db}
}

// Create validates and stores a sender profile. A missing signature is
// filled in from the other fields.
func (r *SenderProfileRepository) Create(s *models.SenderProfile) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	if s.Signature == "" {
		s.Signature = s.DefaultSignature()
	}

	_, err := r.db.Exec(`
		INSERT INTO sender_profiles (id, name, email, title, phone, signature, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Email, s.Title, s.Phone, s.Signature, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sender profile: %w", err)
	}
	return nil
}

// GetByID returns a sender profile by ID
func (r *SenderProfileRepository) GetByID(id string) (*models.SenderProfile, error) {
	s := &models.SenderProfile{}
	err := r.db.QueryRow(`
		SELECT id, name, email, title, phone, signature, created_at, updated_at
		FROM sender_profiles WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.Title, &s.Phone, &s.Signature, &s.CreatedAt, &s.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all sender profiles
func (r *SenderProfileRepository) List() ([]models.SenderProfile, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, title, phone, signature, created_at, updated_at
		FROM sender_profiles ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []models.SenderProfile{}
	for rows.Next() {
		var s models.SenderProfile
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Title, &s.Phone, &s.Signature, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, s)
	}
	return profiles, nil
}

// Update updates a sender profile
func (r *SenderProfileRepository) Update(s *models.SenderProfile) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	res, err := r.db.Exec(`
		UPDATE sender_profiles SET name = ?, email = ?, title = ?, phone = ?, signature = ?, updated_at = ?
		WHERE id = ?`,
		s.Name, s.Email, s.Title, s.Phone, s.Signature, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sender profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a sender profile
func (r *SenderProfileRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM sender_profiles WHERE id = ?", id)
	return err
}
