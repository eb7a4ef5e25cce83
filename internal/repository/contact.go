package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bioedge/outreach/internal/models"
	"github.com/google/uuid"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert inserts a contact or refreshes an existing one by email. The
// enrichment CLI calls this for every discovered contact.
func (r *ContactRepository) Upsert(c *models.Contact) error {
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.New().String()
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	var companyID any
	if c.CompanyID != "" {
		companyID = c.CompanyID
	}

	_, err := r.db.Exec(`
		INSERT INTO contacts (id, company_id, email, first_name, last_name, business_type,
			practice_name, city, state, total_opens, total_clicks, verification, confidence,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			company_id = excluded.company_id,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			business_type = excluded.business_type,
			practice_name = excluded.practice_name,
			city = excluded.city,
			state = excluded.state,
			verification = excluded.verification,
			confidence = excluded.confidence,
			updated_at = excluded.updated_at`,
		c.ID, companyID, c.Email, c.FirstName, c.LastName, c.BusinessType,
		c.PracticeName, c.City, c.State, c.TotalOpens, c.TotalClicks, c.Verification,
		c.Confidence, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// GetByEmail returns a contact by email address
func (r *ContactRepository) GetByEmail(email string) (*models.Contact, error) {
	c := &models.Contact{}
	var companyID sql.NullString
	err := r.db.QueryRow(`
		SELECT id, company_id, email, first_name, last_name, business_type, practice_name,
			city, state, total_opens, total_clicks, verification, confidence, created_at, updated_at
		FROM contacts WHERE email = ?`, email,
	).Scan(&c.ID, &companyID, &c.Email, &c.FirstName, &c.LastName, &c.BusinessType,
		&c.PracticeName, &c.City, &c.State, &c.TotalOpens, &c.TotalClicks, &c.Verification,
		&c.Confidence, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.CompanyID = companyID.String
	return c, nil
}

// List returns contacts with filtering
func (r *ContactRepository) List(filter models.ContactFilter) ([]models.Contact, int, error) {
	countQuery := "SELECT COUNT(*) FROM contacts WHERE 1=1"
	args := []any{}

	if filter.Search != "" {
		countQuery += " AND (email LIKE ? OR practice_name LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.BusinessType != "" {
		countQuery += " AND business_type = ?"
		args = append(args, filter.BusinessType)
	}
	if filter.Verification != "" {
		countQuery += " AND verification = ?"
		args = append(args, filter.Verification)
	}

	var total int
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, company_id, email, first_name, last_name, business_type, practice_name,
			city, state, total_opens, total_clicks, verification, confidence, created_at, updated_at
		FROM contacts WHERE 1=1`
	args = []any{}
	if filter.Search != "" {
		query += " AND (email LIKE ? OR practice_name LIKE ?)"
		args = append(args, "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.BusinessType != "" {
		query += " AND business_type = ?"
		args = append(args, filter.BusinessType)
	}
	if filter.Verification != "" {
		query += " AND verification = ?"
		args = append(args, filter.Verification)
	}

	query += " ORDER BY created_at DESC"

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

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		var companyID sql.NullString
		err := rows.Scan(&c.ID, &companyID, &c.Email, &c.FirstName, &c.LastName, &c.BusinessType,
			&c.PracticeName, &c.City, &c.State, &c.TotalOpens, &c.TotalClicks, &c.Verification,
			&c.Confidence, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		c.CompanyID = companyID.String
		contacts = append(contacts, c)
	}

	return contacts, total, nil
}

// UpsertCompany inserts a company or refreshes an existing one by domain.
func (r *ContactRepository) UpsertCompany(c *models.Company) error {
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.New().String()
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO companies (id, name, domain, industry, city, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			name = excluded.name,
			industry = excluded.industry,
			city = excluded.city,
			state = excluded.state,
			updated_at = excluded.updated_at`,
		c.ID, c.Name, c.Domain, c.Industry, c.City, c.State, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert company: %w", err)
	}
	return nil
}

// GetCompanyByDomain returns a company by domain
func (r *ContactRepository) GetCompanyByDomain(domain string) (*models.Company, error) {
	c := &models.Company{}
	err := r.db.QueryRow(`
		SELECT id, name, domain, industry, city, state, created_at, updated_at
		FROM companies WHERE domain = ?`, domain,
	).Scan(&c.ID, &c.Name, &c.Domain, &c.Industry, &c.City, &c.State, &c.CreatedAt, &c.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
