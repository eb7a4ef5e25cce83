package models

import "time"

// Company is an organization row produced by the enrichment pipeline.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	Industry  string    `json:"industry"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact is a discovered or imported person this subsystem later targets.
// Verification holds the email-verifier classification (valid, accept_all,
// risky, invalid) or is empty when the address was never checked.
type Contact struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	BusinessType string    `json:"business_type"`
	PracticeName string    `json:"practice_name"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	TotalOpens   int       `json:"total_opens"`
	TotalClicks  int       `json:"total_clicks"`
	Verification string    `json:"verification"`
	Confidence   int       `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactFilter for filtering contacts
type ContactFilter struct {
	Search       string
	BusinessType string
	Verification string
	Limit        int
	Offset       int
}
