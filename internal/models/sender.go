package models

import (
	"fmt"
	"strings"
	"time"
)

// SenderProfile is the identity an email is written on behalf of.
type SenderProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Title     string    `json:"title"`
	Phone     string    `json:"phone"`
	Signature string    `json:"signature"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks mandatory fields before any persistence or external call.
func (s *SenderProfile) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("sender name is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("sender email is required")
	}
	if !strings.Contains(s.Email, "@") {
		return fmt.Errorf("sender email %q is not a valid address", s.Email)
	}
	return nil
}

// DefaultSignature builds a plain-text signature from the profile fields.
// The signature is appended by the sending step, never by the generator.
func (s *SenderProfile) DefaultSignature() string {
	lines := []string{s.Name}
	if s.Title != "" {
		lines = append(lines, s.Title)
	}
	lines = append(lines, s.Email)
	if s.Phone != "" {
		lines = append(lines, s.Phone)
	}
	return strings.Join(lines, "\n")
}
