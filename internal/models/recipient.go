package models

import "time"

// Recipient statuses. sent and deleted are terminal.
const (
	RecipientPending    = "pending"
	RecipientGenerating = "generating"
	RecipientGenerated  = "generated"
	RecipientApproved   = "approved"
	RecipientDeleted    = "deleted"
	RecipientFailed     = "failed"
	RecipientSent       = "sent"
)

// Recipient is one contact's row within a campaign. Subject and Body stay
// empty until the first successful generation.
type Recipient struct {
	ID           string    `json:"id"`
	CampaignID   string    `json:"campaign_id"`
	Email        string    `json:"recipient_email"`
	BusinessType string    `json:"recipient_business_type"`
	PracticeName string    `json:"recipient_practice_name"`
	City         string    `json:"recipient_city"`
	State        string    `json:"recipient_state"`
	TotalOpens   int       `json:"recipient_total_opens"`
	TotalClicks  int       `json:"recipient_total_clicks"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	LastError    string    `json:"last_error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RecipientFilter for filtering recipients within a campaign
type RecipientFilter struct {
	CampaignID string
	Status     string
	Limit      int
	Offset     int
}

// GenerationSummary reports the outcome of one batch generation run.
type GenerationSummary struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Failed    int `json:"failed"`
}

// recipientTransitions is the allowed edge set of the recipient lifecycle.
var recipientTransitions = map[string][]string{
	RecipientPending:    {RecipientGenerating},
	RecipientGenerating: {RecipientGenerated, RecipientFailed},
	RecipientGenerated:  {RecipientApproved, RecipientDeleted, RecipientGenerating},
	RecipientFailed:     {RecipientGenerating},
	RecipientApproved:   {RecipientSent},
}

// CanTransitionRecipient reports whether a recipient status change is allowed.
// sent and deleted have no outgoing edges.
func CanTransitionRecipient(from, to string) bool {
	for _, next := range recipientTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TerminalRecipientStatus reports whether a status permits no further change.
func TerminalRecipientStatus(status string) bool {
	return status == RecipientSent || status == RecipientDeleted
}
