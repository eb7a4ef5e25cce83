package models

import "time"

// Campaign statuses. Forward-only, except sending <-> paused.
const (
	CampaignDraft      = "draft"
	CampaignGenerating = "generating"
	CampaignReady      = "ready"
	CampaignSending    = "sending"
	CampaignPaused     = "paused"
	CampaignCompleted  = "completed"
)

// Campaign is the configuration aggregate for one outreach batch.
// Counters are never stored on this row; see CampaignStats.
type Campaign struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	Purpose         string    `json:"purpose"`
	Tone            string    `json:"tone"`
	CallToAction    string    `json:"call_to_action"`
	MustInclude     string    `json:"must_include"`
	MustAvoid       string    `json:"must_avoid"` // comma-separated banned phrases
	ReferenceEmail  string    `json:"reference_email"`
	Context         string    `json:"context"` // background only, never quoted to recipients
	MaxWords        int       `json:"max_words"`
	SubjectPrompt   string    `json:"subject_prompt"`
	PromotionTitle  string    `json:"promotion_title"`
	PromotionURL    string    `json:"promotion_url"`
	PromotionDesc   string    `json:"promotion_description"`
	SenderProfileID string    `json:"sender_profile_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CampaignStats holds counters derived live from recipient rows.
type CampaignStats struct {
	Recipients int `json:"recipient_count"`
	Pending    int `json:"pending_count"`
	Generating int `json:"generating_count"`
	Generated  int `json:"generated_count"`
	Approved   int `json:"approved_count"`
	Deleted    int `json:"deleted_count"`
	Failed     int `json:"failed_count"`
	Sent       int `json:"sent_count"`
}

// CampaignWithStats bundles a campaign with its derived counters.
type CampaignWithStats struct {
	Campaign
	Stats CampaignStats `json:"stats"`
}

// CampaignListFilter for filtering campaigns
type CampaignListFilter struct {
	Search string
	Status string
	Limit  int
	Offset int
}

// campaignStatusRank orders the forward-only statuses. paused is handled
// separately since it is only reachable from sending and returns to it.
var campaignStatusRank = map[string]int{
	CampaignDraft:      0,
	CampaignGenerating: 1,
	CampaignReady:      2,
	CampaignSending:    3,
	CampaignCompleted:  4,
}

// CanTransitionCampaign reports whether a campaign status change is allowed.
func CanTransitionCampaign(from, to string) bool {
	if from == to {
		return false
	}
	if from == CampaignSending && to == CampaignPaused {
		return true
	}
	if from == CampaignPaused && to == CampaignSending {
		return true
	}
	fromRank, ok := campaignStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := campaignStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}
