package models

import "testing"

func TestCanTransitionRecipient(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to generating", RecipientPending, RecipientGenerating, true},
		{"generating to generated", RecipientGenerating, RecipientGenerated, true},
		{"generating to failed", RecipientGenerating, RecipientFailed, true},
		{"generated to approved", RecipientGenerated, RecipientApproved, true},
		{"generated to deleted", RecipientGenerated, RecipientDeleted, true},
		{"generated to generating (regenerate)", RecipientGenerated, RecipientGenerating, true},
		{"failed to generating (retry)", RecipientFailed, RecipientGenerating, true},
		{"approved to sent", RecipientApproved, RecipientSent, true},
		{"pending to generated skips generating", RecipientPending, RecipientGenerated, false},
		{"sent is terminal", RecipientSent, RecipientGenerating, false},
		{"deleted is terminal", RecipientDeleted, RecipientGenerated, false},
		{"approved cannot regenerate", RecipientApproved, RecipientGenerating, false},
		{"unknown status", "bogus", RecipientGenerating, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransitionRecipient(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransitionRecipient(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminalRecipientStatus(t *testing.T) {
	for _, status := range []string{RecipientSent, RecipientDeleted} {
		if !TerminalRecipientStatus(status) {
			t.Errorf("expected %q to be terminal", status)
		}
	}
	for _, status := range []string{RecipientPending, RecipientGenerating, RecipientGenerated, RecipientApproved, RecipientFailed} {
		if TerminalRecipientStatus(status) {
			t.Errorf("expected %q not to be terminal", status)
		}
	}
}

func TestCanTransitionCampaign(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want bool
	}{
		{CampaignDraft, CampaignGenerating, true},
		{CampaignGenerating, CampaignReady, true},
		{CampaignReady, CampaignSending, true},
		{CampaignSending, CampaignPaused, true},
		{CampaignPaused, CampaignSending, true},
		{CampaignSending, CampaignCompleted, true},
		{CampaignDraft, CampaignCompleted, true},
		{CampaignCompleted, CampaignDraft, false},
		{CampaignReady, CampaignDraft, false},
		{CampaignPaused, CampaignCompleted, false},
		{CampaignDraft, CampaignDraft, false},
	}

	for _, tt := range tests {
		if got := CanTransitionCampaign(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionCampaign(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
