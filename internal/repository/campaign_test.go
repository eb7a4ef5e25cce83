package repository

import (
	"errors"
	"testing"

	"github.com/bioedge/outreach/internal/models"
)

func TestCampaignCreateAndGet(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)

	c := &models.Campaign{
		Name:         "Spring Clinics",
		Purpose:      "Summit invites",
		MustAvoid:    "synergy",
		MaxWords:     120,
		PromotionURL: "https://example.com",
	}
	if err := repo.Create(c); err != nil {
		t.Fatal(err)
	}
	if c.Status != models.CampaignDraft {
		t.Errorf("status = %q, want draft", c.Status)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("campaign not found")
	}
	if got.Name != c.Name || got.MustAvoid != "synergy" || got.MaxWords != 120 {
		t.Errorf("got %+v", got)
	}
}

func TestCampaignGetMissing(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)

	got, err := repo.GetByID("nope")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for missing campaign, got %+v", got)
	}
}

func TestCampaignList(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)

	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		if err := repo.Create(&models.Campaign{Name: name}); err != nil {
			t.Fatal(err)
		}
	}

	all, total, err := repo.List(models.CampaignListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("total = %d, len = %d, want 3", total, len(all))
	}

	filtered, total, err := repo.List(models.CampaignListFilter{Search: "Bet"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(filtered) != 1 || filtered[0].Name != "Beta" {
		t.Errorf("search returned %v (total %d)", filtered, total)
	}
}

func TestCampaignUpdateStatus(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)
	c := createTestCampaign(t, repo)

	if err := repo.UpdateStatus(c.ID, models.CampaignDraft, models.CampaignGenerating); err != nil {
		t.Fatal(err)
	}

	// Same transition again must conflict: the row is no longer draft.
	err := repo.UpdateStatus(c.ID, models.CampaignDraft, models.CampaignGenerating)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}

	// Backwards transitions are rejected before touching the database.
	err = repo.UpdateStatus(c.ID, models.CampaignGenerating, models.CampaignDraft)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCampaignPauseResume(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)
	c := createTestCampaign(t, repo)

	for _, step := range [][2]string{
		{models.CampaignDraft, models.CampaignGenerating},
		{models.CampaignGenerating, models.CampaignReady},
		{models.CampaignReady, models.CampaignSending},
		{models.CampaignSending, models.CampaignPaused},
		{models.CampaignPaused, models.CampaignSending},
	} {
		if err := repo.UpdateStatus(c.ID, step[0], step[1]); err != nil {
			t.Fatalf("%s -> %s: %v", step[0], step[1], err)
		}
	}
}

func TestCampaignDeleteDraftOnly(t *testing.T) {
	database := setupTestDB(t)
	repo := NewCampaignRepository(database)

	draft := createTestCampaign(t, repo)
	if err := repo.Delete(draft.ID); err != nil {
		t.Fatalf("draft delete failed: %v", err)
	}

	active := createTestCampaign(t, repo)
	if err := repo.UpdateStatus(active.ID, models.CampaignDraft, models.CampaignGenerating); err != nil {
		t.Fatal(err)
	}
	err := repo.Delete(active.ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("deleting non-draft: err = %v, want ErrConflict", err)
	}

	if err := repo.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting missing: err = %v, want ErrNotFound", err)
	}
}

func TestCampaignStatsDerived(t *testing.T) {
	database := setupTestDB(t)
	campaigns := NewCampaignRepository(database)
	recipients := NewRecipientRepository(database)

	c := createTestCampaign(t, campaigns)
	recs := seedRecipients(t, recipients, c.ID, 4)

	// Move two recipients through to generated, one to failed.
	for _, rec := range recs[:3] {
		if err := recipients.Transition(rec.ID, models.RecipientPending, models.RecipientGenerating); err != nil {
			t.Fatal(err)
		}
	}
	if err := recipients.SetGenerated(recs[0].ID, "S1", "B1"); err != nil {
		t.Fatal(err)
	}
	if err := recipients.SetGenerated(recs[1].ID, "S2", "B2"); err != nil {
		t.Fatal(err)
	}
	if err := recipients.MarkFailed(recs[2].ID, "boom"); err != nil {
		t.Fatal(err)
	}

	stats, err := campaigns.Stats(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := models.CampaignStats{Recipients: 4, Pending: 1, Generated: 2, Failed: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
