package prompt

import (
	"strings"
	"testing"

	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/persona"
)

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:             "c1",
		Name:           "Spring Clinics",
		Purpose:        "Invite clinics to the spring longevity summit",
		CallToAction:   "Reply to grab one of the remaining practitioner passes",
		MustInclude:    "practitioner pass",
		MustAvoid:      "revolutionary, game-changer , synergy",
		Context:        "We lost money on the fall event and need strong turnout this time.",
		MaxWords:       120,
		PromotionTitle: "Spring Longevity Summit",
		PromotionURL:   "https://example.com/summit",
	}
}

func testSender() *models.SenderProfile {
	return &models.SenderProfile{Name: "Dana Reyes", Email: "dana@example.com", Title: "Partnerships Lead"}
}

func TestBuildSystemPromptDeterministic(t *testing.T) {
	c, s := testCampaign(), testSender()
	briefing := persona.BriefingFor(persona.Chiropractor)

	a := BuildSystemPrompt(c, s, briefing, nil)
	b := BuildSystemPrompt(c, s, briefing, nil)
	if a != b {
		t.Error("identical inputs produced different prompts")
	}
}

func TestBuildSystemPromptHardRules(t *testing.T) {
	p := BuildSystemPrompt(testCampaign(), testSender(), persona.BriefingFor(persona.General), nil)

	for _, want := range []string{
		"NEVER address the recipient by a personal name",
		"at most once",
		"NEVER invent facts",
		"at most 120 words",
		"practitioner pass",
		`NEVER use the word or phrase: "revolutionary"`,
		`NEVER use the word or phrase: "game-changer"`,
		`NEVER use the word or phrase: "synergy"`,
		`{"subject": "the subject line", "body": "the email body"}`,
		"exactly one JSON object",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

// The campaign background is steering material; the prompt must carry the
// instruction that it stays out of the email.
func TestBuildSystemPromptContextGuard(t *testing.T) {
	p := BuildSystemPrompt(testCampaign(), testSender(), persona.BriefingFor(persona.General), nil)

	if !strings.Contains(p, "never quote, paraphrase, or reference") {
		t.Error("system prompt missing the background exclusion instruction")
	}
	idx := strings.Index(p, "for your understanding only")
	ctxIdx := strings.Index(p, "We lost money on the fall event")
	if idx == -1 || ctxIdx == -1 || ctxIdx < idx {
		t.Error("background context must appear under the guarded BACKGROUND section")
	}
}

func TestBuildSystemPromptDefaults(t *testing.T) {
	c := testCampaign()
	c.MaxWords = 0
	c.Tone = ""
	p := BuildSystemPrompt(c, testSender(), persona.BriefingFor(persona.General), nil)

	if !strings.Contains(p, "at most 150 words") {
		t.Error("missing default word limit when campaign sets none")
	}
	if !strings.Contains(p, "Tone: warm, direct") {
		t.Error("missing default tone when campaign sets none")
	}
}

func TestBuildSystemPromptEvents(t *testing.T) {
	events := []Event{{Name: "Longevity Live", Date: "May 12", Location: "Austin, TX"}}
	p := BuildSystemPrompt(testCampaign(), testSender(), persona.BriefingFor(persona.Biohacker), events)

	if !strings.Contains(p, "UPCOMING EVENTS") || !strings.Contains(p, "Longevity Live, May 12, Austin, TX") {
		t.Error("events not included in system prompt")
	}
}

func TestBuildUserPromptOmitsAbsentFields(t *testing.T) {
	r := &models.Recipient{Email: "a@b.com", BusinessType: "Chiropractor"}
	p := BuildUserPrompt(r)

	if strings.Contains(p, "Practice name") {
		t.Error("practice line present for recipient without practice name")
	}
	if strings.Contains(p, "City") {
		t.Error("city line present for recipient without city")
	}
	if strings.Contains(p, "Engagement") {
		t.Error("engagement line present for recipient with zero opens")
	}
}

func TestBuildUserPromptEngagement(t *testing.T) {
	r := &models.Recipient{BusinessType: "Med Spa", TotalOpens: 4, TotalClicks: 2}
	p := BuildUserPrompt(r)
	if !strings.Contains(p, "opened 4 of our previous emails") || !strings.Contains(p, "clicked 2 links") {
		t.Errorf("engagement line incomplete: %q", p)
	}
}

func TestBuildUserPromptSentinelBusinessType(t *testing.T) {
	for _, bt := range []string{"", "Valid", "valid", "  "} {
		p := BuildUserPrompt(&models.Recipient{BusinessType: bt})
		if !strings.Contains(p, "not classified") {
			t.Errorf("business type %q should render as not classified, got %q", bt, p)
		}
		if strings.Contains(p, "Valid") {
			t.Errorf("sentinel %q leaked into the prompt", bt)
		}
	}
}

func TestBuildUserPromptPracticeAndCity(t *testing.T) {
	r := &models.Recipient{
		BusinessType: "Fitness Studio",
		PracticeName: "Iron & Oak",
		City:         "Boulder",
		State:        "CO",
	}
	p := BuildUserPrompt(r)
	if !strings.Contains(p, "Practice name: Iron & Oak") {
		t.Error("missing practice name line")
	}
	if !strings.Contains(p, "City: Boulder, CO") {
		t.Error("missing city/state line")
	}
}

func TestBannedPhrases(t *testing.T) {
	c := &models.Campaign{MustAvoid: " foo , bar,, baz "}
	got := BannedPhrases(c)
	want := []string{"foo", "bar", "baz"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phrase %d = %q, want %q", i, got[i], want[i])
		}
	}
}
