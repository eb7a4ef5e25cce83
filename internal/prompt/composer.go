// Package prompt assembles the system and user prompts for one generation
// call. Composition is pure string building: identical inputs always produce
// identical prompts.
package prompt

import (
	"fmt"
	"strings"

	"github.com/bioedge/outreach/internal/models"
	"github.com/bioedge/outreach/internal/persona"
)

// DefaultMaxWords bounds the email body when a campaign sets no limit.
const DefaultMaxWords = 150

// Event is an upcoming event or promotion surfaced to the model alongside
// the campaign's own promotion fields.
type Event struct {
	Name     string
	Date     string
	Location string
	URL      string
}

// BuildSystemPrompt assembles the system prompt from campaign configuration,
// the sender identity, and the recipient's persona briefing. All hard rules
// the pipeline depends on are stated here: the model never sees a personal
// name, practice/city mentions are capped at one each, banned phrases are a
// blacklist, and the response must be a single JSON object.
func BuildSystemPrompt(c *models.Campaign, sender *models.SenderProfile, briefing persona.Briefing, events []Event) string {
	var b strings.Builder

	b.WriteString("You are writing a short outreach email on behalf of ")
	b.WriteString(sender.Name)
	if sender.Title != "" {
		b.WriteString(", ")
		b.WriteString(sender.Title)
	}
	b.WriteString(", for a longevity-industry media brand.\n\n")

	b.WriteString("AUDIENCE\n")
	b.WriteString("Recipient persona: ")
	b.WriteString(briefing.DisplayName)
	b.WriteString(". ")
	b.WriteString(briefing.Context)
	b.WriteString("\n\n")

	b.WriteString("PURPOSE\n")
	b.WriteString(c.Purpose)
	b.WriteString("\n\n")

	if c.Context != "" {
		b.WriteString("BACKGROUND (for your understanding only — never quote, paraphrase, or reference this section in the email):\n")
		b.WriteString(c.Context)
		b.WriteString("\n\n")
	}

	if c.PromotionTitle != "" {
		b.WriteString("PROMOTION\n")
		b.WriteString(c.PromotionTitle)
		if c.PromotionDesc != "" {
			b.WriteString(" — ")
			b.WriteString(c.PromotionDesc)
		}
		if c.PromotionURL != "" {
			b.WriteString(" (")
			b.WriteString(c.PromotionURL)
			b.WriteString(")")
		}
		b.WriteString("\n\n")
	}

	if len(events) > 0 {
		b.WriteString("UPCOMING EVENTS\n")
		for _, ev := range events {
			b.WriteString("- ")
			b.WriteString(ev.Name)
			if ev.Date != "" {
				b.WriteString(", ")
				b.WriteString(ev.Date)
			}
			if ev.Location != "" {
				b.WriteString(", ")
				b.WriteString(ev.Location)
			}
			if ev.URL != "" {
				b.WriteString(" (")
				b.WriteString(ev.URL)
				b.WriteString(")")
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("VOICE\n")
	tone := c.Tone
	if tone == "" {
		tone = "warm, direct, and professional, like a note from one busy industry peer to another"
	}
	b.WriteString("Tone: ")
	b.WriteString(tone)
	b.WriteString("\n")
	if c.ReferenceEmail != "" {
		b.WriteString("Match the style of this example email:\n---\n")
		b.WriteString(c.ReferenceEmail)
		b.WriteString("\n---\n")
	}
	b.WriteString("\n")

	b.WriteString("HARD RULES\n")
	b.WriteString("- NEVER address the recipient by a personal name. You do not know their name. Open without a name or with a role-based greeting.\n")
	b.WriteString("- Mention the recipient's practice name at most once, and only if it is given in the recipient details.\n")
	b.WriteString("- Mention the recipient's city at most once, and only if it is given in the recipient details.\n")
	b.WriteString("- NEVER invent facts about the recipient, their practice, or their location.\n")
	b.WriteString("- Do not add a signature or sign-off block; it is appended separately.\n")

	maxWords := c.MaxWords
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	fmt.Fprintf(&b, "- The email body must be at most %d words.\n", maxWords)

	if c.CallToAction != "" {
		b.WriteString("- End with this call to action: ")
		b.WriteString(c.CallToAction)
		b.WriteString("\n")
	}
	if c.MustInclude != "" {
		b.WriteString("- Include this exact text verbatim somewhere in the body: \"")
		b.WriteString(c.MustInclude)
		b.WriteString("\"\n")
	}
	for _, banned := range BannedPhrases(c) {
		b.WriteString("- NEVER use the word or phrase: \"")
		b.WriteString(banned)
		b.WriteString("\"\n")
	}
	if c.SubjectPrompt != "" {
		b.WriteString("- Subject line guidance: ")
		b.WriteString(c.SubjectPrompt)
		b.WriteString("\n")
	}

	b.WriteString("\nOUTPUT FORMAT\n")
	b.WriteString("Respond with exactly one JSON object and nothing else — no prose, no code fences:\n")
	b.WriteString(`{"subject": "the subject line", "body": "the email body"}`)
	b.WriteString("\n")

	return b.String()
}

// BuildUserPrompt assembles the per-recipient facts. Fields that are absent
// on the recipient are omitted entirely so the model cannot echo placeholders
// or fabricate around them.
func BuildUserPrompt(r *models.Recipient) string {
	var b strings.Builder

	b.WriteString("Write the email for this recipient:\n")
	b.WriteString("- Business type: ")
	if bt := strings.TrimSpace(r.BusinessType); bt != "" && !strings.EqualFold(bt, "valid") {
		b.WriteString(bt)
	} else {
		b.WriteString("not classified")
	}
	b.WriteString("\n")

	if r.PracticeName != "" {
		b.WriteString("- Practice name: ")
		b.WriteString(r.PracticeName)
		b.WriteString("\n")
	}
	if r.City != "" {
		b.WriteString("- City: ")
		b.WriteString(r.City)
		if r.State != "" {
			b.WriteString(", ")
			b.WriteString(r.State)
		}
		b.WriteString("\n")
	}
	if r.TotalOpens > 0 {
		fmt.Fprintf(&b, "- Engagement: has opened %d of our previous emails", r.TotalOpens)
		if r.TotalClicks > 0 {
			fmt.Fprintf(&b, " and clicked %d links", r.TotalClicks)
		}
		b.WriteString(", so they already know of us; do not introduce the brand from scratch.\n")
	}

	return b.String()
}

// BannedPhrases splits a campaign's must_avoid field into its phrase list.
func BannedPhrases(c *models.Campaign) []string {
	if c.MustAvoid == "" {
		return nil
	}
	parts := strings.Split(c.MustAvoid, ",")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}
