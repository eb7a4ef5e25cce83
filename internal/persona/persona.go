// Package persona maps raw recipient business-type strings onto a fixed set
// of persona groups, each carrying a briefing paragraph used to steer tone.
package persona

import "strings"

// GroupKey identifies one persona group.
type GroupKey string

const (
	Chiropractor       GroupKey = "chiropractor"
	FunctionalMedicine GroupKey = "functional_medicine"
	MedSpa             GroupKey = "med_spa"
	FitnessWellness    GroupKey = "fitness_wellness"
	Biohacker          GroupKey = "biohacker"
	General            GroupKey = "general"
)

// Briefing is the canned context injected into the system prompt for a group.
type Briefing struct {
	DisplayName string
	Context     string
}

var briefings = map[GroupKey]Briefing{
	Chiropractor: {
		DisplayName: "Chiropractor",
		Context: "The recipient runs a chiropractic practice. They care about patient retention, " +
			"adding non-insurance revenue, and positioning their clinic around whole-body wellness " +
			"rather than just spinal adjustment. Speak to them as a fellow practitioner-adjacent " +
			"professional, not as a consumer.",
	},
	FunctionalMedicine: {
		DisplayName: "Functional Medicine Practitioner",
		Context: "The recipient practices functional or integrative medicine. They are " +
			"evidence-curious, already sell supplements and diagnostics, and respond to specifics " +
			"about protocols, biomarkers, and patient outcomes. Avoid hype; they are allergic to it.",
	},
	MedSpa: {
		DisplayName: "Med Spa / Aesthetic Clinic",
		Context: "The recipient operates a med spa or aesthetic clinic. Revenue per visit and " +
			"client experience drive their decisions. Longevity services are an upsell opportunity " +
			"for them; frame value in those terms.",
	},
	FitnessWellness: {
		DisplayName: "Fitness & Wellness Coach",
		Context: "The recipient is a trainer, gym owner, or wellness coach. They think in terms of " +
			"client results and community. Keep the language energetic but concrete, and connect " +
			"longevity content to what they can pass on to clients.",
	},
	Biohacker: {
		DisplayName: "Biohacking & Longevity Enthusiast",
		Context: "The recipient self-identifies with the biohacking and longevity optimization " +
			"scene. They follow protocols, devices, and research closely. Name-dropping vague " +
			"wellness tropes will lose them; precise, current references land.",
	},
	General: {
		DisplayName: "Health-Curious Professional",
		Context: "Nothing reliable is known about the recipient's profession. Write for a " +
			"health-curious professional with a general interest in longevity. Make no assumptions " +
			"about their practice or clientele.",
	},
}

// keywords maps lowercase substrings of business-type strings to groups.
// Order matters: more specific matches are listed first.
var keywords = []struct {
	substr string
	group  GroupKey
}{
	{"chiro", Chiropractor},
	{"functional", FunctionalMedicine},
	{"integrative", FunctionalMedicine},
	{"naturopath", FunctionalMedicine},
	{"acupunctur", FunctionalMedicine},
	{"med spa", MedSpa},
	{"medspa", MedSpa},
	{"aesthetic", MedSpa},
	{"spa", MedSpa},
	{"iv ", MedSpa},
	{"cryo", MedSpa},
	{"fitness", FitnessWellness},
	{"gym", FitnessWellness},
	{"trainer", FitnessWellness},
	{"coach", FitnessWellness},
	{"yoga", FitnessWellness},
	{"pilates", FitnessWellness},
	{"biohack", Biohacker},
	{"longevity", Biohacker},
	{"anti-aging", Biohacker},
	{"antiaging", Biohacker},
}

// Resolve maps an arbitrary business-type string to a persona group. Empty
// strings and the "Valid" sentinel (a verifier artifact that sometimes lands
// in the business-type column) resolve to General. Resolve is total: it
// never fails and never returns an undefined group.
func Resolve(businessType string) GroupKey {
	bt := strings.ToLower(strings.TrimSpace(businessType))
	if bt == "" || bt == "valid" {
		return General
	}
	for _, kw := range keywords {
		if strings.Contains(bt, kw.substr) {
			return kw.group
		}
	}
	return General
}

// BriefingFor returns the briefing for a group. Unknown keys fall back to
// the General briefing so callers can never inject an empty context.
func BriefingFor(key GroupKey) Briefing {
	if b, ok := briefings[key]; ok {
		return b
	}
	return briefings[General]
}
