package models

import "strings"

type Verdict string

const (
	VerdictRecommended Verdict = "Recomendado"
	VerdictModerate    Verdict = "Consumir com Moderação"
	VerdictAvoid       Verdict = "Evitar"
)

type LabelAnalysis struct {
	Text    string  `json:"text"`
	Verdict Verdict `json:"verdict,omitempty"`
}

// ParseVerdict finds the verdict category named in an analysis text.
// Returns "" when none of the three categories appears.
func ParseVerdict(text string) Verdict {
	lower := strings.ToLower(text)
	// Precedence: moderation, then avoid, then recommended.
	for _, v := range []Verdict{VerdictModerate, VerdictAvoid, VerdictRecommended} {
		if strings.Contains(lower, strings.ToLower(string(v))) {
			return v
		}
	}
	return ""
}
