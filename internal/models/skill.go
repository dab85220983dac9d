package models

// Language is the detected language of a user message.
type Language string

const (
	// LanguageThai is the local language of the catalog's primary audience.
	LanguageThai Language = "th"
	// LanguageEnglish covers everything that is not the local language.
	LanguageEnglish Language = "en"
)

// SkillGap is one missing skill extracted from a user message. QueryEN is
// always present; QueryLocal is set only when the user's language is not
// English and a local-language search term is meaningful.
type SkillGap struct {
	DisplayName string `json:"display_name"`
	QueryEN     string `json:"query_en"`
	QueryLocal  string `json:"query_local,omitempty"`
}

// Analysis is the structured output of the skill-gap extraction boundary.
// Ephemeral, produced per request, never persisted.
type Analysis struct {
	Language    Language   `json:"language"`
	CurrentRole string     `json:"current_role"`
	TargetRole  string     `json:"target_role"`
	Summary     string     `json:"summary"`
	Skills      []SkillGap `json:"missing_skills"`
}
