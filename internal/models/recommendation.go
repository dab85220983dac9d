package models

// RankedCourse is a single recommended course. Score is the raw distance
// returned by the similarity index; lower means more similar. The synthetic
// external-search fallback uses score 0 and level "External Search".
type RankedCourse struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Level    string  `json:"level"`
	Category string  `json:"category,omitempty"`
	Duration string  `json:"duration"`
	ImageURL string  `json:"image_url,omitempty"`
	Source   string  `json:"source,omitempty"`
	Score    float64 `json:"score"`
}

// FallbackLevel marks the synthetic placeholder emitted when no hit passes
// the distance threshold.
const FallbackLevel = "External Search"

// SkillRecommendation pairs one skill gap with at most two suggested courses.
type SkillRecommendation struct {
	SkillGap         string         `json:"skill_gap"`
	SuggestedCourses []RankedCourse `json:"suggested_courses"`
}

// UserIntent is the detected current/target role pair.
type UserIntent struct {
	CurrentRole string `json:"detected_current_role"`
	TargetRole  string `json:"detected_target_role"`
}

// Advice is the full response for one user message: intent, a summary in the
// user's language, and per-skill course recommendations.
type Advice struct {
	UserIntent      UserIntent            `json:"user_intent"`
	AnalysisSummary string                `json:"analysis_summary"`
	Recommendations []SkillRecommendation `json:"recommendations"`
	// Degraded is set when no index has ever been built and the service is
	// answering without course data.
	Degraded bool `json:"degraded,omitempty"`
}
