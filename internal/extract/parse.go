package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperjump/michibiki/internal/models"
	"github.com/hyperjump/michibiki/pkg/utils"
)

// maxSkillsPerAnalysis bounds how many extracted skills survive parsing,
// whatever the model returns.
const maxSkillsPerAnalysis = 3

// ParseAnalysis parses a model response into an Analysis. Models wrap JSON in
// markdown code fences often enough that stripping them is part of the
// contract. Skills without an English query cannot be searched and are dropped;
// an analysis with no usable skill at all is an error.
func ParseAnalysis(raw string) (*models.Analysis, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var wire struct {
		Language    string `json:"language"`
		CurrentRole string `json:"current_role"`
		TargetRole  string `json:"target_role"`
		Summary     string `json:"summary"`
		Skills      []struct {
			DisplayName string `json:"display_name"`
			QueryEN     string `json:"query_en"`
			QueryLocal  string `json:"query_local"`
		} `json:"missing_skills"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("parse analysis: %w (raw: %s)", err, utils.Truncate(raw, 200))
	}

	analysis := &models.Analysis{
		Language:    parseLanguage(wire.Language),
		CurrentRole: strings.TrimSpace(wire.CurrentRole),
		TargetRole:  strings.TrimSpace(wire.TargetRole),
		Summary:     strings.TrimSpace(wire.Summary),
	}
	if analysis.CurrentRole == "" {
		analysis.CurrentRole = "General Beginner"
	}

	for _, s := range wire.Skills {
		queryEN := strings.TrimSpace(s.QueryEN)
		if queryEN == "" {
			continue
		}
		gap := models.SkillGap{
			DisplayName: strings.TrimSpace(s.DisplayName),
			QueryEN:     queryEN,
		}
		if gap.DisplayName == "" {
			gap.DisplayName = queryEN
		}
		if analysis.Language == models.LanguageThai {
			gap.QueryLocal = strings.TrimSpace(s.QueryLocal)
		}
		analysis.Skills = append(analysis.Skills, gap)
		if len(analysis.Skills) == maxSkillsPerAnalysis {
			break
		}
	}
	if len(analysis.Skills) == 0 {
		return nil, fmt.Errorf("parse analysis: no usable skills in response")
	}
	return analysis, nil
}

func parseLanguage(s string) models.Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "th", "tha", "thai", "local":
		return models.LanguageThai
	default:
		return models.LanguageEnglish
	}
}
