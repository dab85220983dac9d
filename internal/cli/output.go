// Package cli provides CLI output utilities for Michibiki.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/michibiki/internal/models"
)

// OutputFormat is the format for advice output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAdvice writes an advice response to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAdvice(w io.Writer, advice *models.Advice, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(advice)
	default:
		writeAdviceText(w, advice)
		return nil
	}
}

func writeAdviceText(w io.Writer, advice *models.Advice) {
	fmt.Fprintf(w, "Current role: %s\n", advice.UserIntent.CurrentRole)
	fmt.Fprintf(w, "Target role:  %s\n", advice.UserIntent.TargetRole)
	if advice.AnalysisSummary != "" {
		fmt.Fprintf(w, "\n%s\n", advice.AnalysisSummary)
	}
	if advice.Degraded {
		fmt.Fprintln(w, "\n(no course index available; run \"michibiki sync\" first)")
		return
	}
	for _, rec := range advice.Recommendations {
		fmt.Fprintf(w, "\n%s\n", rec.SkillGap)
		for _, c := range rec.SuggestedCourses {
			fmt.Fprintf(w, "  - %s [%s, %s]\n", c.Title, c.Level, c.Duration)
			if c.Source != "" {
				fmt.Fprintf(w, "    %s | score %.4f\n", c.Source, c.Score)
			}
			fmt.Fprintf(w, "    %s\n", c.URL)
		}
	}
}
