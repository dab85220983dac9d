// Package models defines core data structures for courses, skill gaps, and recommendations.
package models

import (
	"strings"
	"unicode"
)

// DefaultDuration is substituted when a catalog row carries no usable duration.
const DefaultDuration = "Self-paced"

// CourseRecord is one row of a catalog snapshot as delivered by a source.
// ID is stable across re-scrapes of the same underlying course; content may
// change but identity must not.
type CourseRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	Source      string `json:"source"`
}

// Normalize applies the defaulting rules for optional fields once at ingestion:
// a missing or non-numeric-looking duration becomes DefaultDuration and a
// missing image URL becomes the empty string. Fingerprints are computed after
// normalization, so how a source represents an absent field does not matter.
func (r *CourseRecord) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Level = strings.TrimSpace(r.Level)
	r.Category = strings.TrimSpace(r.Category)
	r.URL = strings.TrimSpace(r.URL)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Duration = normalizeDuration(r.Duration)
}

func normalizeDuration(d string) string {
	d = strings.TrimSpace(d)
	if d == "" || strings.EqualFold(d, "nan") || strings.EqualFold(d, "null") {
		return DefaultDuration
	}
	for _, r := range d {
		if unicode.IsDigit(r) {
			return d
		}
	}
	// Free-form strings without any digit ("varies", "-") carry no duration info.
	return DefaultDuration
}

// CourseDocument is the indexed form of a CourseRecord: a namespaced ID, a
// deterministic composed text body, and a metadata bag carrying every record
// field plus the content hash used as the diff baseline.
type CourseDocument struct {
	ID       string            `json:"id"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata"`
}

// Metadata keys used on CourseDocument and on retrieval hits.
const (
	MetaID          = "id"
	MetaTitle       = "title"
	MetaURL         = "url"
	MetaLevel       = "level"
	MetaCategory    = "category"
	MetaDuration    = "duration"
	MetaImageURL    = "image_url"
	MetaSource      = "source"
	MetaContentHash = "content_hash"
)
