// Package sync reconciles catalog snapshots with the persistent course index.
// It never rebuilds: each pass computes a fingerprint diff against the stored
// baseline and applies only the inserts, updates, and deletes it implies.
package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hyperjump/michibiki/internal/models"
)

// CanonicalBody composes the text that gets embedded and fingerprinted.
// Field order is fixed so the fingerprint is reproducible across runs.
func CanonicalBody(r *models.CourseRecord) string {
	return fmt.Sprintf("Title: %s\nDescription: %s\nLevel: %s\nCategory: %s",
		r.Title, r.Description, r.Level, r.Category)
}

// Fingerprint returns the content hash of a canonical body: a hex SHA-256
// digest of the UTF-8 text. Deterministic and stable across runs.
func Fingerprint(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// BuildDocument derives the indexed document for a record: canonical body plus
// a metadata bag carrying every record field and the content hash.
func BuildDocument(r *models.CourseRecord) *models.CourseDocument {
	body := CanonicalBody(r)
	return &models.CourseDocument{
		ID:   r.ID,
		Body: body,
		Metadata: map[string]string{
			models.MetaID:          r.ID,
			models.MetaTitle:       r.Title,
			models.MetaURL:         r.URL,
			models.MetaLevel:       r.Level,
			models.MetaCategory:    r.Category,
			models.MetaDuration:    r.Duration,
			models.MetaImageURL:    r.ImageURL,
			models.MetaSource:      r.Source,
			models.MetaContentHash: Fingerprint(body),
		},
	}
}
