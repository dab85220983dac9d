// Package storage defines the persistence interface for indexed course documents.
package storage

import (
	"context"

	"github.com/hyperjump/michibiki/internal/models"
)

// Storage defines course document persistence operations. A document is
// written whole or not at all; there is no partial update path.
type Storage interface {
	UpsertDocument(ctx context.Context, doc *models.CourseDocument) error
	GetDocument(ctx context.Context, id string) (*models.CourseDocument, error)
	DeleteDocuments(ctx context.Context, ids []string) error

	// IDsAndHashes returns the diff baseline: every stored document ID mapped
	// to its content hash.
	IDsAndHashes(ctx context.Context) (map[string]string, error)

	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
