// Package vector provides vector storage and nearest-neighbor search by distance.
package vector

import "context"

// Index defines vector storage and similarity search. Scores are cosine
// distances (1 - inner product over normalized vectors): lower is better.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Remove(ctx context.Context, ids []string) error
	Save(path string) error
	Load(path string) error
	Size() int
	Close() error
}

// Result is a single nearest-neighbor hit.
type Result struct {
	ID       string
	Distance float64
}
