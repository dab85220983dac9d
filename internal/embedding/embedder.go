// Package embedding provides text embedding via ONNX Runtime and caching.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations return
// L2-normalized vectors so cosine distance is 1 minus the inner product.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
