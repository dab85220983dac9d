// Package index provides the persistent similarity-index client. It owns the
// consistency contract between the course document store, the vector index,
// and the embedder: a document is upserted with fully recomputed vector and
// metadata or left untouched, never partially written.
package index

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/embedding"
	"github.com/hyperjump/michibiki/internal/models"
	"github.com/hyperjump/michibiki/internal/storage"
	"github.com/hyperjump/michibiki/internal/vector"
)

// ErrNoIndex indicates that no index has ever been built. Callers detect this
// once at startup and serve degraded responses instead of failing every request.
var ErrNoIndex = errors.New("no course index has been built yet")

// Hit is one similarity query result. Score is a distance: lower is better.
type Hit struct {
	Metadata map[string]string
	Body     string
	Score    float64
}

// Querier is the read side of the index, as consumed by the retrieval engine.
type Querier interface {
	Query(ctx context.Context, text string, k int) ([]Hit, error)
}

// Client composes document storage, the vector index, and the embedder behind
// the index mutation and query boundaries. It has an explicit lifecycle: Open
// at process start, Save/Close at shutdown.
type Client struct {
	store     storage.Storage
	vectors   vector.Index
	embedder  embedding.Embedder
	indexPath string
	logger    *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// Open creates a client and loads the persisted vector index from indexPath
// when the file exists.
func Open(
	store storage.Storage,
	vectors vector.Index,
	embedder embedding.Embedder,
	indexPath string,
	opts ...ClientOption,
) (*Client, error) {
	c := &Client{
		store:     store,
		vectors:   vectors,
		embedder:  embedder,
		indexPath: indexPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := vectors.Load(indexPath); err != nil {
		return nil, fmt.Errorf("load vector index: %w", err)
	}
	return c, nil
}

// Upsert embeds each document body and writes vector and row. The caller
// controls batch sizes; a single document is never split across batches.
func (c *Client) Upsert(ctx context.Context, docs []*models.CourseDocument) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	ids := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Body
		ids[i] = doc.ID
	}
	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if err := c.vectors.Add(ctx, ids, vectors); err != nil {
		return fmt.Errorf("index vectors: %w", err)
	}
	for _, doc := range docs {
		if err := c.store.UpsertDocument(ctx, doc); err != nil {
			return fmt.Errorf("store document %s: %w", doc.ID, err)
		}
	}
	if c.logger != nil {
		c.logger.Debug("index upsert applied", zap.Int("documents", len(docs)))
	}
	return nil
}

// Delete removes the documents and their vectors.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.vectors.Remove(ctx, ids); err != nil {
		return fmt.Errorf("remove vectors: %w", err)
	}
	if err := c.store.DeleteDocuments(ctx, ids); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug("index delete applied", zap.Int("documents", len(ids)))
	}
	return nil
}

// GetDocument returns one stored document by its namespaced ID.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.CourseDocument, error) {
	return c.store.GetDocument(ctx, id)
}

// IDsAndHashes returns the diff baseline for a sync pass.
func (c *Client) IDsAndHashes(ctx context.Context) (map[string]string, error) {
	return c.store.IDsAndHashes(ctx)
}

// Query embeds text and returns up to k nearest documents ascending by
// distance. Vectors whose document row has gone missing are skipped.
func (c *Client) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	queryVec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := c.vectors.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		doc, err := c.store.GetDocument(ctx, r.ID)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("vector without document row", zap.String("id", r.ID), zap.Error(err))
			}
			continue
		}
		hits = append(hits, Hit{Metadata: doc.Metadata, Body: doc.Body, Score: r.Distance})
	}
	return hits, nil
}

// Empty reports whether no index has ever been built (zero stored documents).
func (c *Client) Empty(ctx context.Context) (bool, error) {
	n, err := c.store.CountDocuments(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Size returns the number of vectors currently indexed.
func (c *Client) Size() int {
	return c.vectors.Size()
}

// Save persists the vector index to the configured path.
func (c *Client) Save() error {
	if c.indexPath == "" {
		return nil
	}
	return c.vectors.Save(c.indexPath)
}

// Close saves the vector index and releases all resources.
func (c *Client) Close() error {
	err := c.Save()
	if cerr := c.vectors.Close(); err == nil {
		err = cerr
	}
	if cerr := c.store.Close(); err == nil {
		err = cerr
	}
	return err
}
