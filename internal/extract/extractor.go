// Package extract turns free-text user messages into structured skill-gap
// analyses via a language model. The rest of the system only consumes the
// Extractor interface and never depends on which model produced the analysis.
package extract

import (
	"context"

	"github.com/hyperjump/michibiki/internal/models"
)

// Extractor produces a skill-gap analysis from a user message.
type Extractor interface {
	Extract(ctx context.Context, message string) (*models.Analysis, error)
	Close() error
}

// Unavailable returns an Extractor whose calls always fail with err. The
// server uses it when no API key is configured, so sync and direct skill
// queries keep working while advise requests explain what is missing.
func Unavailable(err error) Extractor {
	return unavailable{err: err}
}

type unavailable struct{ err error }

func (u unavailable) Extract(context.Context, string) (*models.Analysis, error) {
	return nil, u.err
}

func (u unavailable) Close() error { return nil }
