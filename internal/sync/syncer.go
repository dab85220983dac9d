package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/catalog"
	"github.com/hyperjump/michibiki/internal/index"
)

const defaultBatchSize = 4000

// ErrPassRunning is returned when a pass is requested while another is still
// applying. Passes mutate the index and never overlap; callers retry later.
var ErrPassRunning = errors.New("a reconciliation pass is already running")

// Result summarizes one completed reconciliation pass.
type Result struct {
	PassID        string        `json:"pass_id"`
	Upserted      int           `json:"upserted"`
	Deleted       int           `json:"deleted"`
	Unchanged     int           `json:"unchanged"`
	FailedSources []string      `json:"failed_sources,omitempty"`
	Duration      time.Duration `json:"-"`
}

// Syncer runs reconciliation passes: load the catalog snapshot, diff it
// against the index baseline, and apply deletes then batched upserts.
type Syncer struct {
	loader    *catalog.Loader
	client    *index.Client
	batchSize int
	logger    *zap.Logger
	sem       chan struct{}
}

// NewSyncer creates a syncer. batchSize bounds how many documents one upsert
// call embeds at once; zero or negative selects the default.
func NewSyncer(loader *catalog.Loader, client *index.Client, batchSize int, logger *zap.Logger) *Syncer {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		loader:    loader,
		client:    client,
		batchSize: batchSize,
		logger:    logger,
		sem:       make(chan struct{}, 1),
	}
}

// Run executes one pass. A snapshot with zero records across all sources
// aborts without touching the index: an empty catalog is far more likely a
// broken data directory than a real state. Sources that failed to load keep
// their indexed courses for this pass.
func (s *Syncer) Run(ctx context.Context) (*Result, error) {
	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	default:
		return nil, ErrPassRunning
	}

	start := time.Now()
	res := &Result{PassID: uuid.New().String()}
	logger := s.logger.With(zap.String("pass_id", res.PassID))

	snapshot, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	res.FailedSources = snapshot.Failed
	if len(snapshot.Records) == 0 {
		logger.Warn("catalog snapshot is empty, aborting pass",
			zap.Strings("failed_sources", snapshot.Failed))
		return nil, fmt.Errorf("catalog snapshot is empty")
	}

	baseline, err := s.client.IDsAndHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	plan := BuildPlan(snapshot.Records, baseline)
	var prefixes []string
	for _, name := range snapshot.Failed {
		prefixes = append(prefixes, catalog.SourcePrefix(name))
	}
	if pruned := plan.PruneDeletes(prefixes); pruned > 0 {
		logger.Warn("keeping courses of unavailable sources",
			zap.Int("kept", pruned),
			zap.Strings("sources", snapshot.Failed))
	}
	res.Unchanged = plan.Unchanged

	logger.Info("reconciliation plan built",
		zap.Int("snapshot", len(snapshot.Records)),
		zap.Int("baseline", len(baseline)),
		zap.Int("upserts", len(plan.Upserts)),
		zap.Int("deletes", len(plan.Deletes)),
		zap.Int("unchanged", plan.Unchanged))

	if plan.Empty() {
		res.Duration = time.Since(start)
		logger.Info("index already up to date", zap.Duration("duration", res.Duration))
		return res, nil
	}

	if err := s.client.Delete(ctx, plan.Deletes); err != nil {
		return nil, fmt.Errorf("apply deletes: %w", err)
	}
	res.Deleted = len(plan.Deletes)

	for off := 0; off < len(plan.Upserts); off += s.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := off + s.batchSize
		if end > len(plan.Upserts) {
			end = len(plan.Upserts)
		}
		if err := s.client.Upsert(ctx, plan.Upserts[off:end]); err != nil {
			return nil, fmt.Errorf("apply upserts: %w", err)
		}
		res.Upserted = end
		logger.Debug("upsert batch applied", zap.Int("applied", end), zap.Int("total", len(plan.Upserts)))
	}

	if err := s.client.Save(); err != nil {
		return nil, fmt.Errorf("persist vector index: %w", err)
	}

	res.Duration = time.Since(start)
	logger.Info("reconciliation pass complete",
		zap.Int("upserted", res.Upserted),
		zap.Int("deleted", res.Deleted),
		zap.Int("unchanged", res.Unchanged),
		zap.Duration("duration", res.Duration))
	return res, nil
}
