// Package catalog loads course snapshot files from the configured sources.
// Each source is an independent snapshot; a source that fails to load is
// reported by name rather than aborting the pass, so the sync engine can
// protect its courses from deletion.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/models"
)

// Snapshot is the merged result of one load pass across all sources. Records
// keep configured source order so sync passes are deterministic. Failed lists
// the names of sources whose file could not be read.
type Snapshot struct {
	Records []models.CourseRecord
	Failed  []string
}

// Loader reads catalog snapshot files for every configured source.
type Loader struct {
	dataDir string
	sources []config.SourceConfig
	logger  *zap.Logger
}

// NewLoader creates a loader for the configured catalog sources.
func NewLoader(cfg config.CatalogConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dataDir: cfg.DataDir, sources: cfg.Sources, logger: logger}
}

// DocID returns the namespaced document ID for a raw catalog row ID. Raw IDs
// are only unique within their source, so every indexed ID carries the source
// name as a prefix.
func DocID(sourceName, rawID string) string {
	return sourceName + ":" + rawID
}

// SourcePrefix returns the ID prefix all documents of a source share.
func SourcePrefix(sourceName string) string {
	return sourceName + ":"
}

// LoadAll loads every configured source concurrently and merges the results.
// Rows are normalized and get namespaced IDs. Unavailable sources contribute
// zero records and appear in Snapshot.Failed; they never fail the pass.
func (l *Loader) LoadAll(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		records []models.CourseRecord
		err     error
	}
	results := make([]result, len(l.sources))

	var wg sync.WaitGroup
	for i, src := range l.sources {
		wg.Add(1)
		go func(i int, src config.SourceConfig) {
			defer wg.Done()
			records, err := l.loadSource(src)
			results[i] = result{records: records, err: err}
		}(i, src)
	}
	wg.Wait()

	snapshot := &Snapshot{}
	for i, src := range l.sources {
		if results[i].err != nil {
			l.logger.Warn("catalog source unavailable",
				zap.String("source", src.Name),
				zap.Error(results[i].err))
			snapshot.Failed = append(snapshot.Failed, src.Name)
			continue
		}
		l.logger.Debug("catalog source loaded",
			zap.String("source", src.Name),
			zap.Int("records", len(results[i].records)))
		snapshot.Records = append(snapshot.Records, results[i].records...)
	}
	return snapshot, nil
}

func (l *Loader) loadSource(src config.SourceConfig) ([]models.CourseRecord, error) {
	path := src.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.dataDir, path)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", path)
	}
	if err != nil {
		return nil, err
	}
	return l.parseRows(src.Name, rows)
}

// parseRows maps header-addressed rows to course records. Rows without an ID
// have no stable identity and are skipped.
func (l *Loader) parseRows(sourceName string, rows [][]string) ([]models.CourseRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("snapshot for %s has no header row", sourceName)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("snapshot for %s has no id column", sourceName)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.CourseRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rawID := field(row, "id")
		if rawID == "" {
			l.logger.Debug("skipping row without id", zap.String("source", sourceName))
			continue
		}
		rec := models.CourseRecord{
			ID:          DocID(sourceName, rawID),
			Title:       field(row, "title"),
			Description: field(row, "description"),
			Level:       field(row, "level"),
			Category:    field(row, "category"),
			Duration:    field(row, "duration"),
			URL:         field(row, "url"),
			ImageURL:    field(row, "image_url"),
			Source:      field(row, "source"),
		}
		if rec.Source == "" {
			rec.Source = sourceName
		}
		rec.Normalize()
		records = append(records, rec)
	}
	return records, nil
}
