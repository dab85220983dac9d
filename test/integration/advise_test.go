// Package integration provides end-to-end tests (requires real storage and indices).
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/michibiki/internal/advisor"
	"github.com/hyperjump/michibiki/internal/catalog"
	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/embedding"
	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
	"github.com/hyperjump/michibiki/internal/storage"
	coursesync "github.com/hyperjump/michibiki/internal/sync"
	"github.com/hyperjump/michibiki/internal/vector"
)

type cannedExtractor struct{ analysis *models.Analysis }

func (c *cannedExtractor) Extract(context.Context, string) (*models.Analysis, error) {
	return c.analysis, nil
}
func (c *cannedExtractor) Close() error { return nil }

// The full pipeline: load a catalog, sync it into the index, then advise a
// user whose missing skill matches the one indexed course.
func TestIntegration_SyncThenAdvise(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		t.Fatal(err)
	}
	snapshot := "id,title,description,level,category,duration,url,image_url,source\n" +
		"c1,Intro to Python,Python programming for beginners,Beginner,Programming,10 hours,https://example.com/c1,,Coursera\n"
	if err := os.WriteFile(filepath.Join(dataDir, "coursera.csv"), []byte(snapshot), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = filepath.Join(dir, "courses.db")
	cfg.Storage.VectorIndexPath = filepath.Join(dir, "courses.vec")
	cfg.Embedding.Dimensions = 16
	cfg.Catalog.DataDir = dataDir
	cfg.Catalog.Sources = []config.SourceConfig{{Name: "coursera", Path: "coursera.csv"}}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	flat, err := vector.NewFlatIndex(cfg.Embedding.Dimensions)
	if err != nil {
		t.Fatal(err)
	}
	client, err := index.Open(store, flat, embedding.NewMockEmbedder(cfg.Embedding.Dimensions), cfg.Storage.VectorIndexPath)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	ctx := context.Background()
	loader := catalog.NewLoader(cfg.Catalog, nil)
	syncer := coursesync.NewSyncer(loader, client, cfg.Catalog.SyncBatchSize, nil)
	res, err := syncer.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Upserted != 1 {
		t.Fatalf("sync result: %+v", res)
	}

	// The mock embedder only matches near-identical text, so the skill query
	// reuses the indexed course's canonical body.
	doc, err := client.GetDocument(ctx, "coursera:c1")
	if err != nil {
		t.Fatal(err)
	}
	skillQuery := doc.Body

	hits, err := client.Query(ctx, skillQuery, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Metadata[models.MetaTitle] != "Intro to Python" {
		t.Fatalf("hits = %+v", hits)
	}
	if hits[0].Score > cfg.Retrieval.MaxDistance {
		t.Fatalf("score %v above threshold %v", hits[0].Score, cfg.Retrieval.MaxDistance)
	}

	extractor := &cannedExtractor{analysis: &models.Analysis{
		Language:    models.LanguageEnglish,
		CurrentRole: "Analyst",
		TargetRole:  "Python Developer",
		Summary:     "Learn Python first.",
		Skills:      []models.SkillGap{{DisplayName: "Python", QueryEN: skillQuery}},
	}}
	ranker := advisor.NewRanker(client, cfg.Retrieval, nil)
	engine := advisor.NewEngine(extractor, ranker, client, cfg.Retrieval.MaxSkills, nil)

	advice, err := engine.Advise(ctx, "I want to become a Python developer")
	if err != nil {
		t.Fatal(err)
	}
	if advice.Degraded {
		t.Fatal("advice degraded after a successful sync")
	}
	if len(advice.Recommendations) != 1 {
		t.Fatalf("recommendations = %+v", advice.Recommendations)
	}
	courses := advice.Recommendations[0].SuggestedCourses
	if len(courses) != 1 || courses[0].Title != "Intro to Python" {
		t.Fatalf("courses = %+v", courses)
	}
	if courses[0].URL != "https://example.com/c1" {
		t.Errorf("url = %q", courses[0].URL)
	}

	// A second sync of the unchanged catalog is a no-op.
	res, err = syncer.Run(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Upserted != 0 || res.Deleted != 0 || res.Unchanged != 1 {
		t.Errorf("second pass not a no-op: %+v", res)
	}
}
