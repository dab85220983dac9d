package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_fullConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./db/courses.db
  vector_index_path: ./indices/courses.vec
embedding:
  dimensions: 128
  max_tokens: 64
catalog:
  data_dir: ./catalogs
  sync_batch_size: 100
  watch: false
  sources:
    - name: coursera
      path: coursera.csv
extraction:
  model: gemini-2.5-flash
  api_key_env: GOOGLE_API_KEY
retrieval:
  max_distance: 0.3
  query_k: 7
  local_sources: [FutureSkill]
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "db/courses.db") {
		t.Errorf("database_path not expanded relative to config dir: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Catalog.DataDir != filepath.Join(dir, "catalogs") {
		t.Errorf("data_dir not expanded: %s", cfg.Catalog.DataDir)
	}
	if cfg.Catalog.WatchOrDefault() {
		t.Error("watch should be false when set to false")
	}
	if cfg.Retrieval.MaxDistance != 0.3 {
		t.Errorf("max_distance = %v, want 0.3", cfg.Retrieval.MaxDistance)
	}
	if cfg.Retrieval.QueryK != 7 {
		t.Errorf("query_k = %v, want 7", cfg.Retrieval.QueryK)
	}
	if len(cfg.Retrieval.LocalSources) != 1 || cfg.Retrieval.LocalSources[0] != "FutureSkill" {
		t.Errorf("local_sources = %v", cfg.Retrieval.LocalSources)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("dimensions default = %d", cfg.Embedding.Dimensions)
	}
	if cfg.Retrieval.MaxDistance != 0.65 {
		t.Errorf("max_distance default = %v", cfg.Retrieval.MaxDistance)
	}
	if cfg.Retrieval.MaxSkills != 5 || cfg.Retrieval.MaxCoursesPerSkill != 2 {
		t.Errorf("caps: %d skills, %d courses", cfg.Retrieval.MaxSkills, cfg.Retrieval.MaxCoursesPerSkill)
	}
	if cfg.Catalog.SyncBatchSize != 4000 {
		t.Errorf("sync_batch_size default = %d", cfg.Catalog.SyncBatchSize)
	}
	if !cfg.Catalog.WatchOrDefault() {
		t.Error("watch should default to true")
	}
	if len(cfg.Retrieval.LocalSources) != 2 {
		t.Errorf("local_sources default = %v", cfg.Retrieval.LocalSources)
	}
	if len(cfg.Catalog.Sources) == 0 {
		t.Error("catalog sources default should not be empty")
	}
}

func TestWatchOrDefault_explicitTrue(t *testing.T) {
	v := true
	c := CatalogConfig{Watch: &v}
	if !c.WatchOrDefault() {
		t.Error("explicit true should stay true")
	}
}
