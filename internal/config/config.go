// Package config provides configuration loading and structs for the Michibiki server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the course database and the vector index file.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
}

// EmbeddingConfig holds ONNX embedder settings.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SourceConfig is one catalog source: a name used for ID namespacing and a
// snapshot file (.csv or .xlsx) relative to the catalog data directory.
type SourceConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// CatalogConfig holds catalog sources and sync settings.
type CatalogConfig struct {
	DataDir       string         `yaml:"data_dir"`
	Sources       []SourceConfig `yaml:"sources"`
	SyncBatchSize int            `yaml:"sync_batch_size"`
	Watch         *bool          `yaml:"watch"`
}

// WatchOrDefault returns whether the data directory should be watched for
// changed snapshots; defaults to true when unset.
func (c *CatalogConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// ExtractionConfig holds skill-gap extraction (LLM) settings. The API key is
// read from the environment variable named by APIKeyEnv, never from the file.
type ExtractionConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int    `yaml:"max_tokens"`
}

// RetrievalConfig holds the tuned retrieval constants. MaxDistance is specific
// to the embedding space in use and must be re-derived whenever the embedding
// model changes.
type RetrievalConfig struct {
	MaxDistance        float64  `yaml:"max_distance"`
	QueryK             int      `yaml:"query_k"`
	MaxSkills          int      `yaml:"max_skills"`
	MaxCoursesPerSkill int      `yaml:"max_courses_per_skill"`
	LocalSources       []string `yaml:"local_sources"`
	FallbackURLPrefix  string   `yaml:"fallback_url_prefix"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Catalog.DataDir = expandPath(cfg.Catalog.DataDir, configDir)

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
