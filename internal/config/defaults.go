package config

// Default retrieval constants. MaxDistance 0.65 is tuned to the multilingual
// MiniLM embedding space (cosine distance) and must be re-derived whenever the
// embedding model changes.
const (
	defaultMaxDistance        = 0.65
	defaultQueryK             = 5
	defaultMaxSkills          = 5
	defaultMaxCoursesPerSkill = 2
	defaultSyncBatchSize      = 4000
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/michibiki/data/db/courses.db"
	}
	if cfg.Storage.VectorIndexPath == "" {
		cfg.Storage.VectorIndexPath = "/usr/local/var/michibiki/data/indices/courses.vec"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/michibiki/data/models/paraphrase-multilingual-MiniLM-L12-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Catalog.DataDir == "" {
		cfg.Catalog.DataDir = "/usr/local/var/michibiki/data/catalogs"
	}
	if cfg.Catalog.SyncBatchSize == 0 {
		cfg.Catalog.SyncBatchSize = defaultSyncBatchSize
	}
	if cfg.Catalog.Sources == nil {
		cfg.Catalog.Sources = []SourceConfig{
			{Name: "coursera", Path: "coursera_dataset.csv"},
			{Name: "futureskill", Path: "futureskill_dataset.csv"},
			{Name: "skilllane", Path: "skilllane_dataset.csv"},
			{Name: "datacamp", Path: "datacamp_dataset.csv"},
			{Name: "khan", Path: "khan_dataset.csv"},
		}
	}
	if cfg.Extraction.Model == "" {
		cfg.Extraction.Model = "gemini-2.5-flash"
	}
	if cfg.Extraction.APIKeyEnv == "" {
		cfg.Extraction.APIKeyEnv = "GOOGLE_API_KEY"
	}
	if cfg.Extraction.MaxTokens == 0 {
		cfg.Extraction.MaxTokens = 2048
	}
	if cfg.Retrieval.MaxDistance == 0 {
		cfg.Retrieval.MaxDistance = defaultMaxDistance
	}
	if cfg.Retrieval.QueryK == 0 {
		cfg.Retrieval.QueryK = defaultQueryK
	}
	if cfg.Retrieval.MaxSkills == 0 {
		cfg.Retrieval.MaxSkills = defaultMaxSkills
	}
	if cfg.Retrieval.MaxCoursesPerSkill == 0 {
		cfg.Retrieval.MaxCoursesPerSkill = defaultMaxCoursesPerSkill
	}
	if cfg.Retrieval.LocalSources == nil {
		cfg.Retrieval.LocalSources = []string{"FutureSkill", "SkillLane"}
	}
	if cfg.Retrieval.FallbackURLPrefix == "" {
		cfg.Retrieval.FallbackURLPrefix = "https://www.coursera.org/search?query="
	}
}
