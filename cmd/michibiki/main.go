// Package main is the Michibiki CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/michibiki/internal/advisor"
	"github.com/hyperjump/michibiki/internal/catalog"
	"github.com/hyperjump/michibiki/internal/cli"
	"github.com/hyperjump/michibiki/internal/config"
	"github.com/hyperjump/michibiki/internal/embedding"
	"github.com/hyperjump/michibiki/internal/extract"
	"github.com/hyperjump/michibiki/internal/index"
	"github.com/hyperjump/michibiki/internal/models"
	"github.com/hyperjump/michibiki/internal/server"
	"github.com/hyperjump/michibiki/internal/storage"
	coursesync "github.com/hyperjump/michibiki/internal/sync"
	"github.com/hyperjump/michibiki/internal/vector"
	"github.com/hyperjump/michibiki/internal/watcher"
	"github.com/hyperjump/michibiki/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/michibiki/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "michibiki server" from the project dir uses the
// project's config (including debug).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "sync":
		runSync()
	case "advise":
		runAdvise()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("michibiki version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds everything a command needs: the index client with its
// storage and embedder, the catalog loader, and the syncer built on top.
type Components struct {
	Client    *index.Client
	Embedder  embedding.Embedder
	Loader    *catalog.Loader
	Syncer    *coursesync.Syncer
	Extractor extract.Extractor
	Engine    *advisor.Engine
}

func (c *Components) Close() {
	if c.Extractor != nil {
		_ = c.Extractor.Close()
	}
	if c.Client != nil {
		_ = c.Client.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using mock embeddings",
			zap.String("model_path", cfg.Embedding.ModelPath),
			zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	flat, err := vector.NewFlatIndex(cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}

	clientOpts := []index.ClientOption{}
	if debug {
		clientOpts = append(clientOpts, index.WithLogger(logger))
	}
	client, err := index.Open(store, flat, embedder, cfg.Storage.VectorIndexPath, clientOpts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	loader := catalog.NewLoader(cfg.Catalog, logger)
	syncer := coursesync.NewSyncer(loader, client, cfg.Catalog.SyncBatchSize, logger)

	var extractor extract.Extractor
	extractor, err = extract.NewGeminiExtractor(cfg.Extraction, logger)
	if err != nil {
		logger.Warn("skill-gap extraction unavailable", zap.Error(err))
		extractor = extract.Unavailable(err)
	}

	ranker := advisor.NewRanker(client, cfg.Retrieval, logger)
	engine := advisor.NewEngine(extractor, ranker, client, cfg.Retrieval.MaxSkills, logger)

	return &Components{
		Client:    client,
		Embedder:  embedder,
		Loader:    loader,
		Syncer:    syncer,
		Extractor: extractor,
		Engine:    engine,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Catch up with whatever changed while the server was down.
	go func() {
		if _, err := components.Syncer.Run(context.Background()); err != nil {
			logger.Warn("startup sync failed", zap.Error(err))
		}
	}()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Catalog.WatchOrDefault() {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.New(cfg.Catalog.DataDir, func() {
			if _, err := components.Syncer.Run(context.Background()); err != nil {
				logger.Warn("watch-triggered sync failed", zap.Error(err))
			}
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Warn("catalog watcher disabled", zap.String("dir", cfg.Catalog.DataDir), zap.Error(err))
		} else {
			defer watchSvc.Stop()
		}
	}

	srv := server.NewServer(components.Engine, components.Syncer, components.Client, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
	if err := components.Client.Save(); err != nil {
		logger.Warn("vector index save failed", zap.Error(err))
	}
}

func runSync() {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	res, err := components.Syncer.Run(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sync failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Sync complete: %d upserted, %d deleted, %d unchanged (%.2fs)\n",
		res.Upserted, res.Deleted, res.Unchanged, res.Duration.Seconds())
	if len(res.FailedSources) > 0 {
		fmt.Printf("Unavailable sources (courses kept): %s\n", strings.Join(res.FailedSources, ", "))
	}
}

func runAdvise() {
	fs := flag.NewFlagSet("advise", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run locally)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	message := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if message == "" {
		fmt.Fprintln(os.Stderr, "Usage: michibiki advise [flags] <message>")
		os.Exit(1)
	}

	var advice *models.Advice
	if *serverURL != "" {
		res, err := adviseViaHTTP(*serverURL, message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Advise failed: %v\n", err)
			os.Exit(1)
		}
		advice = res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			logger.Fatal("Failed to initialize components", zap.Error(err))
		}
		defer components.Close()
		advice, err = components.Engine.Advise(context.Background(), message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Advise failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := cli.WriteAdvice(os.Stdout, advice, cli.OutputFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func adviseViaHTTP(serverURL, message string) (*models.Advice, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/advise", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var advice models.Advice
	if err := json.NewDecoder(resp.Body).Decode(&advice); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &advice, nil
}

type statusResponse struct {
	Indexed         bool                   `json:"indexed"`
	VectorIndexSize int                    `json:"vector_index_size"`
	DiskUsageBytes  int64                  `json:"disk_usage_bytes,omitempty"`
	Config          map[string]interface{} `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		empty, err := components.Client.Empty(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Indexed:         !empty,
			VectorIndexSize: components.Client.Size(),
		}
		if diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.VectorIndexPath); err == nil {
			status.DiskUsageBytes = diskBytes
		}
	}

	if *outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(status)
		return
	}
	fmt.Printf("Indexed:           %v\n", status.Indexed)
	fmt.Printf("Vector index size: %d\n", status.VectorIndexSize)
	if status.DiskUsageBytes > 0 {
		fmt.Printf("Disk usage:        %d bytes\n", status.DiskUsageBytes)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &status, nil
}

func printUsage() {
	fmt.Println(`michibiki - Course recommendation engine for skill gaps

Usage:
  michibiki server [--config path] [--debug]    Start the HTTP API server
  michibiki sync [--config path] [--debug]      Run one catalog reconciliation pass
  michibiki advise [flags] <message>            Analyze a message and recommend courses
  michibiki status [--server url]               Show index status
  michibiki version                             Print version
  michibiki help                                Show this help

Advise flags:
  --server url     Ask a running server instead of loading the index locally
  --output format  text (default) or json

Examples:
  michibiki sync
  michibiki advise "I'm a data analyst and want to become an ML engineer"
  michibiki advise --server http://localhost:8080 --output json "อยากเป็น project manager"`)
}
