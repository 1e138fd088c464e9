package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int               `json:"port"`
	AuthSecret  string            `json:"auth_secret"`
	LogConfig   logger.LogConfig  `json:"log_config"`
	Datastore   DatastoreConfig   `json:"datastore"`
	AI          AIConfig          `json:"ai"`
	ObjectStore ObjectStoreConfig `json:"object_store"`
	Ingest      IngestConfig      `json:"ingest"`
}

// DatastoreConfig selects the chunk storage backend. Data carries
// backend-specific settings decoded by the backend factory.
type DatastoreConfig struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider       string      `json:"provider"`
	EmbedModel     string      `json:"embed_model"`
	GenerateModel  string      `json:"generate_model"`
	EmbedDimension int         `json:"embed_dimension"`
	Timeout        int         `json:"timeout"`
	Data           interface{} `json:"data"`
}

type ObjectStoreConfig struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
}

type IngestConfig struct {
	ChunkSize      int    `json:"chunk_size"`
	ChunkOverlap   int    `json:"chunk_overlap"`
	EmbedBatchSize int    `json:"embed_batch_size"`
	MaxUploadSize  int64  `json:"max_upload_size"`
	TempDir        string `json:"temp_dir"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Datastore.Kind == "" {
		return nil, fmt.Errorf("datastore.kind is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.AI.EmbedDimension == 0 {
		cfg.AI.EmbedDimension = 768
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 1000
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 100
	}
	if cfg.Ingest.ChunkOverlap >= cfg.Ingest.ChunkSize {
		return nil, fmt.Errorf("ingest.chunk_overlap must be smaller than ingest.chunk_size")
	}
	if cfg.Ingest.EmbedBatchSize == 0 {
		cfg.Ingest.EmbedBatchSize = 5
	}
	if cfg.Ingest.MaxUploadSize == 0 {
		cfg.Ingest.MaxUploadSize = 32 << 20
	}
	if cfg.Ingest.TempDir == "" {
		cfg.Ingest.TempDir = os.TempDir()
	}
	return &cfg, nil
}
