package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sararag/sara/internal/config"
	"github.com/sararag/sara/internal/model"
)

// Store is the chunk storage capability. Initialize is a destructive bulk
// replace and must not run concurrently with Add or Search against the same
// table; Add is append-only and safe under concurrent callers.
type Store interface {
	Initialize(ctx context.Context, chunks []model.DocumentChunk) error
	Add(ctx context.Context, chunks []model.DocumentChunk) error
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]model.SearchResult, error)
	Close() error
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(kind string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(kind))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// New builds the backend selected by cfg.Kind. An unknown kind is a
// configuration error, never a silent fallback.
func New(cfg config.DatastoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if key == "" {
		return nil, fmt.Errorf("datastore.kind is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported datastore kind: %s", cfg.Kind)
	}
	return factory(cfg.Data)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("datastore config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode datastore config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode datastore config: %w", err)
	}
	return nil
}

func validateChunks(chunks []model.DocumentChunk) error {
	for i, chunk := range chunks {
		if chunk.Content == "" {
			return fmt.Errorf("chunk %d has empty content", i)
		}
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %d has no embedding", i)
		}
	}
	return nil
}
