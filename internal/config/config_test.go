package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, cfg map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func minimalConfig() map[string]interface{} {
	return map[string]interface{}{
		"port":      8080,
		"datastore": map[string]interface{}{"kind": "sqlite", "data": map[string]interface{}{"path": "sara.db"}},
		"ai": map[string]interface{}{
			"provider":    "gemini",
			"embed_model": "text-embedding-004",
			"data":        map[string]interface{}{"api_key": "k"},
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig()))
	require.NoError(t, err)
	require.Equal(t, 768, cfg.AI.EmbedDimension)
	require.Equal(t, 1000, cfg.Ingest.ChunkSize)
	require.Equal(t, 100, cfg.Ingest.ChunkOverlap)
	require.Equal(t, 5, cfg.Ingest.EmbedBatchSize)
	require.Equal(t, int64(32<<20), cfg.Ingest.MaxUploadSize)
	require.Equal(t, "info", cfg.LogConfig.Level)
	require.NotEmpty(t, cfg.Ingest.TempDir)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	for _, field := range []string{"port", "datastore", "ai"} {
		cfg := minimalConfig()
		delete(cfg, field)
		_, err := Load(writeConfig(t, cfg))
		require.Error(t, err, "expected error without %s", field)
	}
}

func TestLoad_RejectsOverlapNotSmallerThanChunkSize(t *testing.T) {
	cfg := minimalConfig()
	cfg["ingest"] = map[string]interface{}{"chunk_size": 100, "chunk_overlap": 100}
	_, err := Load(writeConfig(t, cfg))
	require.ErrorContains(t, err, "chunk_overlap")
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
