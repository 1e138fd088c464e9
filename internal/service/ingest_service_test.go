package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sararag/sara/internal/config"
	"github.com/sararag/sara/internal/model"
	appErr "github.com/sararag/sara/internal/pkg/errors"
)

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		ChunkSize:      200,
		ChunkOverlap:   20,
		EmbedBatchSize: 5,
	}
}

func loadableChunk() model.DocumentChunk {
	return model.DocumentChunk{
		SourceFilename: "doc.pdf",
		Content:        "some content",
		Embedding:      []float32{0.1, 0.2},
	}
}

func TestLoadChunks_EmptyInput(t *testing.T) {
	svc := NewIngestService(&fakeStore{}, nil, 2, testIngestConfig())
	err := svc.LoadChunks(context.Background(), nil, LoadModeAdd)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestLoadChunks_ValidatesFields(t *testing.T) {
	svc := NewIngestService(&fakeStore{}, nil, 2, testIngestConfig())

	chunk := loadableChunk()
	chunk.SourceFilename = ""
	err := svc.LoadChunks(context.Background(), []model.DocumentChunk{chunk}, LoadModeAdd)
	require.ErrorIs(t, err, appErr.ErrInvalid)

	chunk = loadableChunk()
	chunk.Embedding = []float32{0.1, 0.2, 0.3}
	err = svc.LoadChunks(context.Background(), []model.DocumentChunk{chunk}, LoadModeAdd)
	require.ErrorIs(t, err, appErr.ErrInvalid)
	require.ErrorContains(t, err, "dimensions")
}

func TestLoadChunks_ModeRouting(t *testing.T) {
	store := &fakeStore{}
	svc := NewIngestService(store, nil, 2, testIngestConfig())
	chunks := []model.DocumentChunk{loadableChunk()}

	require.NoError(t, svc.LoadChunks(context.Background(), chunks, LoadModeAdd))
	require.Len(t, store.added, 1)
	require.Empty(t, store.initCalls)

	require.NoError(t, svc.LoadChunks(context.Background(), chunks, LoadModeInitialize))
	require.Len(t, store.initCalls, 1)

	// Empty mode defaults to add.
	require.NoError(t, svc.LoadChunks(context.Background(), chunks, ""))
	require.Len(t, store.added, 2)

	err := svc.LoadChunks(context.Background(), chunks, "replace")
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func writeTestMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessFiles_MarkdownPipeline(t *testing.T) {
	store := &fakeStore{}
	svc := NewIngestService(store, &fakeEmbedder{}, 2, testIngestConfig())
	path := writeTestMarkdown(t, "guide.md", "# Operator Guide\n\nHow to run the retrieval service in production.\n")

	reports := svc.ProcessFiles(context.Background(), []string{path})
	require.Len(t, reports, 1)
	require.Equal(t, model.FileStatusOK, reports[0].Status)
	require.Equal(t, model.DocTypePaper, reports[0].DocType)
	require.Equal(t, "guide.md", reports[0].Filename)
	require.Greater(t, reports[0].Chunks, 0)

	require.Len(t, store.added, 1)
	for _, chunk := range store.added[0] {
		require.Equal(t, "guide.md", chunk.SourceFilename)
		require.Equal(t, "Operator Guide", chunk.Title)
		require.NotEmpty(t, chunk.Embedding)
	}
}

func TestProcessFiles_FailureDoesNotAbortBatch(t *testing.T) {
	store := &fakeStore{}
	svc := NewIngestService(store, &fakeEmbedder{}, 2, testIngestConfig())
	good := writeTestMarkdown(t, "good.md", "# Good\n\nUsable content here.\n")
	bad := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("plain text"), 0o644))

	reports := svc.ProcessFiles(context.Background(), []string{bad, good})
	require.Len(t, reports, 2)
	require.Equal(t, model.FileStatusFailed, reports[0].Status)
	require.Contains(t, reports[0].Error, "unsupported file type")
	require.Equal(t, model.FileStatusOK, reports[1].Status)
	require.Len(t, store.added, 1)
}

func TestProcessFiles_StorageFailure(t *testing.T) {
	store := &fakeStore{addErr: os.ErrPermission}
	svc := NewIngestService(store, &fakeEmbedder{}, 2, testIngestConfig())
	path := writeTestMarkdown(t, "doc.md", "# Doc\n\nContent to persist.\n")

	reports := svc.ProcessFiles(context.Background(), []string{path})
	require.Len(t, reports, 1)
	require.Equal(t, model.FileStatusFailed, reports[0].Status)
	require.Equal(t, "storage failure", reports[0].Error)
}

func TestBuildChunks_DoesNotPersist(t *testing.T) {
	store := &fakeStore{}
	svc := NewIngestService(store, &fakeEmbedder{}, 2, testIngestConfig())
	path := writeTestMarkdown(t, "doc.md", "# Doc\n\nSome content worth chunking.\n")

	chunks, report := svc.BuildChunks(context.Background(), path)
	require.Equal(t, model.FileStatusOK, report.Status)
	require.NotEmpty(t, chunks)
	require.Empty(t, store.added)
}
