package datastore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sararag/sara/internal/config"
	"github.com/sararag/sara/internal/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := New(config.DatastoreConfig{
		Kind: "sqlite",
		Data: map[string]interface{}{"path": filepath.Join(t.TempDir(), "sara.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testChunk(filename, content string, embedding []float32) model.DocumentChunk {
	return model.DocumentChunk{
		SourceFilename:  filename,
		Title:           "Test Title",
		Authors:         "Test Author",
		PublicationDate: "2024-01-01",
		Content:         content,
		Embedding:       embedding,
	}
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(config.DatastoreConfig{Kind: "bogus"})
	require.ErrorContains(t, err, "unsupported datastore kind")
}

func TestSQLiteStore_SearchOrdersBySimilarity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []model.DocumentChunk{
		testChunk("a.pdf", "far away", []float32{0, 1, 0}),
		testChunk("b.pdf", "exact match", []float32{1, 0, 0}),
		testChunk("c.pdf", "halfway there", []float32{1, 1, 0}),
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "exact match", results[0].Content)
	require.Equal(t, "halfway there", results[1].Content)
	require.Equal(t, "far away", results[2].Content)
	require.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	require.InDelta(t, 0.7071, results[1].Similarity, 1e-3)
	require.InDelta(t, 0.0, results[2].Similarity, 1e-6)
	for _, result := range results {
		require.Nil(t, result.Embedding)
	}
}

func TestSQLiteStore_SearchTopKLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []model.DocumentChunk{
		testChunk("a.pdf", "one", []float32{1, 0}),
		testChunk("a.pdf", "two", []float32{0, 1}),
	}))

	results, err := store.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "one", results[0].Content)

	// topK larger than the table returns everything.
	results, err = store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSQLiteStore_SearchEmptyTable(t *testing.T) {
	store := newTestStore(t)
	results, err := store.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSQLiteStore_SearchRejectsNonPositiveTopK(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Search(context.Background(), []float32{1, 0}, 0)
	require.Error(t, err)
}

func TestSQLiteStore_InitializeReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, []model.DocumentChunk{
		testChunk("old.pdf", "old content", []float32{1, 0}),
	}))
	require.NoError(t, store.Initialize(ctx, []model.DocumentChunk{
		testChunk("new.pdf", "new content", []float32{1, 0}),
	}))

	results, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "new.pdf", results[0].SourceFilename)
}

func TestSQLiteStore_RejectsInvalidChunks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Add(ctx, []model.DocumentChunk{
		testChunk("a.pdf", "", []float32{1, 0}),
	})
	require.ErrorContains(t, err, "empty content")

	err = store.Add(ctx, []model.DocumentChunk{
		testChunk("a.pdf", "content", nil),
	})
	require.ErrorContains(t, err, "no embedding")
}
