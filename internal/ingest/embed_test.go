package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sararag/sara/internal/model"
)

type stubEmbedder struct {
	calls     int
	failBatch int // 1-based index of the batch to fail, 0 for none
	badCount  bool
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.calls == s.failBatch {
		return nil, fmt.Errorf("stub failure")
	}
	if s.badCount {
		return [][]float32{{1}}, nil
	}
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text))})
	}
	return vectors, nil
}

func (s *stubEmbedder) ModelName() string { return "stub" }

func makeChunks(n int) []model.DocumentChunk {
	chunks := make([]model.DocumentChunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, model.DocumentChunk{
			SourceFilename: "doc.pdf",
			Content:        strings.Repeat("a", i+1),
		})
	}
	return chunks
}

func TestEmbedAll_PositionalAlignment(t *testing.T) {
	chunks := makeChunks(12)
	for _, batchSize := range []int{1, 5, 7, 100} {
		embedded, dropped := EmbedAll(context.Background(), &stubEmbedder{}, chunks, batchSize)
		require.Equal(t, 0, dropped)
		require.Len(t, embedded, len(chunks))
		for i, chunk := range embedded {
			// The stub encodes the content length, so a misaligned
			// vector is detectable.
			require.Equal(t, float32(len(chunks[i].Content)), chunk.Embedding[0],
				"batch size %d, chunk %d", batchSize, i)
			require.Equal(t, chunks[i].Content, chunk.Content)
		}
	}
}

func TestEmbedAll_FailedBatchDropped(t *testing.T) {
	chunks := makeChunks(12)
	embedder := &stubEmbedder{failBatch: 2}
	embedded, dropped := EmbedAll(context.Background(), embedder, chunks, 5)

	// Batches are [0:5], [5:10], [10:12]; the second one fails.
	require.Equal(t, 5, dropped)
	require.Len(t, embedded, 7)
	for _, chunk := range embedded {
		require.NotEmpty(t, chunk.Embedding)
	}
	require.Equal(t, chunks[0].Content, embedded[0].Content)
	require.Equal(t, chunks[10].Content, embedded[5].Content)
}

func TestEmbedAll_CountMismatchDropsBatch(t *testing.T) {
	chunks := makeChunks(4)
	embedded, dropped := EmbedAll(context.Background(), &stubEmbedder{badCount: true}, chunks, 4)
	require.Equal(t, 4, dropped)
	require.Empty(t, embedded)
}

func TestEmbedAll_ZeroBatchSizeUsesDefault(t *testing.T) {
	chunks := makeChunks(11)
	embedder := &stubEmbedder{}
	embedded, dropped := EmbedAll(context.Background(), embedder, chunks, 0)
	require.Equal(t, 0, dropped)
	require.Len(t, embedded, 11)
	require.Equal(t, 3, embedder.calls)
}
