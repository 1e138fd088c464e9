package ingest

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sararag/sara/internal/ai"
	"github.com/sararag/sara/internal/model"
)

const DefaultEmbedBatchSize = 5

// EmbedAll attaches embeddings to chunks in sequential, fixed-size batches.
// Within a batch, vector i belongs to chunk i; the provider contract has no
// other keying, so that alignment is load-bearing.
//
// A failed batch drops all of its chunks: they are excluded from the result
// rather than kept with a null or zero vector. The dropped count is
// returned so the caller can report it.
func EmbedAll(ctx context.Context, embedder ai.IEmbedder, chunks []model.DocumentChunk, batchSize int) ([]model.DocumentChunk, int) {
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}
	logger := logutil.GetLogger(ctx)

	embedded := make([]model.DocumentChunk, 0, len(chunks))
	dropped := 0
	for offset := 0; offset < len(chunks); offset += batchSize {
		end := offset + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[offset:end]
		texts := make([]string, 0, len(batch))
		for _, chunk := range batch {
			texts = append(texts, chunk.Content)
		}

		vectors, err := embedDocuments(ctx, embedder, texts)
		if err != nil {
			logger.Warn("embedding batch failed, dropping its chunks",
				zap.Int("offset", offset),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			dropped += len(batch)
			continue
		}
		for i, chunk := range batch {
			chunk.Embedding = vectors[i]
			embedded = append(embedded, chunk)
		}
	}
	return embedded, dropped
}

func embedDocuments(ctx context.Context, embedder ai.IEmbedder, texts []string) ([][]float32, error) {
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty vector for text %d", i)
		}
	}
	return vectors, nil
}
