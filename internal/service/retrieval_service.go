package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sararag/sara/internal/ai"
	"github.com/sararag/sara/internal/datastore"
	"github.com/sararag/sara/internal/model"
	appErr "github.com/sararag/sara/internal/pkg/errors"
)

const DefaultTopK = 3

// NoResultsAnswer is returned when search finds nothing; the generator is
// not invoked in that case.
const NoResultsAnswer = "Sorry, I could not find relevant information for your question."

// notFoundPhrase is what the generator is told to emit when the retrieved
// context does not contain the answer.
const notFoundPhrase = "I could not find the answer in the provided documents."

const contextSeparator = "\n---\n"

type RetrievalService struct {
	store     datastore.Store
	embedder  ai.IEmbedder
	generator ai.IGenerator
	cache     *expirable.LRU[string, []float32]
	timeout   time.Duration
}

// NewRetrievalService wires the query path. generator may be nil, in which
// case only raw-results mode is available.
func NewRetrievalService(store datastore.Store, embedder ai.IEmbedder, generator ai.IGenerator, timeout time.Duration) *RetrievalService {
	cache := expirable.NewLRU[string, []float32](10000, nil, 2*time.Hour)
	return &RetrievalService{
		store:     store,
		embedder:  embedder,
		generator: generator,
		cache:     cache,
		timeout:   timeout,
	}
}

// Search embeds the query and returns the topK most similar stored chunks.
func (s *RetrievalService) Search(ctx context.Context, query string, topK int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalid
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query), zap.Int("top_k", topK))

	queryEmbedding, err := s.embedQuery(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, fmt.Errorf("%w: embed query: %v", appErr.ErrEmbedding, err)
	}
	results, err := s.store.Search(ctx, queryEmbedding, topK)
	if err != nil {
		logger.Error("search failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	logger.Debug("search completed", zap.Int("results", len(results)))
	return results, nil
}

// Answer runs generative mode: search, then ask the generator to answer
// strictly from the retrieved context.
func (s *RetrievalService) Answer(ctx context.Context, query string, topK int) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%w: generator not configured", appErr.ErrConfig)
	}
	results, err := s.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return NoResultsAnswer, nil
	}

	contents := make([]string, 0, len(results))
	for _, result := range results {
		contents = append(contents, result.Content)
	}
	prompt := buildAnswerPrompt(query, strings.Join(contents, contextSeparator))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logutil.GetLogger(ctx).Error("generation failed", zap.Error(err))
		return "", fmt.Errorf("%w: generate answer: %v", appErr.ErrInternal, err)
	}
	return answer, nil
}

func (s *RetrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := cacheKey(query)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, embedding)
	return embedding, nil
}

func buildAnswerPrompt(query, context string) string {
	return fmt.Sprintf(`You are a research assistant.
Answer the question using ONLY the context below.
- Do not use outside knowledge.
- If the context does not contain the answer, reply exactly: %s

CONTEXT:
%s

QUESTION:
%s`, notFoundPhrase, context, query)
}

func cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:])
}
