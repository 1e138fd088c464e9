package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sararag/sara/internal/ai"
	"github.com/sararag/sara/internal/config"
	"github.com/sararag/sara/internal/datastore"
	"github.com/sararag/sara/internal/ingest"
	"github.com/sararag/sara/internal/model"
	appErr "github.com/sararag/sara/internal/pkg/errors"
)

const (
	LoadModeInitialize = "initialize"
	LoadModeAdd        = "add"
)

type IngestService struct {
	store     datastore.Store
	embedder  ai.IEmbedder
	dimension int
	cfg       config.IngestConfig
}

func NewIngestService(store datastore.Store, embedder ai.IEmbedder, dimension int, cfg config.IngestConfig) *IngestService {
	return &IngestService{store: store, embedder: embedder, dimension: dimension, cfg: cfg}
}

// ProcessFiles runs the full ingestion pipeline for each file on disk:
// parse, classify, extract metadata, chunk, embed, persist. A failing file
// is reported and skipped; it never aborts the batch.
func (s *IngestService) ProcessFiles(ctx context.Context, paths []string) []model.FileReport {
	reports := make([]model.FileReport, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, s.processFile(ctx, path))
	}
	return reports
}

func (s *IngestService) processFile(ctx context.Context, path string) model.FileReport {
	chunks, report := s.BuildChunks(ctx, path)
	if report.Status == model.FileStatusFailed {
		return report
	}
	if err := s.store.Add(ctx, chunks); err != nil {
		logutil.GetLogger(ctx).Error("failed to persist chunks",
			zap.String("filename", report.Filename), zap.Error(err))
		report.Status = model.FileStatusFailed
		report.Chunks = 0
		report.Error = "storage failure"
	}
	return report
}

// BuildChunks runs the pipeline up to (and including) embedding, without
// persisting. The returned report carries the outcome either way.
func (s *IngestService) BuildChunks(ctx context.Context, path string) ([]model.DocumentChunk, model.FileReport) {
	filename := filepath.Base(path)
	logger := logutil.GetLogger(ctx).With(zap.String("filename", filename))
	report := model.FileReport{Filename: filename}

	doc, err := s.readDocument(path)
	if err != nil {
		logger.Error("failed to read document", zap.Error(err))
		report.Status = model.FileStatusFailed
		report.Error = err.Error()
		return nil, report
	}

	docType := ingest.Classify(doc.FirstPage)
	report.DocType = docType
	var meta model.DocumentMetadata
	switch docType {
	case model.DocTypePatent:
		patent := ingest.ExtractPatentMetadata(doc.FirstPage)
		meta = model.DocumentMetadata{
			Title:           patent.Title,
			Authors:         patent.Authors(),
			PublicationDate: patent.PublicationDate,
		}
		if meta.Title == model.MetaNotFound {
			meta.Title = strings.TrimSuffix(filename, filepath.Ext(filename))
		}
	default:
		meta = ingest.ExtractPaperMetadata(doc.Props, filename)
	}

	texts := ingest.Split(doc.FullText, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	chunks := make([]model.DocumentChunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, model.DocumentChunk{
			SourceFilename:  filename,
			Title:           meta.Title,
			Authors:         meta.Authors,
			PublicationDate: meta.PublicationDate,
			Content:         text,
		})
	}
	if len(chunks) == 0 {
		report.Status = model.FileStatusFailed
		report.Error = "document produced no chunks"
		return nil, report
	}

	embedded, dropped := ingest.EmbedAll(ctx, s.embedder, chunks, s.cfg.EmbedBatchSize)
	report.DroppedChunks = dropped
	if len(embedded) == 0 {
		report.Status = model.FileStatusFailed
		report.Error = "embedding failed for every chunk"
		return nil, report
	}

	report.Status = model.FileStatusOK
	report.Chunks = len(embedded)
	logger.Info("document processed",
		zap.String("doc_type", string(docType)),
		zap.Int("chunks", len(embedded)),
		zap.Int("dropped", dropped),
	)
	return embedded, report
}

func (s *IngestService) readDocument(path string) (*ingest.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ingest.ReadPDF(path)
	case ".md", ".markdown":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read markdown: %w", err)
		}
		doc := ingest.ReadMarkdown(filepath.Base(path), data)
		if strings.TrimSpace(doc.FullText) == "" {
			return nil, fmt.Errorf("no text extracted from markdown")
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// LoadChunks bulk-writes pre-embedded chunks, either appending or replacing
// the whole table. Every chunk must carry an embedding of the configured
// dimensionality.
func (s *IngestService) LoadChunks(ctx context.Context, chunks []model.DocumentChunk, mode string) error {
	if len(chunks) == 0 {
		return appErr.ErrInvalid
	}
	for i, chunk := range chunks {
		if chunk.SourceFilename == "" || chunk.Content == "" {
			return fmt.Errorf("%w: chunk %d missing source_filename or content", appErr.ErrInvalid, i)
		}
		if s.dimension > 0 && len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("%w: chunk %d embedding has %d dimensions, want %d", appErr.ErrInvalid, i, len(chunk.Embedding), s.dimension)
		}
	}
	switch mode {
	case LoadModeInitialize:
		return s.store.Initialize(ctx, chunks)
	case LoadModeAdd, "":
		return s.store.Add(ctx, chunks)
	default:
		return fmt.Errorf("%w: unknown load mode %q", appErr.ErrInvalid, mode)
	}
}
