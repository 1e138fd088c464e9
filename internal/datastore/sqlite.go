package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/didi/gendry/builder"
	_ "modernc.org/sqlite"

	"github.com/sararag/sara/internal/model"
)

// sqliteStore is a local backend for development and tests: same table
// shape as postgres, embeddings stored as JSON, similarity computed
// brute-force in process.
type sqliteStore struct {
	db *sql.DB
}

type sqliteConfig struct {
	Path string `json:"path"`
}

func init() {
	Register("sqlite", createSQLiteStore)
}

func createSQLiteStore(args interface{}) (Store, error) {
	cfg := &sqliteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	conn, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	const schema = `
		CREATE TABLE IF NOT EXISTS document_chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_filename TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			publication_date TEXT,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		)
	`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &sqliteStore{db: conn}, nil
}

func (s *sqliteStore) Initialize(ctx context.Context, chunks []model.DocumentChunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM document_chunks"); err != nil {
		return err
	}
	if err := insertSQLiteChunks(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) Add(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := validateChunks(chunks); err != nil {
		return err
	}
	return insertSQLiteChunks(ctx, s.db, chunks)
}

func insertSQLiteChunks(ctx context.Context, conn execer, chunks []model.DocumentChunk) error {
	for offset := 0; offset < len(chunks); offset += insertBatchSize {
		end := offset + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		rows := make([]map[string]interface{}, 0, end-offset)
		for _, chunk := range chunks[offset:end] {
			blob, err := json.Marshal(chunk.Embedding)
			if err != nil {
				return err
			}
			rows = append(rows, map[string]interface{}{
				"source_filename":  chunk.SourceFilename,
				"title":            chunk.Title,
				"authors":          chunk.Authors,
				"publication_date": chunk.PublicationDate,
				"content":          chunk.Content,
				"embedding":        blob,
			})
		}
		sqlStr, args, err := builder.BuildInsert("document_chunks", rows)
		if err != nil {
			return err
		}
		if _, err := conn.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]model.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	const query = `
		SELECT id, source_filename, title, authors, publication_date, content, embedding
		FROM document_chunks
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var item model.SearchResult
		var blob []byte
		if err := rows.Scan(
			&item.ID,
			&item.SourceFilename,
			&item.Title,
			&item.Authors,
			&item.PublicationDate,
			&item.Content,
			&blob,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(blob, &item.Embedding); err != nil {
			return nil, err
		}
		item.Similarity = cosineSimilarity(queryEmbedding, item.Embedding)
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Stable sort keeps insertion order between equal scores.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if topK < len(results) {
		results = results[:topK]
	}
	for i := range results {
		results[i].Embedding = nil
	}
	return results, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
