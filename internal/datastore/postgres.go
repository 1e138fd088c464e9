package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/sararag/sara/internal/db"
	"github.com/sararag/sara/internal/model"
	"github.com/sararag/sara/internal/pkg/dbutil"
)

// insertBatchSize bounds the parameter count of one bulk INSERT.
const insertBatchSize = 200

type postgresStore struct {
	db *sql.DB
}

func init() {
	Register("postgres", createPostgresStore)
}

func createPostgresStore(args interface{}) (Store, error) {
	cfg := &db.PostgresConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.DSN == "" && (cfg.Host == "" || cfg.User == "" || cfg.DBName == "") {
		return nil, fmt.Errorf("postgres host/user/dbname (or dsn) are required")
	}
	conn, err := db.Open(*cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &postgresStore{db: conn}, nil
}

// Initialize replaces the table contents in one transaction. The schema is
// migration-managed; this never drops or recreates the table.
func (s *postgresStore) Initialize(ctx context.Context, chunks []model.DocumentChunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "TRUNCATE document_chunks"); err != nil {
		return err
	}
	if err := insertChunks(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *postgresStore) Add(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := validateChunks(chunks); err != nil {
		return err
	}
	return insertChunks(ctx, s.db, chunks)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertChunks(ctx context.Context, conn execer, chunks []model.DocumentChunk) error {
	for offset := 0; offset < len(chunks); offset += insertBatchSize {
		end := offset + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		rows := make([]map[string]interface{}, 0, end-offset)
		for _, chunk := range chunks[offset:end] {
			rows = append(rows, map[string]interface{}{
				"source_filename":  chunk.SourceFilename,
				"title":            chunk.Title,
				"authors":          chunk.Authors,
				"publication_date": chunk.PublicationDate,
				"content":          chunk.Content,
				"embedding":        pgvector.NewVector(chunk.Embedding),
			})
		}
		sqlStr, args, err := builder.BuildInsert("document_chunks", rows)
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, err := conn.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return nil
}

// Search ranks stored chunks by cosine similarity, 1 - cosine distance.
// Ties fall back to insertion order.
func (s *postgresStore) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]model.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}
	const query = `
		SELECT id, source_filename, title, authors, publication_date, content,
		       1 - (embedding <=> $1) AS similarity
		FROM document_chunks
		ORDER BY similarity DESC, id ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(queryEmbedding), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.SearchResult
	for rows.Next() {
		var item model.SearchResult
		if err := rows.Scan(
			&item.ID,
			&item.SourceFilename,
			&item.Title,
			&item.Authors,
			&item.PublicationDate,
			&item.Content,
			&item.Similarity,
		); err != nil {
			return nil, err
		}
		results = append(results, item)
	}
	return results, rows.Err()
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
