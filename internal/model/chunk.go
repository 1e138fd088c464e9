package model

// Sentinel values used when metadata extraction fails. Stored as-is so
// downstream consumers can tell "missing" from "empty".
const (
	MetaNotFound       = "Not Found"
	MetaUnknownAuthors = "Unknown Authors"
	MetaUnknownDate    = "Unknown Date"
)

// DocumentChunk is the unit of storage and retrieval: a bounded slice of a
// source document's text plus its embedding vector. Chunks are written once
// and never updated; re-embedding replaces the row.
type DocumentChunk struct {
	ID              int64     `json:"id,omitempty"`
	SourceFilename  string    `json:"source_filename"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors"`
	PublicationDate string    `json:"publication_date"`
	Content         string    `json:"content"`
	Embedding       []float32 `json:"embedding"`
}

// SearchResult is a stored chunk ranked against a query embedding.
// Similarity is cosine similarity, 1 - cosine distance.
type SearchResult struct {
	DocumentChunk
	Similarity float64 `json:"similarity"`
}

type DocType string

const (
	DocTypePatent DocType = "patent"
	DocTypePaper  DocType = "paper"
)

// DocumentMetadata is the best-effort metadata extracted during ingestion.
type DocumentMetadata struct {
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	PublicationDate string `json:"publication_date"`
}

const (
	FileStatusOK     = "ok"
	FileStatusFailed = "failed"
)

// FileReport is the per-file outcome of one ingestion request.
type FileReport struct {
	Filename      string  `json:"filename"`
	Status        string  `json:"status"`
	DocType       DocType `json:"doc_type,omitempty"`
	Chunks        int     `json:"chunks"`
	DroppedChunks int     `json:"dropped_chunks,omitempty"`
	Error         string  `json:"error,omitempty"`
}
