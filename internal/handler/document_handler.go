package handler

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sararag/sara/internal/model"
	"github.com/sararag/sara/internal/pkg/errcode"
	"github.com/sararag/sara/internal/pkg/response"
	"github.com/sararag/sara/internal/service"
)

type DocumentHandler struct {
	ingest        *service.IngestService
	retrieval     *service.RetrievalService
	maxUploadSize int64
	tempDir       string
}

func NewDocumentHandler(ingest *service.IngestService, retrieval *service.RetrievalService, maxUploadSize int64, tempDir string) *DocumentHandler {
	return &DocumentHandler{
		ingest:        ingest,
		retrieval:     retrieval,
		maxUploadSize: maxUploadSize,
		tempDir:       tempDir,
	}
}

func (h *DocumentHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	topK := service.DefaultTopK
	if value := c.Query("top_k"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			response.Error(c, errcode.ErrInvalid, "top_k must be a positive integer")
			return
		}
		topK = parsed
	}
	results, err := h.retrieval.Search(c.Request.Context(), query, topK)
	if err != nil {
		handleError(c, err)
		return
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	response.Success(c, gin.H{"results": results})
}

type answerRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (h *DocumentHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	answer, err := h.retrieval.Answer(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"answer": answer})
}

// Upload ingests one or more PDF or markdown files. The response reports
// every file's outcome; a bad file never fails the batch.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "multipart form required")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		response.Error(c, errcode.ErrInvalidFile, "at least one file is required")
		return
	}

	var paths []string
	reports := make([]model.FileReport, 0, len(files))
	defer func() {
		for _, path := range paths {
			_ = os.Remove(path)
		}
	}()
	for _, file := range files {
		if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
			reports = append(reports, model.FileReport{
				Filename: file.Filename,
				Status:   model.FileStatusFailed,
				Error:    "file too large",
			})
			continue
		}
		path, err := h.saveTempFile(file)
		if err != nil {
			reports = append(reports, model.FileReport{
				Filename: file.Filename,
				Status:   model.FileStatusFailed,
				Error:    "failed to read file",
			})
			continue
		}
		paths = append(paths, path)
	}

	reports = append(reports, h.ingest.ProcessFiles(c.Request.Context(), paths)...)
	response.Success(c, gin.H{"files": reports})
}

func (h *DocumentHandler) saveTempFile(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Keep the original name so per-file reports and stored chunks carry it.
	dir, err := os.MkdirTemp(h.tempDir, "sara-upload-*")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := dst.ReadFrom(src); err != nil {
		return "", err
	}
	return path, nil
}

// Load accepts a JSON array of pre-embedded chunks, as produced by the
// process CLI command.
func (h *DocumentHandler) Load(c *gin.Context) {
	var chunks []model.DocumentChunk
	if err := c.ShouldBindJSON(&chunks); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	mode := strings.ToLower(c.DefaultQuery("mode", service.LoadModeAdd))
	if err := h.ingest.LoadChunks(c.Request.Context(), chunks, mode); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"loaded": len(chunks), "mode": mode})
}
