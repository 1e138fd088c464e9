package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sararag/sara/internal/objstore"
	"github.com/sararag/sara/internal/pkg/errcode"
	"github.com/sararag/sara/internal/pkg/response"
)

const signURLTTL = 15 * time.Minute

type UploadHandler struct {
	store objstore.Store
}

func NewUploadHandler(store objstore.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

type signURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// SignURL returns a presigned PUT URL so the client uploads directly to
// object storage.
func (h *UploadHandler) SignURL(c *gin.Context) {
	var req signURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.FileName == "" {
		response.Error(c, errcode.ErrInvalid, "file_name is required")
		return
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	url, err := h.store.SignUploadURL(c.Request.Context(), req.FileName, contentType, signURLTTL)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"signed_url": url, "expires_in": int(signURLTTL.Seconds())})
}
