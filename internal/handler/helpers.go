package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/sararag/sara/internal/pkg/errcode"
	appErr "github.com/sararag/sara/internal/pkg/errors"
	"github.com/sararag/sara/internal/pkg/response"
)

// handleError maps internal errors to stable error codes. Details go to the
// log, never to the client.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(context.Background()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrConfig):
		response.Error(c, errcode.ErrInternal, "server configuration error")
	case errors.Is(err, appErr.ErrStorage):
		response.Error(c, errcode.ErrSearchFailed, "retrieval failure")
	case errors.Is(err, appErr.ErrEmbedding):
		response.Error(c, errcode.ErrAIUnavailable, "embedding service failure")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
