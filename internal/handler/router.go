package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sararag/sara/internal/middleware"
)

type RouterDeps struct {
	Documents  *DocumentHandler
	Uploads    *UploadHandler
	AuthSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", Health)
	api.GET("/documents/search", deps.Documents.Search)

	authGroup := api.Group("")
	authGroup.Use(middleware.BearerAuth(deps.AuthSecret))
	authGroup.POST("/documents/answer", deps.Documents.Answer)
	authGroup.POST("/documents/upload", deps.Documents.Upload)
	authGroup.POST("/documents/load", deps.Documents.Load)
	if deps.Uploads != nil {
		authGroup.POST("/uploads/sign", deps.Uploads.SignURL)
	}
}

func Health(c *gin.Context) {
	c.JSON(200, gin.H{"message": "sara retrieval service is running"})
}
