package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
)

type uploadURLInput struct {
	Filename string `json:"filename"`
}

type fileURLInput struct {
	StorageID string `json:"storage_id" binding:"required"`
}

// POST /api/files/upload-url
func CreateUploadURL(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input uploadURLInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		target, err := svc.CreateUploadURL(c.Request.Context(), middleware.IdentityFrom(c), input.Filename)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": target})
	}
}

// POST /api/files/url
func ResolveFileURL(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input fileURLInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		url, err := svc.ResolveURL(c.Request.Context(), input.StorageID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"storage_id": input.StorageID, "url": url}})
	}
}
