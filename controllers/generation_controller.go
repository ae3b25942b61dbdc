package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
)

const maxDocumentBytes = 10 << 20

// POST /api/generate/audio
func GenerateAudio(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.GenerateAudioInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asset, err := svc.GenerateAudio(c.Request.Context(), middleware.IdentityFrom(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": asset})
	}
}

// POST /api/generate/thumbnail
func GenerateThumbnail(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.GenerateThumbnailInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asset, err := svc.GenerateThumbnail(c.Request.Context(), middleware.IdentityFrom(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": asset})
	}
}

// POST /api/generate/prompt
func SuggestPrompt(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.SuggestPromptInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		prompt, err := svc.SuggestPrompt(c.Request.Context(), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"kind": input.Kind, "prompt": prompt}})
	}
}

// POST /api/generate/document (multipart, field "file")
func PromptFromDocument(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
			return
		}
		if file.Size > maxDocumentBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File quá lớn"})
			return
		}

		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể đọc file"})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể đọc file"})
			return
		}

		text, err := svc.PromptFromDocument(middleware.IdentityFrom(c), file.Filename, data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"voice_prompt": text}})
	}
}

// GET /api/generate/status
func GenerationStatus(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.IdentityFrom(c)
		if !identity.Valid() {
			respondError(c, services.ErrNotAuthenticated)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": svc.Tracker().Snapshot(identity.Subject)})
	}
}
