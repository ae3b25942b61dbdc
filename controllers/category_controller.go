package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

// GET /api/categories
func GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": models.Categories()})
}

// GET /api/voices
func GetVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": models.Voices})
}

// GET /api/discover
func Discover(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		discovery, err := svc.Discover(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": discovery})
	}
}
