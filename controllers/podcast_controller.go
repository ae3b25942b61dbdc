package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
)

func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " không hợp lệ"})
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/podcasts
func GetTrendingPodcasts(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcasts, err := svc.Trending(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

// GET /api/podcasts/search?q=
func SearchPodcasts(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcasts, err := svc.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

// GET /api/podcasts/:id, trả {"data": null} khi không có
func GetPodcastByID(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		podcast, err := svc.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if podcast == nil {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcast})
	}
}

// GET /api/podcasts/:id/similar
func GetSimilarPodcasts(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		podcasts, err := svc.ByVoiceType(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

func GetPodcastsByCategory(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcasts, err := svc.ByCategory(c.Request.Context(), c.Param("category"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

func GetPodcastsByAuthor(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		podcasts, err := svc.ByAuthorID(c.Request.Context(), c.Param("authorId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

func GetPodcastsByUser(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseID(c, "userId")
		if !ok {
			return
		}
		podcasts, err := svc.ByUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasts})
	}
}

// POST /api/podcasts
func CreatePodcast(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.CreatePodcastInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		id, err := svc.Create(c.Request.Context(), middleware.IdentityFrom(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Tạo podcast thành công",
			"id":      id,
		})
	}
}

// PATCH /api/podcasts/:id
func UpdatePodcast(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var patch services.PodcastPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		podcast, err := svc.Update(c.Request.Context(), middleware.IdentityFrom(c), id, patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Cập nhật podcast thành công",
			"data":    podcast,
		})
	}
}

// DELETE /api/podcasts/:id
func DeletePodcast(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Xóa podcast thành công"})
	}
}

// POST /api/podcasts/:id/views
func IncrementPodcastViews(svc *services.PodcastService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		if err := svc.IncrementViews(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
