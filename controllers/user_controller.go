package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/services"
)

const defaultPodcasterLimit = 10

// POST /api/users/sync
func SyncUser(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input services.SyncUserInput
		// body rỗng hợp lệ, dùng thông tin từ identity
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		user, err := svc.Sync(c.Request.Context(), middleware.IdentityFrom(c), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	}
}

// GET /api/users/me
func GetMe(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := middleware.IdentityFrom(c)
		if !identity.Valid() {
			respondError(c, services.ErrNotAuthenticated)
			return
		}
		user, err := svc.GetByExternalID(c.Request.Context(), identity.Subject)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"identity": identity, "data": user})
	}
}

// GET /api/podcasters?limit=
func GetTopPodcasters(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultPodcasterLimit
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}
		podcasters, err := svc.TopPodcasters(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": podcasters})
	}
}

// GET /api/podcasters/:externalId, {"data": null} khi không có
func GetPodcaster(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.GetByExternalID(c.Request.Context(), c.Param("externalId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": user})
	}
}

// GET /api/podcasters/:externalId/feed
func GetPodcasterFeed(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		feed, err := svc.Feed(c.Request.Context(), baseURL(c), c.Param("externalId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(feed))
	}
}

// GET /api/profile/:externalId
func GetProfile(svc *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := svc.Profile(c.Request.Context(), c.Param("externalId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if profile == nil {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": profile})
	}
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
