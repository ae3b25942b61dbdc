package controllers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
)

// IDTokenVerifier xác minh ID token của nhà cung cấp ngoài (Google).
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*models.Identity, error)
}

type TokenIssuer interface {
	Issue(identity models.Identity) (string, error)
}

type GoogleLoginInput struct {
	IDToken string `json:"id_token" binding:"required"`
}

// POST /api/auth/google: đổi Google ID token lấy JWT phiên, đồng bộ user.
func GoogleLogin(google IDTokenVerifier, tokens TokenIssuer, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input GoogleLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identity, err := google.VerifyIDToken(c.Request.Context(), input.IDToken)
		if err != nil {
			log.Printf("Google ID token bị từ chối: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google không hợp lệ"})
			return
		}

		user, err := users.Sync(c.Request.Context(), identity, services.SyncUserInput{})
		if err != nil {
			respondError(c, err)
			return
		}

		token, err := tokens.Issue(*identity)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user,
		})
	}
}
