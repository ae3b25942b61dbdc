package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/utils"
)

const identityKey = "identity"

// AuthGuard chặn route không nằm trong allow-list khi không có token hợp lệ.
// Route công khai vẫn được gắn identity nếu request mang token hợp lệ.
func AuthGuard(verifier utils.Verifier, public *RouteMatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		isPublic := public.Match(c.Request.Method, c.Request.URL.Path)

		// Thử Authorization header trước, nếu không có thì X-Auth-Token (cho iOS)
		header := c.GetHeader("Authorization")
		if header == "" {
			header = c.GetHeader("X-Auth-Token")
		}
		token := utils.BearerToken(header)

		if token == "" {
			if isPublic {
				c.Next()
				return
			}
			msg := "Thiếu Authorization header"
			if header != "" {
				msg = "Authorization header không hợp lệ"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			c.Abort()
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			if isPublic {
				// Token sai / hết hạn trên route công khai -> coi như anonymous
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Set("user_id", identity.Subject)
		c.Set("provider", identity.Provider)
		c.Next()
	}
}

// IdentityFrom trả về identity đã xác thực hoặc nil với request anonymous.
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*models.Identity)
	return identity
}

// SetIdentity gắn identity vào context (dùng trong test handler).
func SetIdentity(c *gin.Context, identity *models.Identity) {
	c.Set(identityKey, identity)
}
