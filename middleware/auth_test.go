package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/utils"
)

type staticVerifier map[string]*models.Identity

func (s staticVerifier) Verify(token string) (*models.Identity, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func newTestRouter(v utils.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthGuard(v, MustRouteMatcher(PublicRoutes...)))
	handler := func(c *gin.Context) {
		subject := ""
		if id := IdentityFrom(c); id != nil {
			subject = id.Subject
		}
		c.JSON(http.StatusOK, gin.H{"subject": subject})
	}
	r.GET("/api/podcasts", handler)
	r.POST("/api/podcasts", handler)
	return r
}

func TestAuthGuard(t *testing.T) {
	alice := &models.Identity{Subject: "user_1", Email: "a@test.dev"}
	r := newTestRouter(staticVerifier{"good": alice})

	do := func(method, header, value string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/podcasts", nil)
		if header != "" {
			req.Header.Set(header, value)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	t.Run("public route anonymous", func(t *testing.T) {
		rr := do(http.MethodGet, "", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"subject":""}`, rr.Body.String())
	})

	t.Run("public route still attaches identity", func(t *testing.T) {
		rr := do(http.MethodGet, "Authorization", "Bearer good")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"subject":"user_1"}`, rr.Body.String())
	})

	t.Run("public route with bad token is anonymous", func(t *testing.T) {
		rr := do(http.MethodGet, "Authorization", "Bearer nope")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"subject":""}`, rr.Body.String())
	})

	t.Run("protected route without token", func(t *testing.T) {
		rr := do(http.MethodPost, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("protected route malformed header", func(t *testing.T) {
		rr := do(http.MethodPost, "Authorization", "Token good")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("protected route invalid token", func(t *testing.T) {
		rr := do(http.MethodPost, "Authorization", "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("protected route valid token", func(t *testing.T) {
		rr := do(http.MethodPost, "Authorization", "Bearer good")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"subject":"user_1"}`, rr.Body.String())
	})

	t.Run("x-auth-token header", func(t *testing.T) {
		rr := do(http.MethodPost, "X-Auth-Token", "Bearer good")
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestAuthGuardWithSessionTokens(t *testing.T) {
	tokens := utils.NewSessionTokens("secret", time.Hour)
	token, err := tokens.Issue(models.Identity{Subject: "google|1", Email: "a@test.dev"})
	require.NoError(t, err)

	r := newTestRouter(utils.ChainVerifier{tokens})
	req := httptest.NewRequest(http.MethodPost, "/api/podcasts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"subject":"google|1"}`, rr.Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(PerMinute(1), 2)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if s := c.GetHeader("X-Subject"); s != "" {
			SetIdentity(c, &models.Identity{Subject: s, Email: s + "@test.dev"})
		}
		c.Next()
	})
	r.Use(rl.Middleware())
	r.POST("/generate", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(subject string) int {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		req.Header.Set("X-Subject", subject)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, hit("alice"))
	assert.Equal(t, http.StatusOK, hit("alice"))
	assert.Equal(t, http.StatusTooManyRequests, hit("alice"))
	// bucket riêng cho từng identity
	assert.Equal(t, http.StatusOK, hit("bob"))
}

func TestRateLimiterEvictsIdleKeys(t *testing.T) {
	rl := NewRateLimiter(PerMinute(1), 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.lastSweep = now

	assert.True(t, rl.limiter("alice").Allow())
	rl.limiter("bob")
	require.Equal(t, 2, rl.size())

	now = now.Add(idleTTL / 2)
	rl.limiter("bob")

	now = now.Add(idleTTL / 2)
	rl.limiter("carol")
	// alice idle đủ idleTTL nên bị xoá, bob vẫn còn
	assert.Equal(t, 2, rl.size())

	// alice quay lại nhận bucket mới
	assert.True(t, rl.limiter("alice").Allow())
	assert.Equal(t, 3, rl.size())
}
