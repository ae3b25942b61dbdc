package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/testutil"
	"github.com/vnkhanh/podcastr-backend/utils"
)

type googleStub map[string]*models.Identity

func (g googleStub) VerifyIDToken(_ context.Context, idToken string) (*models.Identity, error) {
	if id, ok := g[idToken]; ok {
		return id, nil
	}
	return nil, errors.New("invalid id token")
}

func TestGoogleLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	users := testutil.NewUserRepo(nil)
	users.Put(models.User{ExternalID: "user_2abc", Email: "alice@test.dev", Name: "Alice"})

	google := googleStub{
		"bob-token":   {Subject: "google|1", Email: "bob@test.dev", Name: "Bob", Provider: "google"},
		"alice-token": {Subject: "google|2", Email: "alice@test.dev", Name: "Alice", Provider: "google"},
	}
	r := gin.New()
	r.POST("/api/auth/google", GoogleLogin(google, utils.NewSessionTokens("secret", time.Hour), services.NewUserService(users, testutil.NewPodcastRepo())))

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/google", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	t.Run("new user gets a session", func(t *testing.T) {
		rr := login(`{"id_token":"bob-token"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"token":`)
		assert.Contains(t, rr.Body.String(), `"external_id":"google|1"`)
	})

	t.Run("email linked to another provider", func(t *testing.T) {
		rr := login(`{"id_token":"alice-token"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		rr := login(`{"id_token":"forged"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rr := login(`{}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
