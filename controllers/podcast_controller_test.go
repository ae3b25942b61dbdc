package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/podcastr-backend/middleware"
	"github.com/vnkhanh/podcastr-backend/models"
	"github.com/vnkhanh/podcastr-backend/services"
	"github.com/vnkhanh/podcastr-backend/testutil"
)

type apiFixture struct {
	router   *gin.Engine
	podcasts *testutil.PodcastRepo
	users    *testutil.UserRepo
	blobs    *testutil.BlobStore
}

// X-Test-Subject giả lập identity đã qua AuthGuard.
func withTestIdentity(c *gin.Context) {
	if subject := c.GetHeader("X-Test-Subject"); subject != "" {
		middleware.SetIdentity(c, &models.Identity{Subject: subject, Email: subject + "@test.dev", Name: subject})
	}
	c.Next()
}

func newAPIFixture() *apiFixture {
	gin.SetMode(gin.TestMode)
	f := &apiFixture{
		podcasts: testutil.NewPodcastRepo(),
		blobs:    testutil.NewBlobStore(),
	}
	f.users = testutil.NewUserRepo(f.podcasts)
	files := testutil.NewFileRepo()
	podcastSvc := services.NewPodcastService(f.podcasts, f.users, files, f.blobs, testutil.NewNotifier(), services.PodcastPolicy{})
	genSvc := services.NewGenerationService(&testutil.Synthesizer{}, &testutil.ImageGenerator{}, &testutil.PromptWriter{Reply: "a prompt"}, f.blobs, files, f.users, nil)

	r := gin.New()
	r.Use(withTestIdentity)
	r.GET("/api/categories", GetCategories)
	r.GET("/api/podcasts", GetTrendingPodcasts(podcastSvc))
	r.GET("/api/podcasts/:id", GetPodcastByID(podcastSvc))
	r.POST("/api/podcasts", CreatePodcast(podcastSvc))
	r.PATCH("/api/podcasts/:id", UpdatePodcast(podcastSvc))
	r.DELETE("/api/podcasts/:id", DeletePodcast(podcastSvc))
	r.POST("/api/podcasts/:id/views", IncrementPodcastViews(podcastSvc))
	r.POST("/api/generate/audio", GenerateAudio(genSvc))
	r.GET("/api/generate/status", GenerationStatus(genSvc))
	f.router = r
	return f
}

func (f *apiFixture) do(method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("X-Test-Subject", subject)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func createBody() gin.H {
	return gin.H{
		"podcast_title":       "Morning",
		"podcast_description": "Coffee talk",
		"category_type":       "music",
		"voice_type":          "alloy",
		"voice_prompt":        "hello",
		"image_prompt":        "a mug",
		"audio_url":           "https://storage.test/a.mp3",
		"image_url":           "https://storage.test/i.png",
		"audio_duration":      3.5,
	}
}

func TestGetPodcastByID(t *testing.T) {
	f := newAPIFixture()

	t.Run("absent returns null data", func(t *testing.T) {
		rr := f.do(http.MethodGet, "/api/podcasts/"+uuid.NewString(), "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"data":null}`, rr.Body.String())
	})

	t.Run("bad id", func(t *testing.T) {
		rr := f.do(http.MethodGet, "/api/podcasts/not-a-uuid", "", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("present", func(t *testing.T) {
		p := f.podcasts.Put(models.Podcast{PodcastTitle: "Hi", PodcastDescription: "d", CategoryType: "music", VoiceType: "alloy"})
		rr := f.do(http.MethodGet, "/api/podcasts/"+p.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data models.Podcast `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, p.ID, resp.Data.ID)
		assert.Equal(t, "Hi", resp.Data.PodcastTitle)
	})
}

func TestCreatePodcastEndpoint(t *testing.T) {
	f := newAPIFixture()
	f.users.Put(models.User{ExternalID: "alice", Email: "alice@test.dev", Name: "Alice"})

	t.Run("anonymous", func(t *testing.T) {
		rr := f.do(http.MethodPost, "/api/podcasts", "", createBody())
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, 0, f.podcasts.Len())
	})

	t.Run("no matching user", func(t *testing.T) {
		rr := f.do(http.MethodPost, "/api/podcasts", "bob", createBody())
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		body := createBody()
		body["category_type"] = "cooking-with-lasers"
		rr := f.do(http.MethodPost, "/api/podcasts", "alice", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "category_type", resp["field"])
	})

	t.Run("created", func(t *testing.T) {
		rr := f.do(http.MethodPost, "/api/podcasts", "alice", createBody())
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			ID uuid.UUID `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEqual(t, uuid.Nil, resp.ID)

		got := f.do(http.MethodGet, "/api/podcasts/"+resp.ID.String(), "", nil)
		assert.Contains(t, got.Body.String(), `"author":"Alice"`)
	})
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	f := newAPIFixture()
	owner := f.users.Put(models.User{ExternalID: "alice", Email: "alice@test.dev", Name: "Alice"})
	f.users.Put(models.User{ExternalID: "mallory", Email: "mallory@test.dev", Name: "Mallory"})
	p := f.podcasts.Put(models.Podcast{UserID: owner.ID, AuthorID: "alice", PodcastTitle: "Mine", PodcastDescription: "d", CategoryType: "music", VoiceType: "alloy"})
	path := "/api/podcasts/" + p.ID.String()

	rr := f.do(http.MethodPatch, path, "mallory", gin.H{"podcast_title": "Stolen"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodPatch, path, "alice", gin.H{"podcast_title": "Renamed"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"podcast_title":"Renamed"`)

	rr = f.do(http.MethodDelete, path, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = f.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodDelete, path, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIncrementViewsEndpoint(t *testing.T) {
	f := newAPIFixture()
	p := f.podcasts.Put(models.Podcast{PodcastTitle: "Hi", PodcastDescription: "d", CategoryType: "music", VoiceType: "alloy"})

	rr := f.do(http.MethodPost, "/api/podcasts/"+p.ID.String()+"/views", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = f.do(http.MethodPost, "/api/podcasts/"+uuid.NewString()+"/views", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGenerateAudioEndpoint(t *testing.T) {
	f := newAPIFixture()
	f.users.Put(models.User{ExternalID: "alice", Email: "alice@test.dev", Name: "Alice"})

	rr := f.do(http.MethodPost, "/api/generate/audio", "alice", gin.H{"voice_type": "shimmer"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(http.MethodPost, "/api/generate/audio", "alice", gin.H{"voice_type": "nova", "voice_prompt": "hello"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data services.GeneratedAsset `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, f.blobs.Has(resp.Data.StorageID))
	assert.Equal(t, "https://storage.test/"+resp.Data.StorageID, resp.Data.URL)

	rr = f.do(http.MethodGet, "/api/generate/status", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ready"`)

	rr = f.do(http.MethodGet, "/api/generate/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestGetCategories(t *testing.T) {
	f := newAPIFixture()
	rr := f.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []models.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.Categories(), resp.Data)
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrNotAuthenticated, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrPodcastLimitReached, http.StatusForbidden},
		{services.ErrPodcastNotFound, http.StatusNotFound},
		{services.ErrUserNotFound, http.StatusNotFound},
		{services.ErrFileNotOwned, http.StatusForbidden},
		{services.ErrIdentityConflict, http.StatusConflict},
		{services.ErrNoChanges, http.StatusBadRequest},
		{services.ErrUnknownVoice, http.StatusBadRequest},
		{fmt.Errorf("%w: boom", services.ErrGenerationFailed), http.StatusBadGateway},
		{fmt.Errorf("%w: boom", services.ErrUploadFailed), http.StatusBadGateway},
		{services.ErrURLUnavailable, http.StatusBadGateway},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rr)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		respondError(c, tc.err)
		assert.Equal(t, tc.code, rr.Code, tc.err.Error())
	}
}
