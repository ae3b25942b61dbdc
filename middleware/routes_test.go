package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicRoutes(t *testing.T) {
	m := MustRouteMatcher(PublicRoutes...)

	public := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/ping"},
		{http.MethodGet, "/health"},
		{http.MethodPost, "/api/auth/google"},
		{http.MethodGet, "/api/podcasts"},
		{http.MethodGet, "/api/podcasts/search"},
		{http.MethodGet, "/api/podcasts/0b6a/similar"},
		{http.MethodPost, "/api/podcasts/0b6a/views"},
		{http.MethodGet, "/api/podcasters/user_1/feed"},
		{http.MethodGet, "/api/profile/user_1"},
		{http.MethodGet, "/api/discover"},
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/voices"},
		{http.MethodGet, "/ws/user"},
	}
	for _, r := range public {
		assert.True(t, m.Match(r.method, r.path), "%s %s", r.method, r.path)
	}

	protected := []struct{ method, path string }{
		{http.MethodPost, "/api/podcasts"},
		{http.MethodPatch, "/api/podcasts/0b6a"},
		{http.MethodDelete, "/api/podcasts/0b6a"},
		{http.MethodPost, "/api/podcasts/0b6a/views/extra"},
		{http.MethodPost, "/api/generate/audio"},
		{http.MethodGet, "/api/generate/status"},
		{http.MethodPost, "/api/files/upload-url"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodGet, "/pingx"},
		{http.MethodGet, "/x/api/podcasts"},
	}
	for _, r := range protected {
		assert.False(t, m.Match(r.method, r.path), "%s %s", r.method, r.path)
	}
}

func TestRouteMatcherMethodIsCaseInsensitive(t *testing.T) {
	m, err := NewRouteMatcher("get /a(.*)")
	require.NoError(t, err)
	assert.True(t, m.Match("GET", "/a/b"))
	assert.True(t, m.Match("get", "/a"))
	assert.False(t, m.Match("POST", "/a"))
}

func TestRouteMatcherInvalidPattern(t *testing.T) {
	_, err := NewRouteMatcher("GET /a(")
	assert.Error(t, err)
}
