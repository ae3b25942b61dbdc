package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// PublicRoutes là allow-list các route không cần đăng nhập.
// Mỗi pattern có thể mở đầu bằng method, vd "GET /api/podcasts(.*)".
var PublicRoutes = []string{
	"/",
	"/ping",
	"/health",
	"POST /api/auth(.*)",
	"GET /api/podcasts(.*)",
	"POST /api/podcasts/[^/]+/views",
	"GET /api/podcasters(.*)",
	"GET /api/profile(.*)",
	"GET /api/discover(.*)",
	"GET /api/categories(.*)",
	"GET /api/voices(.*)",
	"/ws(.*)",
}

type routePattern struct {
	method string
	path   *regexp.Regexp
}

// RouteMatcher so khớp (method, path) với các pattern đã biên dịch, neo toàn chuỗi.
type RouteMatcher struct {
	patterns []routePattern
}

func NewRouteMatcher(patterns ...string) (*RouteMatcher, error) {
	m := &RouteMatcher{}
	for _, raw := range patterns {
		method, path := "", strings.TrimSpace(raw)
		if i := strings.IndexByte(path, ' '); i > 0 {
			method, path = strings.ToUpper(path[:i]), strings.TrimSpace(path[i+1:])
		}
		re, err := regexp.Compile("^" + path + "$")
		if err != nil {
			return nil, fmt.Errorf("route pattern %q: %w", raw, err)
		}
		m.patterns = append(m.patterns, routePattern{method: method, path: re})
	}
	return m, nil
}

func MustRouteMatcher(patterns ...string) *RouteMatcher {
	m, err := NewRouteMatcher(patterns...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *RouteMatcher) Match(method, path string) bool {
	method = strings.ToUpper(method)
	for _, p := range m.patterns {
		if p.method != "" && p.method != method {
			continue
		}
		if p.path.MatchString(path) {
			return true
		}
	}
	return false
}
