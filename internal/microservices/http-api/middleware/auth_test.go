package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podcasthub/internal/microservices/http-api/service"
	"podcasthub/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubValidator map[string]policy.Principal

func (s stubValidator) ValidateToken(token string) (policy.Principal, error) {
	if token == "expired" {
		return policy.Principal{}, service.ErrExpiredToken
	}
	p, ok := s[token]
	if !ok {
		return policy.Principal{}, service.ErrInvalidToken
	}
	return p, nil
}

var tokens = stubValidator{
	"admin":    {ID: "admin@podcasthub.com", Role: policy.RoleAdmin},
	"listener": {ID: "l@x.com", Role: policy.RoleListener},
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	r.GET("/", handlers...)
	return r
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(tokens))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "token has expired"},
		{"valid", "Bearer listener", http.StatusOK, `"id":"l@x.com"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(tokens))

	w := do(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"","role":""}`, w.Body.String())

	w = do(r, "Bearer admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"Admin"`)

	w = do(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthAndRole(t *testing.T) {
	r := newRouter(OptionalAuth(tokens), RequireAuth())
	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer listener").Code)

	admin := newRouter(OptionalAuth(tokens), RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, do(admin, "").Code)
	assert.Equal(t, http.StatusForbidden, do(admin, "Bearer listener").Code)
	assert.Equal(t, http.StatusOK, do(admin, "Bearer admin").Code)
}

func TestPrincipalFrom_DefaultsToAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, PrincipalFrom(c).Authenticated())

	c.Set(principalKey, "not a principal")
	assert.Equal(t, policy.Anonymous(), PrincipalFrom(c))
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	clock := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	r := newRouter(RateLimit(limiter))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, do(r, "").Code)

	assert.True(t, limiter.Allow("10.0.0.9"), "buckets are per IP")

	clock = clock.Add(time.Hour)
	assert.Equal(t, 2, limiter.Sweep())
}
