package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user_service/internal/domain"
	"user_service/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(issuer *utils.TokenIssuer, enforce bool) *gin.Engine {
	r := gin.New()
	r.PUT("/records/:id", JWTAuthMiddleware(issuer), OwnerOnlyMiddleware(enforce), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint(ContextUserID)})
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", 0)
	token, err := issuer.Issue(domain.User{ID: 1, Name: "Ann"})
	require.NoError(t, err)
	foreign, err := utils.NewTokenIssuer("other", 0).Issue(domain.User{ID: 1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer nope", wantStatus: http.StatusForbidden},
		{name: "foreign secret", authHeader: "Bearer " + foreign, wantStatus: http.StatusForbidden},
		{name: "valid token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
	}

	r := newAuthRouter(issuer, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/records/1", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOwnerOnlyMiddleware(t *testing.T) {
	issuer := utils.NewTokenIssuer("secret", 0)
	token, err := issuer.Issue(domain.User{ID: 1})
	require.NoError(t, err)

	tests := []struct {
		name       string
		enforce    bool
		path       string
		wantStatus int
	}{
		{name: "not enforced other id", enforce: false, path: "/records/2", wantStatus: http.StatusOK},
		{name: "enforced own id", enforce: true, path: "/records/1", wantStatus: http.StatusOK},
		{name: "enforced other id", enforce: true, path: "/records/2", wantStatus: http.StatusForbidden},
		{name: "enforced bad id passes through", enforce: true, path: "/records/abc", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(issuer, tt.enforce)
			req := httptest.NewRequest(http.MethodPut, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/user/login", RateLimitMiddleware(NewIPRateLimiter(time.Hour, 2)), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/user/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2"), "limits are per client ip")
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("requestID")) })

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}
