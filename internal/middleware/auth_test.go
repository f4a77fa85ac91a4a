package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mdla_service/internal/config"
	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			c.String(http.StatusOK, string(claims.Role))
			return
		}
		c.String(http.StatusOK, "anonymous")
	}
	r.GET("/open", TryAuthMiddleware(cfg), whoami)
	r.GET("/private", AuthMiddleware(cfg), whoami)
	r.GET("/teachers", AuthMiddleware(cfg), RoleMiddleware(model.Teacher), whoami)
	return r
}

func tokenFor(t *testing.T, cfg *config.Config, role model.UserRole) string {
	t.Helper()
	user := &model.User{Role: role, Email: string(role) + "@example.com"}
	user.ID = 1
	token, err := util.GenerateJWT(user, cfg.JWT.Secret, time.Hour)
	require.NoError(t, err)
	return token
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewares(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret-middleware-secret"}}
	r := newRouter(cfg)

	client := tokenFor(t, cfg, model.Client)
	teacher := tokenFor(t, cfg, model.Teacher)
	admin := tokenFor(t, cfg, model.Admin)

	w := get(r, "/open", "")
	assert.Equal(t, "anonymous", w.Body.String())
	w = get(r, "/open", "broken")
	assert.Equal(t, "anonymous", w.Body.String())
	w = get(r, "/open", client)
	assert.Equal(t, "client", w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/private", "broken").Code)
	assert.Equal(t, http.StatusOK, get(r, "/private", client).Code)

	assert.Equal(t, http.StatusForbidden, get(r, "/teachers", client).Code)
	assert.Equal(t, http.StatusOK, get(r, "/teachers", teacher).Code)
	assert.Equal(t, http.StatusOK, get(r, "/teachers", admin).Code, "admins pass every role gate")
}

func TestRateLimitKey(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "middleware-secret-middleware-secret"}}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/key", func(c *gin.Context) {
		c.String(http.StatusOK, RateLimitKey(cfg)(c))
	})

	assert.Equal(t, "user:1", get(r, "/key", tokenFor(t, cfg, model.Client)).Body.String())
	// httptest requests come from 192.0.2.1
	assert.Equal(t, "ip:192.0.2.1", get(r, "/key", "").Body.String())
	assert.Equal(t, "ip:192.0.2.1", get(r, "/key", "not-a-token").Body.String())
}
