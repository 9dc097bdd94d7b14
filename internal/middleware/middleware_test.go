package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/identity"
	"github.com/HanjuJo/nexo-v1/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware_test_secret_32_chars!!"

func init() { gin.SetMode(gin.TestMode) }

func sign(t *testing.T, method jwt.SigningMethod, key any, claims middleware.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func serve(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	var got identity.Identity
	r := gin.New()
	r.GET("/", middleware.Authenticate(secret), func(c *gin.Context) {
		got = middleware.GetIdentity(c)
		c.Status(http.StatusNoContent)
	})

	uid := uuid.New()
	valid := middleware.Claims{
		UserID: uid.String(),
		Role:   string(identity.RoleTechnician),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}

	w := serve(r, sign(t, jwt.SigningMethodHS256, []byte(secret), valid))
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, uid, got.UserID)
	assert.Equal(t, identity.RoleTechnician, got.Role)

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	assert.Equal(t, http.StatusUnauthorized, serve(r, sign(t, jwt.SigningMethodHS256, []byte(secret), expired)).Code)

	// only HS256 is accepted
	assert.Equal(t, http.StatusUnauthorized, serve(r, sign(t, jwt.SigningMethodHS512, []byte(secret), valid)).Code)

	badRole := valid
	badRole.Role = "auditor"
	assert.Equal(t, http.StatusUnauthorized, serve(r, sign(t, jwt.SigningMethodHS256, []byte(secret), badRole)).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.GET("/", middleware.Authenticate(secret), middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	claims := middleware.Claims{UserID: uuid.NewString(), Role: string(identity.RoleSales)}

	assert.Equal(t, http.StatusForbidden, serve(r, sign(t, jwt.SigningMethodHS256, []byte(secret), claims)).Code)

	claims.IsAdmin = true
	assert.Equal(t, http.StatusNoContent, serve(r, sign(t, jwt.SigningMethodHS256, []byte(secret), claims)).Code)
}

func TestRateLimiter_MemoryStore(t *testing.T) {
	limit, err := middleware.RateLimiter("2-M", nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(limit)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, "").Code)

	_, err = middleware.RateLimiter("lots", nil)
	assert.Error(t, err)
}

func TestRequestID_PropagatesHeader(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = serve(r, "")
	assert.Len(t, w.Header().Get(middleware.RequestIDHeader), 36)
}
