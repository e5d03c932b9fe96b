package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGuardedRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, err)

	mw := NewAuthMiddleware(tokens, logging.NewNopLogger())
	r := gin.New()
	r.GET("/guarded", mw.Handler(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"company_id": CompanyID(c),
			"email":      CompanyEmail(c),
		})
	})
	return r, tokens
}

func TestAuthMiddleware_ValidTokenPasses(t *testing.T) {
	r, tokens := newGuardedRouter(t)
	token, err := tokens.Issue(42, "demo@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"company_id":42`)
	assert.Contains(t, w.Body.String(), `"email":"demo@example.com"`)
}

func TestAuthMiddleware_MissingTokenRejected(t *testing.T) {
	r, _ := newGuardedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeaderRejected(t *testing.T) {
	r, tokens := newGuardedRouter(t)
	token, err := tokens.Issue(42, "demo@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", token) // no Bearer prefix
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ForgedTokenRejected(t *testing.T) {
	r, _ := newGuardedRouter(t)

	other, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "other-secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	token, err := other.Issue(42, "demo@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompanyID_AbsentContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Zero(t, CompanyID(c))
	assert.Empty(t, CompanyEmail(c))
}
