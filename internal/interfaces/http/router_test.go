package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/handlers"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTenderRepo struct{}

func (stubTenderRepo) GetByID(_ context.Context, id string) (*tender.Tender, error) {
	return &tender.Tender{ID: id, Title: "庁舎改修工事", BidMethod: tender.MethodOpenBid}, nil
}

func (stubTenderRepo) Search(context.Context, tender.Filter) ([]tender.Tender, error) {
	return []tender.Tender{}, nil
}

func (stubTenderRepo) FilterOptions(context.Context) (*tender.FilterOptions, error) {
	return &tender.FilterOptions{}, nil
}

func (stubTenderRepo) BulkUpsert(context.Context, []tender.Tender) error { return nil }

func testRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	log := logging.NewNopLogger()

	tokens, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, err)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := NewRouter(RouterConfig{
		TenderHandler:  handlers.NewTenderHandler(stubTenderRepo{}, log),
		HealthHandler:  handlers.NewHealthHandler(nil, nil, log),
		AuthMiddleware: middleware.NewAuthMiddleware(tokens, log),
		Logger:         log,
		MetricsHandler: metricsHandler,
		Mode:           gin.TestMode,
	})
	return r, tokens
}

func get(r *gin.Engine, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthEndpointsArePublic(t *testing.T) {
	r, _ := testRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz", "").Code)
}

func TestRouter_MetricsEndpointIsPublic(t *testing.T) {
	r, _ := testRouter(t)
	assert.Equal(t, http.StatusOK, get(r, "/metrics", "").Code)
}

func TestRouter_APIRequiresToken(t *testing.T) {
	r, tokens := testRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/api/v1/tenders", "").Code)

	token, err := tokens.Issue(42, "demo@example.com")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/tenders", token).Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/tenders/T-1", token).Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/filters/options", token).Code)
}

func TestRouter_UnregisteredHandlerLeavesRouteUnmounted(t *testing.T) {
	r, tokens := testRouter(t)
	token, err := tokens.Issue(42, "demo@example.com")
	require.NoError(t, err)

	// No prediction handler was wired, so the route does not exist.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predictions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
