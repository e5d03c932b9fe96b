package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	appPrediction "github.com/Allllisha/AI-Tender-Prediction/internal/application/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	domainCompany "github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/intelligence/annotator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTenderRepo struct {
	getByID       func(ctx context.Context, id string) (*tender.Tender, error)
	search        func(ctx context.Context, f tender.Filter) ([]tender.Tender, error)
	filterOptions func(ctx context.Context) (*tender.FilterOptions, error)
}

func (f *fakeTenderRepo) GetByID(ctx context.Context, id string) (*tender.Tender, error) {
	return f.getByID(ctx, id)
}

func (f *fakeTenderRepo) Search(ctx context.Context, flt tender.Filter) ([]tender.Tender, error) {
	return f.search(ctx, flt)
}

func (f *fakeTenderRepo) FilterOptions(ctx context.Context) (*tender.FilterOptions, error) {
	return f.filterOptions(ctx)
}

func (f *fakeTenderRepo) BulkUpsert(context.Context, []tender.Tender) error { return nil }

type fakeAwardRepo struct {
	findCandidates   func(ctx context.Context, q tender.CandidateQuery) ([]tender.Award, error)
	findByContractor func(ctx context.Context, contractor string) ([]tender.Award, error)
}

func (f *fakeAwardRepo) FindCandidates(ctx context.Context, q tender.CandidateQuery) ([]tender.Award, error) {
	if f.findCandidates == nil {
		return nil, nil
	}
	return f.findCandidates(ctx, q)
}

func (f *fakeAwardRepo) FindByContractor(ctx context.Context, contractor string) ([]tender.Award, error) {
	if f.findByContractor == nil {
		return nil, nil
	}
	return f.findByContractor(ctx, contractor)
}

func (f *fakeAwardRepo) BulkInsert(context.Context, []tender.Award) error { return nil }

type fakeAccountRepo struct {
	getByEmail func(ctx context.Context, email string) (*domainCompany.Account, error)
	getByID    func(ctx context.Context, id int64) (*domainCompany.Account, error)
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*domainCompany.Account, error) {
	return f.getByEmail(ctx, email)
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*domainCompany.Account, error) {
	return f.getByID(ctx, id)
}

func (f *fakeAccountRepo) Create(context.Context, *domainCompany.Account) error { return nil }

func testTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tokens, err := auth.NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	require.NoError(t, err)
	return tokens
}

func sampleTender() *tender.Tender {
	return &tender.Tender{
		ID:             "T-1",
		Title:          "市道改良工事",
		Publisher:      "高知市",
		Prefecture:     "高知県",
		Municipality:   "高知市",
		UseType:        "道路",
		BidMethod:      tender.MethodOpenBid,
		BidDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		EstimatedPrice: 100_000_000,
	}
}

// newPredictionService wires a real prediction service over fake stores.
func newPredictionService(tenders *fakeTenderRepo, awards *fakeAwardRepo) *appPrediction.Service {
	log := logging.NewNopLogger()
	profiles := appCompany.NewProfileService(awards, nil, config.PredictionConfig{}, log)
	return appPrediction.NewService(
		tenders,
		appPrediction.NewRetriever(awards, log),
		profiles,
		annotator.NewDisabled(),
		nil,
		nil,
		log,
		config.PredictionConfig{},
	)
}

// perform runs one request through a fresh engine with only the given routes.
func perform(t *testing.T, register func(r *gin.Engine), method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	register(r)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), "body: %s", w.Body.String())
}
