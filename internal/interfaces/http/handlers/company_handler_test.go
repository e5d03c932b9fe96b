package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	domainCompany "github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

func newCompanyHandler(awards *fakeAwardRepo) *CompanyHandler {
	log := logging.NewNopLogger()
	svc := appCompany.NewProfileService(awards, nil, config.PredictionConfig{}, log)
	return NewCompanyHandler(svc, log)
}

func TestStrengths_ReturnsProfile(t *testing.T) {
	awards := &fakeAwardRepo{
		findByContractor: func(_ context.Context, contractor string) ([]tender.Award, error) {
			assert.Equal(t, "テスト建設", contractor)
			return []tender.Award{
				{Contractor: contractor, Prefecture: "高知県", UseType: "道路", Method: tender.MethodOpenBid, ContractAmount: 90_000_000, AwardDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
				{Contractor: contractor, Prefecture: "高知県", UseType: "学校", Method: tender.MethodOpenBid, ContractAmount: 120_000_000, AwardDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			}, nil
		},
	}
	h := newCompanyHandler(awards)

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/companies/strengths", h.Strengths) },
		http.MethodGet, "/api/v1/companies/strengths?company_name=%E3%83%86%E3%82%B9%E3%83%88%E5%BB%BA%E8%A8%AD", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp domainCompany.Profile
	decodeBody(t, w, &resp)
	assert.Equal(t, "テスト建設", resp.Contractor)
	assert.Equal(t, 2, resp.TotalAwards)
	assert.Equal(t, int64(210_000_000), resp.TotalAmount)
}

func TestStrengths_UnknownCompanyIsZeroProfile(t *testing.T) {
	awards := &fakeAwardRepo{
		findByContractor: func(context.Context, string) ([]tender.Award, error) {
			return nil, nil
		},
	}
	h := newCompanyHandler(awards)

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/companies/strengths", h.Strengths) },
		http.MethodGet, "/api/v1/companies/strengths?company_name=%E7%84%A1%E5%90%8D%E5%BB%BA%E8%A8%AD", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp domainCompany.Profile
	decodeBody(t, w, &resp)
	assert.Zero(t, resp.TotalAwards)
}

func TestStrengths_RequiresCompanyName(t *testing.T) {
	h := newCompanyHandler(&fakeAwardRepo{})

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/companies/strengths", h.Strengths) },
		http.MethodGet, "/api/v1/companies/strengths", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
