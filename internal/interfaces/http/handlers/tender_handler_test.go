package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

func TestSearch_MapsQueryParamsToFilter(t *testing.T) {
	var captured tender.Filter
	repo := &fakeTenderRepo{
		search: func(_ context.Context, f tender.Filter) ([]tender.Tender, error) {
			captured = f
			return []tender.Tender{*sampleTender()}, nil
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders", h.Search) },
		http.MethodGet,
		"/api/v1/tenders?prefecture=%E9%AB%98%E7%9F%A5%E7%9C%8C&use_category=%E9%81%93%E8%B7%AF&min_price=50000000&max_price=200000000&min_floor_area=500&limit=10",
		"")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "高知県", captured.Prefecture)
	assert.Equal(t, "道路", captured.UseType)
	assert.Equal(t, int64(50_000_000), captured.MinPrice)
	assert.Equal(t, int64(200_000_000), captured.MaxPrice)
	assert.InDelta(t, 500.0, captured.MinFloorArea, 1e-9)
	assert.Equal(t, 10, captured.Limit)

	var resp struct {
		Tenders []tender.Tender `json:"tenders"`
		Count   int             `json:"count"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Tenders, 1)
	assert.Equal(t, "T-1", resp.Tenders[0].ID)
}

func TestSearch_DefaultsAndCapsLimit(t *testing.T) {
	var captured tender.Filter
	repo := &fakeTenderRepo{
		search: func(_ context.Context, f tender.Filter) ([]tender.Tender, error) {
			captured = f
			return nil, nil
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders", h.Search) },
		http.MethodGet, "/api/v1/tenders", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxSearchLimit, captured.Limit)

	w = perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders", h.Search) },
		http.MethodGet, "/api/v1/tenders?limit=9999", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxSearchLimit, captured.Limit)
}

func TestSearch_EmptyResultIsArray(t *testing.T) {
	repo := &fakeTenderRepo{
		search: func(context.Context, tender.Filter) ([]tender.Tender, error) {
			return nil, nil
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders", h.Search) },
		http.MethodGet, "/api/v1/tenders", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tenders":[]`)
}

func TestGet_ReturnsTender(t *testing.T) {
	repo := &fakeTenderRepo{
		getByID: func(_ context.Context, id string) (*tender.Tender, error) {
			assert.Equal(t, "T-1", id)
			return sampleTender(), nil
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders/:id", h.Get) },
		http.MethodGet, "/api/v1/tenders/T-1", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp tender.Tender
	decodeBody(t, w, &resp)
	assert.Equal(t, "市道改良工事", resp.Title)
}

func TestGet_UnknownTenderIs404(t *testing.T) {
	repo := &fakeTenderRepo{
		getByID: func(context.Context, string) (*tender.Tender, error) {
			return nil, errors.New(errors.CodeTenderNotFound, "tender not found")
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders/:id", h.Get) },
		http.MethodGet, "/api/v1/tenders/missing", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp errorBody
	decodeBody(t, w, &resp)
	assert.Equal(t, string(errors.CodeTenderNotFound), resp.Code)
}

func TestFilterOptions_ReturnsDictionary(t *testing.T) {
	repo := &fakeTenderRepo{
		filterOptions: func(context.Context) (*tender.FilterOptions, error) {
			return &tender.FilterOptions{
				Prefectures: []string{"高知県", "愛媛県"},
				UseTypes:    []string{"道路", "学校"},
				PrefectureMunicipalities: map[string][]string{
					"高知県": {"高知市"},
				},
			}, nil
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/filters/options", h.FilterOptions) },
		http.MethodGet, "/api/v1/filters/options", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp tender.FilterOptions
	decodeBody(t, w, &resp)
	assert.Equal(t, []string{"高知県", "愛媛県"}, resp.Prefectures)
	assert.Equal(t, []string{"高知市"}, resp.PrefectureMunicipalities["高知県"])
}

func TestSearch_StoreFailureIsMasked(t *testing.T) {
	repo := &fakeTenderRepo{
		search: func(context.Context, tender.Filter) ([]tender.Tender, error) {
			return nil, errors.New(errors.CodeDatabaseError, "pq: relation does not exist")
		},
	}
	h := NewTenderHandler(repo, logging.NewNopLogger())

	w := perform(t, func(r *gin.Engine) { r.GET("/api/v1/tenders", h.Search) },
		http.MethodGet, "/api/v1/tenders", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation does not exist")
}
