package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appPrediction "github.com/Allllisha/AI-Tender-Prediction/internal/application/prediction"
	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// PredictionHandler serves single and bulk win-probability evaluations.
type PredictionHandler struct {
	predictions *appPrediction.Service
	log         logging.Logger
}

func NewPredictionHandler(predictions *appPrediction.Service, log logging.Logger) *PredictionHandler {
	return &PredictionHandler{predictions: predictions, log: log.Named("handler.prediction")}
}

type predictRequest struct {
	TenderID    string `json:"tender_id" binding:"required"`
	BidAmount   int64  `json:"bid_amount" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
}

// Predict evaluates one bid against one tender.
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "tender_id, bid_amount and company_name are required")
		return
	}

	result, err := h.predictions.PredictSingle(c.Request.Context(), req.TenderID, req.BidAmount, req.CompanyName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type bulkPredictRequest struct {
	Prefecture   string `json:"prefecture"`
	Municipality string `json:"municipality"`
	UseCategory  string `json:"use_category"`
	BidAmount    int64  `json:"bid_amount" binding:"required"`
	CompanyName  string `json:"company_name" binding:"required"`
	UseRatio     bool   `json:"use_ratio"`
	MinPrice     int64  `json:"min_price"`
	MaxPrice     int64  `json:"max_price"`
}

// PredictBulk fans one pricing scenario out across matching tenders.
func (h *PredictionHandler) PredictBulk(c *gin.Context) {
	var req bulkPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "bid_amount and company_name are required")
		return
	}

	results, err := h.predictions.PredictBulk(c.Request.Context(), appPrediction.BulkRequest{
		Filter: tender.Filter{
			Prefecture:   req.Prefecture,
			Municipality: req.Municipality,
			UseType:      req.UseCategory,
		},
		BidAmount:   req.BidAmount,
		CompanyName: req.CompanyName,
		UseRatio:    req.UseRatio,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": results, "count": len(results)})
}
