package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// maxSearchLimit bounds one search response.
const maxSearchLimit = 200

// TenderHandler serves tender search, lookup, and the filter-option
// dictionary.
type TenderHandler struct {
	tenders tender.TenderRepository
	log     logging.Logger
}

func NewTenderHandler(tenders tender.TenderRepository, log logging.Logger) *TenderHandler {
	return &TenderHandler{tenders: tenders, log: log.Named("handler.tender")}
}

// Search lists open tenders matching the query filters, bid date ascending.
func (h *TenderHandler) Search(c *gin.Context) {
	f := tender.Filter{
		Prefecture:   c.Query("prefecture"),
		Municipality: c.Query("municipality"),
		UseType:      c.Query("use_category"),
		BidMethod:    c.Query("procurement_method"),
		MinFloorArea: queryFloat(c, "min_floor_area"),
		MaxFloorArea: queryFloat(c, "max_floor_area"),
		MinPrice:     queryInt64(c, "min_price"),
		MaxPrice:     queryInt64(c, "max_price"),
		Limit:        int(queryInt64(c, "limit")),
	}
	if f.Limit <= 0 || f.Limit > maxSearchLimit {
		f.Limit = maxSearchLimit
	}

	tenders, err := h.tenders.Search(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	if tenders == nil {
		tenders = []tender.Tender{}
	}
	c.JSON(http.StatusOK, gin.H{"tenders": tenders, "count": len(tenders)})
}

// Get returns one tender by identifier.
func (h *TenderHandler) Get(c *gin.Context) {
	t, err := h.tenders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// FilterOptions returns the distinct attribute values for building search
// filters.
func (h *TenderHandler) FilterOptions(c *gin.Context) {
	opts, err := h.tenders.FilterOptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, opts)
}

func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil {
		return 0
	}
	return v
}

func queryInt64(c *gin.Context, key string) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
