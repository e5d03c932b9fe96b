package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
)

// CompanyHandler serves company strength profiles.
type CompanyHandler struct {
	profiles *appCompany.ProfileService
	log      logging.Logger
}

func NewCompanyHandler(profiles *appCompany.ProfileService, log logging.Logger) *CompanyHandler {
	return &CompanyHandler{profiles: profiles, log: log.Named("handler.company")}
}

// Strengths returns the aggregated strength profile for a contractor.  An
// unknown contractor yields a zero-valued profile, not a 404.
func (h *CompanyHandler) Strengths(c *gin.Context) {
	name := c.Query("company_name")
	if name == "" {
		respondBadRequest(c, "company_name is required")
		return
	}

	profile, err := h.profiles.GetProfile(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
