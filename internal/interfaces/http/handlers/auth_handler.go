package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appCompany "github.com/Allllisha/AI-Tender-Prediction/internal/application/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/prometheus"
	"github.com/Allllisha/AI-Tender-Prediction/internal/interfaces/http/middleware"
)

// AuthHandler serves login and the authenticated-identity endpoint.
type AuthHandler struct {
	auth    *appCompany.AuthService
	metrics *prometheus.AppMetrics
	log     logging.Logger
}

// NewAuthHandler builds the handler. metrics may be nil.
func NewAuthHandler(auth *appCompany.AuthService, metrics *prometheus.AppMetrics, log logging.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics, log: log.Named("handler.auth")}
}

func (h *AuthHandler) countAttempt(result string) {
	if h.metrics != nil {
		h.metrics.AuthAttemptsTotal.WithLabelValues(result).Inc()
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.countAttempt("invalid_request")
		respondBadRequest(c, "email and password are required")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.countAttempt("failure")
		respondError(c, err)
		return
	}
	h.countAttempt("success")

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresIn:   int64(result.ExpiresIn.Seconds()),
		CompanyID:   result.CompanyID,
		CompanyName: result.CompanyName,
		Email:       result.Email,
	})
}

// Me returns the account behind the presented token.
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.auth.GetAccount(c.Request.Context(), middleware.CompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
