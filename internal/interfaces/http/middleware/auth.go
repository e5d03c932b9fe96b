// Package middleware provides the gin middleware chain for the HTTP API:
// bearer-token authentication, CORS, and request logging with metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

const (
	companyIDKey    = "company_id"
	companyEmailKey = "company_email"
)

// AuthMiddleware authenticates requests with an HS256 bearer token and puts
// the verified company identity on the request context.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	log    logging.Logger
}

// NewAuthMiddleware builds the bearer-token guard.
func NewAuthMiddleware(tokens *auth.TokenManager, log logging.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, log: log.Named("http.auth")}
}

// Handler rejects requests without a valid bearer token.  Verification
// details are never echoed back to the client.
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := m.tokens.Verify(raw)
		if err != nil {
			m.log.Warn("Token verification failed",
				logging.Err(err), logging.String("path", c.FullPath()))
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(companyIDKey, claims.CompanyID)
		c.Set(companyEmailKey, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    string(errors.CodeUnauthorized),
		"message": msg,
	})
}

// CompanyID returns the authenticated company's identifier, or 0 when the
// request passed through no auth middleware.
func CompanyID(c *gin.Context) int64 {
	if v, ok := c.Get(companyIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// CompanyEmail returns the authenticated company's email address.
func CompanyEmail(c *gin.Context) string {
	if v, ok := c.Get(companyEmailKey); ok {
		if email, ok := v.(string); ok {
			return email
		}
	}
	return ""
}
