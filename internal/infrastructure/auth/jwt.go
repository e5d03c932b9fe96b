package auth

import (
	stdliberrors "errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Allllisha/AI-Tender-Prediction/internal/config"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// Claims carried by an access token. CompanyID identifies the account the
// token was issued for.
type Claims struct {
	CompanyID int64  `json:"company_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a TokenManager from the auth configuration.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New(errors.CodeInvalidParam, "jwt secret must not be empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(cfg.JWTSecret), ttl: ttl}, nil
}

// Issue signs a new access token for the given account.
func (m *TokenManager) Issue(companyID int64, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		CompanyID: companyID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(companyID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify parses and validates a raw token, returning its claims.
func (m *TokenManager) Verify(rawToken string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf(errors.CodeUnauthorized, "unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if stdliberrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(err, errors.CodeUnauthorized, "token expired")
		}
		return nil, errors.Wrap(err, errors.CodeUnauthorized, "invalid token")
	}
	if !token.Valid {
		return nil, errors.New(errors.CodeUnauthorized, "invalid token")
	}
	if claims.CompanyID == 0 {
		return nil, errors.New(errors.CodeUnauthorized, "token missing company_id claim")
	}
	return claims, nil
}

// TokenTTL returns the lifetime applied to newly issued tokens.
func (m *TokenManager) TokenTTL() time.Duration {
	return m.ttl
}
