package company

import (
	"context"
	"strings"
	"time"

	domainCompany "github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/auth"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

// loginFailedMessage deliberately does not distinguish an unknown email from
// a wrong password.
const loginFailedMessage = "メールアドレスまたはパスワードが正しくありません"

// LoginResult is the successful outcome of a credential check.
type LoginResult struct {
	Token       string
	ExpiresIn   time.Duration
	CompanyID   int64
	CompanyName string
	Email       string
}

// AuthService authenticates company accounts and issues API tokens.
type AuthService struct {
	accounts domainCompany.AccountRepository
	tokens   *auth.TokenManager
	log      logging.Logger
}

// NewAuthService wires account authentication over the account store.
func NewAuthService(accounts domainCompany.AccountRepository, tokens *auth.TokenManager, log logging.Logger) *AuthService {
	return &AuthService{accounts: accounts, tokens: tokens, log: log.Named("auth")}
}

// Login verifies the credentials and issues a signed token.  Any failure
// surfaces as the same unauthorized error so callers cannot probe which
// emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New(errors.CodeUnauthorized, loginFailedMessage)
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.CodeCompanyNotFound) {
			return nil, errors.New(errors.CodeUnauthorized, loginFailedMessage)
		}
		return nil, err
	}
	if !auth.VerifyPassword(account.PasswordHash, password) {
		s.log.Warn("Password verification failed", logging.String("email", email))
		return nil, errors.New(errors.CodeUnauthorized, loginFailedMessage)
	}

	token, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:       token,
		ExpiresIn:   s.tokens.TokenTTL(),
		CompanyID:   account.ID,
		CompanyName: account.CompanyName,
		Email:       account.Email,
	}, nil
}

// GetAccount returns the account behind an authenticated request.
func (s *AuthService) GetAccount(ctx context.Context, companyID int64) (*domainCompany.Account, error) {
	return s.accounts.GetByID(ctx, companyID)
}

// Register creates a new company account with a hashed password.  Used by
// the create-user command; the API has no self-service signup.
func (s *AuthService) Register(ctx context.Context, code, name, email, password string) (*domainCompany.Account, error) {
	if code == "" || name == "" || email == "" {
		return nil, errors.New(errors.CodeInvalidParam, "company_code, company_name and email are required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &domainCompany.Account{
		CompanyCode:  code,
		CompanyName:  name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.log.Info("Company account created",
		logging.String("company_code", code), logging.Int64("company_id", account.ID))
	return account, nil
}
