package company

import (
	"context"
	"time"
)

// Account is a registered construction company that can log in and request
// predictions.  Credentials are stored as bcrypt hashes; the plain password
// never leaves the transport layer.
type Account struct {
	ID           int64     `json:"company_id"`
	CompanyCode  string    `json:"company_code"`
	CompanyName  string    `json:"company_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountRepository defines the persistence contract for company accounts.
type AccountRepository interface {
	// GetByEmail returns the active account with the given email address, or
	// a CodeCompanyNotFound AppError when none exists.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID returns the active account with the given identifier, or a
	// CodeCompanyNotFound AppError when none exists.
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Create persists a new account and fills in its generated fields.
	Create(ctx context.Context, a *Account) error
}
