package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/company"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

const accountColumns = `id, company_code, company_name, email, password_hash, is_active, created_at, updated_at`

type postgresAccountRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresAccountRepo constructs the PostgreSQL-backed account repository.
func NewPostgresAccountRepo(conn *postgres.Connection, log logging.Logger) company.AccountRepository {
	return &postgresAccountRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresAccountRepo) GetByEmail(ctx context.Context, email string) (*company.Account, error) {
	defer r.conn.ObserveQuery("account.get_by_email", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM companies WHERE email = $1 AND is_active = TRUE`, accountColumns)
	return r.getOne(ctx, query, email)
}

func (r *postgresAccountRepo) GetByID(ctx context.Context, id int64) (*company.Account, error) {
	defer r.conn.ObserveQuery("account.get_by_id", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1 AND is_active = TRUE`, accountColumns)
	return r.getOne(ctx, query, id)
}

func (r *postgresAccountRepo) getOne(ctx context.Context, query string, arg interface{}) (*company.Account, error) {
	var (
		a    company.Account
		code sql.NullString
	)
	err := r.executor.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &code, &a.CompanyName, &a.Email, &a.PasswordHash,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeCompanyNotFound, "company account not found")
	}
	if err != nil {
		r.log.Error("AccountRepo.getOne", logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load company account")
	}
	a.CompanyCode = code.String
	return &a, nil
}

func (r *postgresAccountRepo) Create(ctx context.Context, a *company.Account) error {
	defer r.conn.ObserveQuery("account.create", time.Now())

	query := `
		INSERT INTO companies (company_code, company_name, email, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.executor.QueryRowContext(ctx, query,
		a.CompanyCode, a.CompanyName, a.Email, a.PasswordHash, a.IsActive,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrap(err, errors.CodeConflict, "company account already exists")
		}
		r.log.Error("AccountRepo.Create", logging.String("email", a.Email), logging.Err(err))
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to create company account")
	}
	return nil
}

// isUniqueViolation detects a PostgreSQL unique-constraint error (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == "23505"
}
