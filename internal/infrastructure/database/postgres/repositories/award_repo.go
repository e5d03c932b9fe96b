package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/database/postgres"
	"github.com/Allllisha/AI-Tender-Prediction/internal/infrastructure/monitoring/logging"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

const awardColumns = `id, tender_id, project_name, publisher, prefecture, municipality, address,
	use_type, method, floor_area_m2, award_date, contractor,
	award_amount_jpy, estimated_price_jpy, win_rate, participants_count, technical_score`

// defaultCandidateLimit bounds the working set handed to the comparable
// selector when the query carries no limit.
const defaultCandidateLimit = 2000

type postgresAwardRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresAwardRepo constructs the PostgreSQL-backed award repository.
func NewPostgresAwardRepo(conn *postgres.Connection, log logging.Logger) tender.AwardRepository {
	return &postgresAwardRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresAwardRepo) FindCandidates(ctx context.Context, q tender.CandidateQuery) ([]tender.Award, error) {
	defer r.conn.ObserveQuery("award.find_candidates", time.Now())

	where := "WHERE award_amount_jpy > 0"
	args := []interface{}{}

	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.ExcludeContractor != "" {
		where += " AND contractor <> " + next(q.ExcludeContractor)
	}
	if q.MinAmount > 0 {
		where += " AND award_amount_jpy >= " + next(q.MinAmount)
	}
	if q.MaxAmount > 0 {
		where += " AND award_amount_jpy <= " + next(q.MaxAmount)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM awards %s ORDER BY award_date DESC LIMIT %s`,
		awardColumns, where, next(limit))

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("AwardRepo.FindCandidates", logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query award candidates")
	}
	defer rows.Close()

	return r.collectAwards(rows)
}

func (r *postgresAwardRepo) FindByContractor(ctx context.Context, contractor string) ([]tender.Award, error) {
	defer r.conn.ObserveQuery("award.find_by_contractor", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM awards WHERE contractor = $1 ORDER BY award_date DESC`, awardColumns)

	rows, err := r.executor.QueryContext(ctx, query, contractor)
	if err != nil {
		r.log.Error("AwardRepo.FindByContractor", logging.String("contractor", contractor), logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query contractor awards")
	}
	defer rows.Close()

	return r.collectAwards(rows)
}

func (r *postgresAwardRepo) BulkInsert(ctx context.Context, awards []tender.Award) error {
	if len(awards) == 0 {
		return nil
	}
	defer r.conn.ObserveQuery("award.bulk_insert", time.Now())

	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO awards (
			tender_id, project_name, publisher, prefecture, municipality, address,
			use_type, method, floor_area_m2, award_date, contractor,
			award_amount_jpy, estimated_price_jpy, win_rate, participants_count, technical_score
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

	for i := range awards {
		a := &awards[i]
		_, err := tx.ExecContext(ctx, query,
			a.TenderID, a.ProjectName, a.Publisher, a.Prefecture, a.Municipality, a.Address,
			a.UseType, a.Method, a.FloorAreaM2, a.AwardDate, a.Contractor,
			a.ContractAmount, a.EstimatedPrice, a.WinRate, a.ParticipantsCount, a.TechnicalScore,
		)
		if err != nil {
			r.log.Error("AwardRepo.BulkInsert", logging.String("project", a.ProjectName), logging.Err(err))
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert award")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to commit insert transaction")
	}
	return nil
}

func (r *postgresAwardRepo) collectAwards(rows *sql.Rows) ([]tender.Award, error) {
	var result []tender.Award
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			r.log.Error("AwardRepo.collectAwards: scan", logging.Err(err))
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan award row")
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "award row iteration failed")
	}
	return result, nil
}

// scanAward maps one awards row onto the domain entity, folding SQL NULLs
// into zero values or nil pointers.
func scanAward(s scanner) (*tender.Award, error) {
	var (
		a            tender.Award
		tenderID     sql.NullString
		projectName  sql.NullString
		publisher    sql.NullString
		prefecture   sql.NullString
		muni         sql.NullString
		addr         sql.NullString
		useType      sql.NullString
		method       sql.NullString
		area         sql.NullFloat64
		awardDate    sql.NullTime
		estimated    sql.NullInt64
		winRate      sql.NullFloat64
		participants sql.NullInt64
		techScore    sql.NullFloat64
	)

	err := s.Scan(
		&a.ID, &tenderID, &projectName, &publisher, &prefecture, &muni, &addr,
		&useType, &method, &area, &awardDate, &a.Contractor,
		&a.ContractAmount, &estimated, &winRate, &participants, &techScore,
	)
	if err != nil {
		return nil, err
	}

	a.TenderID = tenderID.String
	a.ProjectName = projectName.String
	a.Publisher = publisher.String
	a.Prefecture = prefecture.String
	a.Municipality = muni.String
	a.Address = addr.String
	a.UseType = useType.String
	a.Method = method.String
	a.AwardDate = awardDate.Time
	if area.Valid {
		a.FloorAreaM2 = &area.Float64
	}
	if estimated.Valid {
		a.EstimatedPrice = &estimated.Int64
	}
	if winRate.Valid {
		a.WinRate = &winRate.Float64
	}
	if participants.Valid {
		n := int(participants.Int64)
		a.ParticipantsCount = &n
	}
	if techScore.Valid {
		a.TechnicalScore = &techScore.Float64
	}
	return &a, nil
}
