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

const tenderColumns = `tender_id, title, publisher, prefecture, municipality, address,
	use_type, bid_method, floor_area_m2, bid_date, notice_date,
	estimated_price, minimum_price, jv_allowed, origin_url`

// defaultSearchLimit caps tender searches when the filter carries no limit.
const defaultSearchLimit = 1000

type postgresTenderRepo struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresTenderRepo constructs the PostgreSQL-backed tender repository.
func NewPostgresTenderRepo(conn *postgres.Connection, log logging.Logger) tender.TenderRepository {
	return &postgresTenderRepo{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *postgresTenderRepo) GetByID(ctx context.Context, id string) (*tender.Tender, error) {
	defer r.conn.ObserveQuery("tender.get_by_id", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM open_tenders WHERE tender_id = $1`, tenderColumns)
	row := r.executor.QueryRowContext(ctx, query, id)

	t, err := scanTender(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.CodeTenderNotFound, "tender not found").
			WithDetail(fmt.Sprintf("tender_id=%s", id))
	}
	if err != nil {
		r.log.Error("TenderRepo.GetByID", logging.String("tender_id", id), logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load tender")
	}
	return t, nil
}

func (r *postgresTenderRepo) Search(ctx context.Context, f tender.Filter) ([]tender.Tender, error) {
	defer r.conn.ObserveQuery("tender.search", time.Now())

	where := "WHERE bid_date >= CURRENT_DATE"
	args := []interface{}{}

	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Prefecture != "" {
		where += " AND prefecture = " + next(f.Prefecture)
	}
	if f.Municipality != "" {
		where += " AND municipality = " + next(f.Municipality)
	}
	if f.UseType != "" {
		where += " AND use_type = " + next(f.UseType)
	}
	if f.BidMethod != "" {
		where += " AND bid_method = " + next(f.BidMethod)
	}
	if f.MinFloorArea > 0 {
		where += " AND floor_area_m2 >= " + next(f.MinFloorArea)
	}
	if f.MaxFloorArea > 0 {
		where += " AND floor_area_m2 <= " + next(f.MaxFloorArea)
	}
	if f.MinPrice > 0 {
		where += " AND estimated_price >= " + next(f.MinPrice)
	}
	if f.MaxPrice > 0 {
		where += " AND estimated_price <= " + next(f.MaxPrice)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := fmt.Sprintf(`SELECT %s FROM open_tenders %s ORDER BY bid_date ASC LIMIT %s`,
		tenderColumns, where, next(limit))

	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("TenderRepo.Search", logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to search tenders")
	}
	defer rows.Close()

	var result []tender.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			r.log.Error("TenderRepo.Search: scan", logging.Err(err))
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan tender row")
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "tender row iteration failed")
	}
	return result, nil
}

func (r *postgresTenderRepo) FilterOptions(ctx context.Context) (*tender.FilterOptions, error) {
	defer r.conn.ObserveQuery("tender.filter_options", time.Now())

	opts := &tender.FilterOptions{
		PrefectureMunicipalities: make(map[string][]string),
	}

	var err error
	if opts.Prefectures, err = r.distinctColumn(ctx, "prefecture"); err != nil {
		return nil, err
	}
	if opts.Municipalities, err = r.distinctColumn(ctx, "municipality"); err != nil {
		return nil, err
	}
	if opts.UseTypes, err = r.distinctColumn(ctx, "use_type"); err != nil {
		return nil, err
	}

	rows, err := r.executor.QueryContext(ctx, `
		SELECT DISTINCT prefecture, municipality FROM open_tenders
		WHERE prefecture IS NOT NULL AND prefecture <> ''
		  AND municipality IS NOT NULL AND municipality <> ''
		ORDER BY prefecture, municipality`)
	if err != nil {
		r.log.Error("TenderRepo.FilterOptions: pairs", logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load filter options")
	}
	defer rows.Close()

	for rows.Next() {
		var pref, muni string
		if err := rows.Scan(&pref, &muni); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan filter option row")
		}
		opts.PrefectureMunicipalities[pref] = append(opts.PrefectureMunicipalities[pref], muni)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "filter option iteration failed")
	}
	return opts, nil
}

func (r *postgresTenderRepo) distinctColumn(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s FROM open_tenders
		WHERE %s IS NOT NULL AND %s <> ''
		ORDER BY %s`, column, column, column, column)

	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("TenderRepo.distinctColumn", logging.String("column", column), logging.Err(err))
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to load distinct values")
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan distinct value")
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *postgresTenderRepo) BulkUpsert(ctx context.Context, tenders []tender.Tender) error {
	if len(tenders) == 0 {
		return nil
	}
	defer r.conn.ObserveQuery("tender.bulk_upsert", time.Now())

	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	query := `
		INSERT INTO open_tenders (
			tender_id, title, publisher, prefecture, municipality, address,
			use_type, bid_method, floor_area_m2, bid_date, notice_date,
			estimated_price, minimum_price, jv_allowed, origin_url
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (tender_id) DO UPDATE SET
			title = EXCLUDED.title,
			publisher = EXCLUDED.publisher,
			prefecture = EXCLUDED.prefecture,
			municipality = EXCLUDED.municipality,
			address = EXCLUDED.address,
			use_type = EXCLUDED.use_type,
			bid_method = EXCLUDED.bid_method,
			floor_area_m2 = EXCLUDED.floor_area_m2,
			bid_date = EXCLUDED.bid_date,
			notice_date = EXCLUDED.notice_date,
			estimated_price = EXCLUDED.estimated_price,
			minimum_price = EXCLUDED.minimum_price,
			jv_allowed = EXCLUDED.jv_allowed,
			origin_url = EXCLUDED.origin_url`

	for i := range tenders {
		t := &tenders[i]
		_, err := tx.ExecContext(ctx, query,
			t.ID, t.Title, t.Publisher, t.Prefecture, t.Municipality, t.Address,
			t.UseType, t.BidMethod, t.FloorAreaM2, t.BidDate, t.NoticeDate,
			t.EstimatedPrice, t.MinimumPrice, t.JVAllowed, t.OriginURL,
		)
		if err != nil {
			r.log.Error("TenderRepo.BulkUpsert", logging.String("tender_id", t.ID), logging.Err(err))
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to upsert tender")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to commit upsert transaction")
	}
	return nil
}

// scanTender maps one open_tenders row onto the domain entity, folding SQL
// NULLs into zero values or nil pointers.
func scanTender(s scanner) (*tender.Tender, error) {
	var (
		t          tender.Tender
		publisher  sql.NullString
		prefecture sql.NullString
		muni       sql.NullString
		addr       sql.NullString
		useType    sql.NullString
		method     sql.NullString
		area       sql.NullFloat64
		bidDate    sql.NullTime
		noticeDate sql.NullTime
		estimated  sql.NullInt64
		minPrice   sql.NullInt64
		originURL  sql.NullString
	)

	err := s.Scan(
		&t.ID, &t.Title, &publisher, &prefecture, &muni, &addr,
		&useType, &method, &area, &bidDate, &noticeDate,
		&estimated, &minPrice, &t.JVAllowed, &originURL,
	)
	if err != nil {
		return nil, err
	}

	t.Publisher = publisher.String
	t.Prefecture = prefecture.String
	t.Municipality = muni.String
	t.Address = addr.String
	t.UseType = useType.String
	t.BidMethod = method.String
	t.BidDate = bidDate.Time
	t.EstimatedPrice = estimated.Int64
	t.OriginURL = originURL.String
	if area.Valid {
		t.FloorAreaM2 = &area.Float64
	}
	if noticeDate.Valid {
		d := noticeDate.Time
		t.NoticeDate = &d
	}
	if minPrice.Valid {
		t.MinimumPrice = &minPrice.Int64
	}
	return &t, nil
}
