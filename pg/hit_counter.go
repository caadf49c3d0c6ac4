package pg

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/smoke404/smoketrack/models"
)

// GetHitCounter returns the counter for a site and month bucket, or
// sql.ErrNoRows when the site has no hits recorded for that month yet.
func GetHitCounter(db *sqlx.DB, siteID int64, month string) (*models.HitCounter, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("site_id, month, count, created, updated").
		From("hit_counters").
		Where(squirrel.Eq{"site_id": siteID}).
		Where(squirrel.Eq{"month": month})

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var counter models.HitCounter
	if err := db.Get(&counter, sqlStr, args...); err != nil {
		return nil, err
	}
	return &counter, nil
}

// IncrementHitCounter bumps the counter for (site_id, month) by one,
// creating the row on the site's first hit of the month. The quota
// condition lives inside the statement: the update only applies while
// count < limit, so the check and the increment are a single atomic
// operation and concurrent reports cannot push the counter past the
// limit. sql.ErrNoRows means the store refused the increment.
func IncrementHitCounter(db *sqlx.DB, siteID int64, month string, limit int) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Insert("hit_counters").
		Columns("site_id, month, count, created").
		Values(siteID, month, 1, time.Now()).
		Suffix(`ON CONFLICT ON CONSTRAINT hit_counters_site_id_month_pkey
			DO UPDATE SET count = hit_counters.count + 1, updated = NOW()
			WHERE hit_counters.count < ?`, limit).
		Suffix("RETURNING count")

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := db.Get(&count, sqlStr, args...); err != nil {
		return 0, err
	}
	return count, nil
}

// SetHitCounter pins a counter to an absolute value. Administrative
// backfill only; the ingest path never calls it.
func SetHitCounter(db *sqlx.DB, siteID int64, month string, count int) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Insert("hit_counters").
		Columns("site_id, month, count, created").
		Values(siteID, month, count, time.Now()).
		Suffix(`ON CONFLICT ON CONSTRAINT hit_counters_site_id_month_pkey
			DO UPDATE SET count = EXCLUDED.count, updated = NOW()`)

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return err
	}

	if _, err = db.Exec(sqlStr, args...); err != nil {
		return err
	}
	return nil
}
