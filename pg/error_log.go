package pg

import (
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/smoke404/smoketrack/models"
)

func CreateErrorLog(db *sqlx.DB, entry *models.ErrorLog) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Insert("error_logs").
		Columns("site_id, broken_url, referrer, ip_address, user_agent, country, created").
		Values(entry.SiteID, entry.BrokenURL, entry.Referrer, entry.IPAddress, entry.UserAgent, entry.Country, entry.Created).
		Suffix("RETURNING id")

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return err
	}

	return db.Get(&entry.ID, sqlStr, args...)
}

// GetErrorLogs lists log rows newest-first. Recognized clauses: site_id,
// country, _limit, _offset.
func GetErrorLogs(db *sqlx.DB, clauses map[string]interface{}) ([]models.ErrorLog, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("id, site_id, broken_url, referrer, ip_address, user_agent, country, created").
		From("error_logs").OrderBy("created desc")

	if siteID, ok := clauses["site_id"].(int64); ok {
		sb = sb.Where(squirrel.Eq{"site_id": siteID})
	}

	if country, ok := clauses["country"].(string); ok {
		sb = sb.Where(squirrel.Eq{"country": country})
	}

	if limit, ok := clauses["_limit"].(uint64); ok {
		sb = sb.Limit(limit)
	}

	if offset, ok := clauses["_offset"].(uint64); ok {
		sb = sb.Offset(offset)
	}

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var logs []models.ErrorLog
	if err := db.Select(&logs, sqlStr, args...); err != nil {
		return nil, err
	}
	return logs, nil
}
