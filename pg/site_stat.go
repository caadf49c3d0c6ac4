package pg

import (
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/smoke404/smoketrack/models"
)

// GetSiteStats lists aggregate rows. Recognized clauses: site_id, country,
// month.
func GetSiteStats(db *sqlx.DB, clauses map[string]interface{}) ([]models.SiteStat, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("*").
		From("site_stats").OrderBy("created desc")

	if siteID, ok := clauses["site_id"].(int64); ok {
		sb = sb.Where(squirrel.Eq{"site_id": siteID})
	}

	if country, ok := clauses["country"].(string); ok {
		sb = sb.Where(squirrel.Eq{"country": country})
	}

	if month, ok := clauses["month"].(string); ok {
		sb = sb.Where(squirrel.Eq{"month": month})
	}

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var stats []models.SiteStat
	if err := db.Select(&stats, sqlStr, args...); err != nil {
		return nil, err
	}
	return stats, nil
}

func UpsertSiteStat(db *sqlx.DB, stat *models.SiteStat) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Insert("site_stats").
		Columns("site_id, country, month, counter, properties, created, updated").
		Values(stat.SiteID, stat.Country, stat.Month, stat.Counter, stat.Properties, stat.Created, stat.Updated).
		Suffix(`ON CONFLICT ON CONSTRAINT site_stats_site_id_country_month_pkey DO UPDATE SET counter = site_stats.counter + 1, updated = NOW()`)

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return err
	}

	if _, err = db.Exec(sqlStr, args...); err != nil {
		return err
	}
	return nil
}
