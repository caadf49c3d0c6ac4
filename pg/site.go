package pg

import (
	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/smoke404/smoketrack/models"
)

// GetSite resolves an active site by its exact slug. Inactive sites are
// filtered out here, so callers see them as sql.ErrNoRows.
func GetSite(db *sqlx.DB, slug string) (*models.Site, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Select("id, slug, plan, bmc_link, game_enabled, is_active, properties, created, updated").
		From("sites").
		Where(squirrel.Eq{"slug": slug}).
		Where(squirrel.Eq{"is_active": true})

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var site models.Site
	if err := db.Get(&site, sqlStr, args...); err != nil {
		return nil, err
	}
	return &site, nil
}

func CreateSite(db *sqlx.DB, site *models.Site) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sb := psql.Insert("sites").
		Columns("slug, plan, bmc_link, game_enabled, is_active, created").
		Values(site.Slug, site.Plan, site.BMCLink, site.GameEnabled, site.IsActive, site.Created).
		Suffix("RETURNING id")

	sqlStr, args, err := sb.ToSql()
	if err != nil {
		return err
	}

	return db.Get(&site.ID, sqlStr, args...)
}
