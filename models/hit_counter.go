package models

import (
	"time"

	"github.com/guregu/null"
)

// HitCounter tracks accepted reports for one site in one calendar month.
// Rows are created implicitly on a site's first hit of the month; the
// (site_id, month) key itself partitions time, so there is no rollover.
type HitCounter struct {
	SiteID  int64     `json:"site_id" db:"site_id"`
	Month   string    `json:"month" db:"month"`
	Count   int       `json:"count" db:"count"`
	Created time.Time `json:"created" db:"created"`
	Updated null.Time `json:"updated" db:"updated"`
}

// MonthBucket returns the calendar-month bucket key for t, in YYYY-MM form.
func MonthBucket(t time.Time) string {
	return t.UTC().Format("2006-01")
}
