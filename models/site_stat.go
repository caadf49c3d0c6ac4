package models

import (
	"time"

	"github.com/guregu/null"
)

// SiteStat aggregates accepted reports per site, country and month. It is
// maintained by the worker so error_logs can stay append-only.
type SiteStat struct {
	SiteID     int64       `json:"site_id" db:"site_id"`
	Country    string      `json:"country" db:"country"`
	Month      string      `json:"month" db:"month"`
	Counter    int         `json:"counter" db:"counter"`
	Properties PropertyMap `json:"properties" db:"properties"`
	Created    time.Time   `json:"created" db:"created"`
	Updated    null.Time   `json:"updated" db:"updated"`
}
