package models

import "time"

// ErrorLog is the durable record of one accepted broken-URL report.
// Rows are append-only: the pipeline never updates or deletes them.
type ErrorLog struct {
	ID        int64     `json:"id" db:"id"`
	SiteID    int64     `json:"site_id" db:"site_id"`
	BrokenURL string    `json:"broken_url" db:"broken_url"`
	Referrer  string    `json:"referrer" db:"referrer"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	Country   string    `json:"country" db:"country"`
	Created   time.Time `json:"created" db:"created"`
}
