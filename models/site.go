package models

import (
	"time"

	"github.com/guregu/null"
)

// Plan tiers a site can subscribe to.
const (
	PlanFree      = "free"
	PlanPro       = "pro"
	PlanUnlimited = "unlimited"
)

// Monthly hit quotas per plan.
const (
	FreeLimit      = 5000
	ProLimit       = 50000
	UnlimitedLimit = 999999
)

// DefaultCountry is recorded when a report carries no country.
const DefaultCountry = "US"

// Site is a customer site registered for broken-link tracking. Sites are
// administered elsewhere; the pipeline only reads them. An inactive site
// is treated the same as a nonexistent one.
type Site struct {
	ID          int64       `json:"id" db:"id"`
	Slug        string      `json:"slug" db:"slug"`
	Plan        string      `json:"plan" db:"plan"`
	BMCLink     string      `json:"bmc_link" db:"bmc_link"`
	GameEnabled bool        `json:"game_enabled" db:"game_enabled"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	Properties  PropertyMap `json:"properties" db:"properties"`
	Created     time.Time   `json:"created" db:"created"`
	Updated     null.Time   `json:"updated" db:"updated"`
}

// PlanLimit returns the monthly hit quota for a plan. Unknown or empty
// plans resolve to the unlimited tier rather than fail.
func PlanLimit(plan string) int {
	switch plan {
	case PlanFree:
		return FreeLimit
	case PlanPro:
		return ProLimit
	default:
		return UnlimitedLimit
	}
}
