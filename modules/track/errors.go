package track

import (
	"fmt"
	"strings"
)

// ValidationError means the caller supplied an incomplete report. Always
// recoverable; surfaced as 400.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// NotFoundError means the report named an unknown or deactivated site.
// Surfaced as 404.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("site not found: %s", e.Slug)
}

// QuotaExceededError is the policy rejection: the site's monthly quota is
// used up. Surfaced as 429 with enough context for the caller to back off
// until next month.
type QuotaExceededError struct {
	Limit   int
	Current int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly limit exceeded: %d of %d", e.Current, e.Limit)
}
