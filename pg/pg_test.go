package pg

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/smoke404/smoketrack/models"
	"github.com/smoke404/smoketrack/test"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) *sqlx.DB {
	return test.RequirePg(t)
}

func createTestSite(t *testing.T, db *sqlx.DB, plan string, active bool) *models.Site {
	site := &models.Site{
		Slug:        models.GenerateSlug(6),
		Plan:        plan,
		BMCLink:     "https://pay.example/" + models.GenerateSlug(4),
		GameEnabled: true,
		IsActive:    active,
		Created:     time.Now(),
	}
	err := CreateSite(db, site)
	assert.Nil(t, err)
	return site
}

func TestSite(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanFree, true)

	// Test GetSite
	returnedSite, err := GetSite(db, site.Slug)
	assert.Nil(t, err)
	assert.Equal(t, site.Slug, returnedSite.Slug)
	assert.Equal(t, site.BMCLink, returnedSite.BMCLink)

	// slug matching is exact
	_, err = GetSite(db, "nope-"+site.Slug)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestSiteInactive(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanFree, false)

	// an inactive site resolves the same as a nonexistent one
	_, err := GetSite(db, site.Slug)
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestHitCounter(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanFree, true)
	month := models.MonthBucket(time.Now())

	// no counter row before the first hit
	_, err := GetHitCounter(db, site.ID, month)
	assert.Equal(t, sql.ErrNoRows, err)

	// Test IncrementHitCounter
	count, err := IncrementHitCounter(db, site.ID, month, models.FreeLimit)
	assert.Nil(t, err)
	assert.Equal(t, 1, count)

	count, err = IncrementHitCounter(db, site.ID, month, models.FreeLimit)
	assert.Nil(t, err)
	assert.Equal(t, 2, count)

	counter, err := GetHitCounter(db, site.ID, month)
	assert.Nil(t, err)
	assert.Equal(t, 2, counter.Count)
}

func TestHitCounterAtLimit(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanFree, true)
	month := models.MonthBucket(time.Now())

	err := SetHitCounter(db, site.ID, month, models.FreeLimit)
	assert.Nil(t, err)

	// the store refuses the increment once the limit is reached
	_, err = IncrementHitCounter(db, site.ID, month, models.FreeLimit)
	assert.Equal(t, sql.ErrNoRows, err)

	// and the counter is unchanged
	counter, err := GetHitCounter(db, site.ID, month)
	assert.Nil(t, err)
	assert.Equal(t, models.FreeLimit, counter.Count)
}

func TestErrorLog(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanFree, true)

	entry := &models.ErrorLog{
		SiteID:    site.ID,
		BrokenURL: "https://acme.test/old-page",
		Referrer:  "https://google.com",
		IPAddress: "203.0.113.9",
		UserAgent: "smoketrack-test",
		Country:   "US",
		Created:   time.Now(),
	}

	// Test CreateErrorLog
	err := CreateErrorLog(db, entry)
	assert.Nil(t, err)
	assert.NotZero(t, entry.ID)

	// Test GetErrorLogs
	logs, err := GetErrorLogs(db, map[string]interface{}{
		"site_id": site.ID,
	})
	assert.Nil(t, err)
	assert.Equal(t, "https://acme.test/old-page", logs[0].BrokenURL)
	assert.Equal(t, "US", logs[0].Country)
}

func TestSiteStat(t *testing.T) {
	db := setup(t)

	site := createTestSite(t, db, models.PlanPro, true)
	month := models.MonthBucket(time.Now())

	stat := &models.SiteStat{
		SiteID:  site.ID,
		Country: "DE",
		Month:   month,
		Counter: 1,
		Created: time.Now(),
	}

	// Test UpsertSiteStat
	err := UpsertSiteStat(db, stat)
	assert.Nil(t, err)
	err = UpsertSiteStat(db, stat)
	assert.Nil(t, err)

	// Test GetSiteStats
	stats, err := GetSiteStats(db, map[string]interface{}{
		"site_id": site.ID,
		"month":   month,
	})
	assert.Nil(t, err)
	assert.Equal(t, "DE", stats[0].Country)
	assert.Equal(t, 2, stats[0].Counter)
}
