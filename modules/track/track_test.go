package track

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smoke404/smoketrack/models"
	"github.com/smoke404/smoketrack/pg"
	"github.com/smoke404/smoketrack/test"
	"github.com/stretchr/testify/assert"
)

func postReport(router http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/track", strings.NewReader(body))
	req.Header.Add("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var res map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &res)
	assert.Nil(t, err, "Failed to parse response.")
	return res
}

func TestTrackMissingFields(t *testing.T) {
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	// missing url rejects before any store access, site validity aside
	for _, body := range []string{
		`{}`,
		`{"site":"acme"}`,
		`{"url":"/old-page"}`,
		``,
	} {
		w := postReport(router, body)
		assert.Equal(t, 400, w.Code)
		res := decodeBody(t, w)
		assert.Equal(t, "Missing required fields: site, url", res["error"])
	}
}

func TestTrackMethodNotAllowed(t *testing.T) {
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/track", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, 405, w.Code)
	res := decodeBody(t, w)
	assert.Equal(t, "Method not allowed", res["error"])
}

func TestTrackSiteNotFound(t *testing.T) {
	test.RequirePg(t)
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	w := postReport(router, fmt.Sprintf(`{"site":%q,"url":"/old-page"}`, models.GenerateSlug(12)))
	assert.Equal(t, 404, w.Code)
	res := decodeBody(t, w)
	assert.Equal(t, "Site not found", res["error"])
}

func TestTrackInactiveSite(t *testing.T) {
	db := test.RequirePg(t)
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	site := &models.Site{
		Slug:     models.GenerateSlug(6),
		Plan:     models.PlanFree,
		BMCLink:  "https://pay.example/acme",
		IsActive: false,
		Created:  time.Now(),
	}
	assert.Nil(t, pg.CreateSite(db, site))

	// deactivated sites reject identically to unknown ones
	w := postReport(router, fmt.Sprintf(`{"site":%q,"url":"/old-page"}`, site.Slug))
	assert.Equal(t, 404, w.Code)
}

func TestTrackAccept(t *testing.T) {
	db := test.RequirePg(t)
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	site := &models.Site{
		Slug:     models.GenerateSlug(6),
		Plan:     models.PlanFree,
		BMCLink:  "https://pay.example/acme",
		IsActive: true,
		Created:  time.Now(),
	}
	assert.Nil(t, pg.CreateSite(db, site))

	w := postReport(router, fmt.Sprintf(`{"site":%q,"url":"/old-page","referrer":"https://google.com"}`, site.Slug))
	assert.Equal(t, 200, w.Code)

	res := decodeBody(t, w)
	assert.Equal(t, float64(1), res["hit_count"])
	assert.Equal(t, float64(models.FreeLimit), res["limit"])
	assert.Equal(t, site.BMCLink, res["bmc_link"])

	slug, brokenURL, bmcLink, err := ParseRedirectURL(res["redirect_url"].(string))
	assert.Nil(t, err)
	assert.Equal(t, site.Slug, slug)
	assert.Equal(t, "/old-page", brokenURL)
	assert.Equal(t, site.BMCLink, bmcLink)

	// the counter reflects the increment
	month := models.MonthBucket(time.Now())
	counter, err := pg.GetHitCounter(db, site.ID, month)
	assert.Nil(t, err)
	assert.Equal(t, 1, counter.Count)

	// and the error log row was appended with the report metadata
	logs, err := pg.GetErrorLogs(db, map[string]interface{}{"site_id": site.ID})
	assert.Nil(t, err)
	assert.Equal(t, "/old-page", logs[0].BrokenURL)
	assert.Equal(t, "https://google.com", logs[0].Referrer)
	assert.Equal(t, models.DefaultCountry, logs[0].Country)

	// a second report counts up
	w = postReport(router, fmt.Sprintf(`{"site":%q,"url":"/old-page"}`, site.Slug))
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["hit_count"])
}

func TestTrackQuotaExceeded(t *testing.T) {
	db := test.RequirePg(t)
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	site := &models.Site{
		Slug:     models.GenerateSlug(6),
		Plan:     models.PlanFree,
		BMCLink:  "https://pay.example/acme",
		IsActive: true,
		Created:  time.Now(),
	}
	assert.Nil(t, pg.CreateSite(db, site))

	month := models.MonthBucket(time.Now())
	assert.Nil(t, pg.SetHitCounter(db, site.ID, month, models.FreeLimit))

	w := postReport(router, fmt.Sprintf(`{"site":%q,"url":"/old-page"}`, site.Slug))
	assert.Equal(t, 429, w.Code)

	res := decodeBody(t, w)
	assert.Equal(t, "Monthly limit exceeded", res["error"])
	assert.Equal(t, float64(models.FreeLimit), res["limit"])
	assert.Equal(t, float64(models.FreeLimit), res["current"])

	// rejection leaves counter and log untouched
	counter, err := pg.GetHitCounter(db, site.ID, month)
	assert.Nil(t, err)
	assert.Equal(t, models.FreeLimit, counter.Count)

	logs, err := pg.GetErrorLogs(db, map[string]interface{}{"site_id": site.ID})
	assert.Nil(t, err)
	assert.Len(t, logs, 0)
}

func TestTrackForwardedFor(t *testing.T) {
	db := test.RequirePg(t)
	router := test.GetTestRouter()
	router.POST("/api/track", Track)

	site := &models.Site{
		Slug:     models.GenerateSlug(6),
		Plan:     models.PlanPro,
		BMCLink:  "https://pay.example/acme",
		IsActive: true,
		Created:  time.Now(),
	}
	assert.Nil(t, pg.CreateSite(db, site))

	w := httptest.NewRecorder()
	body := fmt.Sprintf(`{"site":%q,"url":"/old-page","country":"DE"}`, site.Slug)
	req, _ := http.NewRequest("POST", "/api/track", strings.NewReader(body))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Add("User-Agent", "smoketrack-test")
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	logs, err := pg.GetErrorLogs(db, map[string]interface{}{"site_id": site.ID})
	assert.Nil(t, err)
	assert.Equal(t, "203.0.113.9", logs[0].IPAddress)
	assert.Equal(t, "smoketrack-test", logs[0].UserAgent)
	assert.Equal(t, "DE", logs[0].Country)
}
