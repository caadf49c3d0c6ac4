package track

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/smoke404/smoketrack/middleware"
	"github.com/smoke404/smoketrack/models"
	"github.com/smoke404/smoketrack/modules/queue"
	"github.com/smoke404/smoketrack/pg"
)

const XForwardedHeader = "X-Forwarded-For"

// TrackResponse is the accept outcome sent back to the agent.
type TrackResponse struct {
	RedirectURL string `json:"redirect_url"`
	HitCount    int    `json:"hit_count"`
	Limit       int    `json:"limit"`
	BMCLink     string `json:"bmc_link"`
}

// Track ingests one broken-link report: validate, resolve the site,
// enforce the monthly quota, persist the error log and answer with the
// interstitial redirect.
func Track(c *gin.Context) {
	var report models.Report
	if err := c.ShouldBindJSON(&report); err != nil {
		// an unreadable body carries no fields at all
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "Missing required fields: site, url",
		})
		return
	}

	res, err := submitReport(c, &report)
	if err != nil {
		switch e := err.(type) {
		case *ValidationError:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required fields: site, url",
			})
		case *NotFoundError:
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Site not found",
			})
		case *QuotaExceededError:
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "Monthly limit exceeded",
				"limit":   e.Limit,
				"current": e.Current,
			})
		default:
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// submitReport runs the per-report lifecycle. Every rejection is
// terminal with no side effects beyond the check that produced it.
func submitReport(c *gin.Context, report *models.Report) (*TrackResponse, error) {
	var missing []string
	if report.Site == "" {
		missing = append(missing, "site")
	}
	if report.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		// rejected before any store access
		return nil, &ValidationError{Fields: missing}
	}

	db := middleware.GetDB(c)

	site, err := pg.GetSite(db, report.Site)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Slug: report.Site}
	}
	if err != nil {
		return nil, errors.Wrap(err, "resolving site")
	}

	month := models.MonthBucket(time.Now())
	limit := models.PlanLimit(site.Plan)

	count, err := pg.IncrementHitCounter(db, site.ID, month, limit)
	if err == sql.ErrNoRows {
		// the store refused the increment: quota reached
		current := limit
		if counter, cerr := pg.GetHitCounter(db, site.ID, month); cerr == nil {
			current = counter.Count
		}
		return nil, &QuotaExceededError{Limit: limit, Current: current}
	}
	if err != nil {
		return nil, errors.Wrap(err, "incrementing hit counter")
	}

	country := report.Country
	if country == "" {
		country = models.DefaultCountry
	}

	entry := &models.ErrorLog{
		SiteID:    site.ID,
		BrokenURL: report.URL,
		Referrer:  report.Referrer,
		IPAddress: clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Country:   country,
		Created:   time.Now(),
	}
	if err := pg.CreateErrorLog(db, entry); err != nil {
		// an accepted report still answers with a redirect even when
		// the log append fails
		log.WithFields(log.Fields{
			"slug": site.Slug,
			"url":  report.URL,
		}).WithError(err).Error("error log append failed")
	}

	if qc := middleware.QueClient(c); qc != nil {
		if err := queue.DispatchSiteStatJob(qc, queue.SiteStatRequest{
			SiteID:  site.ID,
			Slug:    site.Slug,
			IP:      entry.IPAddress,
			Country: report.Country,
			Month:   month,
		}); err != nil {
			log.WithFields(log.Fields{
				"slug": site.Slug,
				"ip":   entry.IPAddress,
			}).WithError(err).Error("error sending site stat job")
		}
	}

	log.WithFields(log.Fields{
		"slug":      site.Slug,
		"url":       report.URL,
		"hit_count": count,
	}).Info("Tracked broken link")

	return &TrackResponse{
		RedirectURL: BuildRedirectURL(site.Slug, report.URL, site.BMCLink),
		HitCount:    count,
		Limit:       limit,
		BMCLink:     site.BMCLink,
	}, nil
}

// clientIP prefers the first hop of X-Forwarded-For and falls back to
// the transport-level peer address.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader(XForwardedHeader); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return c.ClientIP()
}
