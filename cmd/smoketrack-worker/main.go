package main

import (
	"encoding/json"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgentry/que-go"
	_ "github.com/heroku/x/hmetrics/onload"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/oschwald/geoip2-golang"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/smoke404/smoketrack/models"
	"github.com/smoke404/smoketrack/modules/queue"
	"github.com/smoke404/smoketrack/pg"
)

var (
	db  *sqlx.DB
	geo *geoip2.Reader
)

func init() {
	// Output to stdout instead of the default stderr
	log.SetOutput(os.Stdout)
}

// RunSiteStatJob folds one accepted report into the per-country monthly
// aggregates. Reports that carried no country are resolved from the
// client IP, falling back to the default.
func RunSiteStatJob(j *que.Job) error {
	var request queue.SiteStatRequest
	if err := json.Unmarshal(j.Args, &request); err != nil {
		return errors.Wrap(err, "Unable to unmarshal job arguments into SiteStatRequest: "+string(j.Args))
	}

	log.WithField("SiteStatRequest", request).Info("Processing SiteStatRequest")

	country := request.Country
	if country == "" {
		country = models.DefaultCountry
		if ip := net.ParseIP(request.IP); ip != nil && geo != nil {
			record, err := geo.Country(ip)
			if err != nil {
				log.WithFields(log.Fields{
					"ip":   request.IP,
					"slug": request.Slug,
				}).WithError(err).Error("Error getting Geo Info")
			} else if record.Country.IsoCode != "" {
				country = record.Country.IsoCode
			}
		}
	}

	stat := &models.SiteStat{
		SiteID:  request.SiteID,
		Country: country,
		Month:   request.Month,
		Counter: 1,
		Created: time.Now(),
	}
	return errors.Wrap(pg.UpsertSiteStat(db, stat), "upserting site stat")
}

func main() {
	_ = godotenv.Load()

	database := os.Getenv("DATABASE_URL")
	if database == "" {
		log.Fatal("$DATABASE_URL must be set")
	}

	pgxpool, qc, err := queue.Setup(database)
	if err != nil {
		log.Fatal("error initializing que-go")
	}
	defer pgxpool.Close()

	db, err = sqlx.Open("postgres", database)
	if err != nil {
		log.Fatalf("Error opening database: %q", err)
	}

	geoPath := os.Getenv("GEOIP_DB")
	if geoPath == "" {
		geoPath = "static/GeoLite2-Country.mmdb"
	}
	geo, err = geoip2.Open(geoPath)
	if err != nil {
		log.WithError(err).Warn("geoip database unavailable; using reported countries only")
	}

	wm := que.WorkMap{
		queue.SiteStatJob: RunSiteStatJob,
	}

	workers := que.NewWorkerPool(qc, wm, 2)
	go workers.Start()

	// Channel for catching shutdown signal
	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

	sig := <-term
	log.WithFields(log.Fields{
		"signal": sig,
	}).Info("Caught shutdown signal")

	workers.Shutdown()
}
