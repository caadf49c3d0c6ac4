package test

import (
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/smoke404/smoketrack/middleware"
	"github.com/stretchr/testify/assert"
)

func GetTestPgURL() string {
	database := os.Getenv("DATABASE_URL")
	if database == "" {
		database = "postgres://localhost:12345/postgres?sslmode=disable"
	}
	return database
}

// RequirePg opens the test database, skipping the test when no
// $DATABASE_URL is configured.
func RequirePg(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("$DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", GetTestPgURL())
	assert.Nil(t, err)
	return db
}

// GetTestRouter builds a router configured the way the web binary
// configures it, minus the rate limiter and queue middleware.
func GetTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	router.Use(middleware.Database(GetTestPgURL()))
	return router
}
