package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

const dbKey = "DB"

// Database opens the shared connection pool and injects it into every
// request context.
func Database(databaseURL string) gin.HandlerFunc {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		panic(err)
	}

	return func(c *gin.Context) {
		c.Set(dbKey, db)
		c.Next()
	}
}

func GetDB(c *gin.Context) *sqlx.DB {
	return c.Value(dbKey).(*sqlx.DB)
}
