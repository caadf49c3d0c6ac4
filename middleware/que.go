package middleware

import (
	"github.com/bgentry/que-go"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx"
)

const (
	pgxPoolKey   = "PgxPool"
	queClientKey = "QueClient"
)

func Que(pgxpool *pgx.ConnPool, qc *que.Client) gin.HandlerFunc {

	return func(c *gin.Context) {
		c.Set(pgxPoolKey, pgxpool)
		c.Set(queClientKey, qc)
		c.Next()
	}
}

// QueClient returns the request's que client, or nil when the queue
// middleware is not installed (tests, degraded deployments). Handlers
// treat a nil client as "dispatch nothing".
func QueClient(c *gin.Context) *que.Client {
	v, ok := c.Get(queClientKey)
	if !ok {
		return nil
	}
	qc, _ := v.(*que.Client)
	return qc
}
