package track

import (
	"database/sql"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smoke404/smoketrack/middleware"
	"github.com/smoke404/smoketrack/pg"
)

var secret string

func init() {
	// secret in order to use the log listing route
	secret = os.Getenv("SECRET")
}

// Status reports whether the store is reachable.
func Status(c *gin.Context) {
	db := middleware.GetDB(c)
	if err := db.Ping(); err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"status": "NOT OK",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "OK",
	})
}

// Logs lists a site's recorded errors, newest first. Operator surface,
// guarded by $SECRET.
func Logs(c *gin.Context) {
	if secret == "" || c.Query("secret") != secret {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
		})
		return
	}

	db := middleware.GetDB(c)

	site, err := pg.GetSite(db, c.Query("site"))
	if err != nil {
		if err == sql.ErrNoRows {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Site not found",
			})
			return
		}
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	limit, offset, err := getLimitAndOffsetQueries(c)
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	clauses := make(map[string]interface{})
	clauses["site_id"] = site.ID
	clauses["_limit"] = limit
	clauses["_offset"] = offset
	logs, err := pg.GetErrorLogs(db, clauses)
	if err != nil {
		c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}

func getLimitAndOffsetQueries(c *gin.Context) (uint64, uint64, error) {
	limit := uint64(100)
	offset := uint64(0)
	var err error
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, 0, err
		}
	}
	if v := c.Query("offset"); v != "" {
		offset, err = strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, 0, err
		}
	}
	return limit, offset, nil
}
