package track

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// SessionRequest is gameplay telemetry from the interstitial page.
type SessionRequest struct {
	SessionID  string `json:"session_id"`
	Score      int    `json:"score"`
	TipClicked bool   `json:"tip_clicked"`
	Theme      string `json:"theme"`
}

// Session is a stateless pass-through: whatever arrives is logged and
// acknowledged. No validation, no persistence.
func Session(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithError(err).Debug("unreadable session payload")
	}

	log.WithFields(log.Fields{
		"session_id":  req.SessionID,
		"score":       req.Score,
		"tip_clicked": req.TipClicked,
		"theme":       req.Theme,
	}).Info("Session telemetry")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
