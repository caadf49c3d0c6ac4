package track

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/smoke404/smoketrack/test"
	"github.com/stretchr/testify/assert"
)

func TestSession(t *testing.T) {
	router := test.GetTestRouter()
	router.POST("/api/session", Session)

	// anything is acknowledged, valid payload or not
	for _, body := range []string{
		`{"session_id":"abc","score":120,"tip_clicked":true,"theme":"dark"}`,
		`{}`,
		`not even json`,
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/session", strings.NewReader(body))
		req.Header.Add("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)

		var res map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &res)
		assert.Nil(t, err)
		assert.Equal(t, true, res["success"])
	}
}

func TestLogsUnauthorized(t *testing.T) {
	if os.Getenv("SECRET") != "" {
		t.Skip("$SECRET is set")
	}
	router := test.GetTestRouter()
	router.GET("/api/logs", Logs)

	// no $SECRET configured means the route never opens
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/logs?secret=guess", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, 401, w.Code)
}
