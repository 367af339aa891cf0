package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewLogger_JSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger("prod", &buf).Info("booking confirmed", "booking_id", "bk-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booking confirmed", line["msg"])
	assert.Equal(t, "bk-1", line["booking_id"])
	assert.Equal(t, "bookingengine", line["service"])
}

func TestNewLogger_DevIsVerbose(t *testing.T) {
	var buf bytes.Buffer
	newLogger("dev", &buf).Debug("slot checked")
	assert.Contains(t, buf.String(), "slot checked")
}

func TestRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := Middleware{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	r := gin.New()
	r.Use(m.RequestID(), m.LoggerMiddleware())
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestReadyz(t *testing.T) {
	healthy := HealthHandlers{Checks: map[string]Check{
		"store": func(context.Context) error { return nil },
	}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	healthy.Readyz(c)
	assert.Equal(t, http.StatusOK, w.Code)

	broken := HealthHandlers{Checks: map[string]Check{
		"store": func(context.Context) error { return nil },
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}}
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	broken.Readyz(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.NotContains(t, w.Body.String(), `"store"`)
}
