package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_ServesMetrics(t *testing.T) {
	reg := NewRegistry()
	NewHTTPMetrics(reg)
	NewStoreMetrics(reg)
	NewSessionMetrics(reg)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStoreMetrics_Observe(t *testing.T) {
	reg := NewRegistry()
	m := NewStoreMetrics(reg)

	m.Observe("load", time.Now(), 42, nil)
	m.Observe("save", time.Now(), -1, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("load", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("save", "error")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DocumentBytes))
}

func TestStoreMetrics_NilReceiver(t *testing.T) {
	var m *StoreMetrics
	assert.NotPanics(t, func() { m.Observe("load", time.Now(), 1, nil) })
}

func TestSessionMetrics_Record(t *testing.T) {
	reg := NewRegistry()
	m := NewSessionMetrics(reg)

	m.Record("add", 1)
	m.Record("add", 2)
	m.Record("clear", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("add")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Stored))
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	reg := NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/state", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, path := range []string{"/api/state", "/api/state", "/health/live"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/state", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal), "health checks are not recorded")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}

func TestNewSet_RegistersAllCollectors(t *testing.T) {
	set := NewSet()
	set.Sessions.Record("add", 3)

	rec := httptest.NewRecorder()
	set.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), "sessiontimer_sessions_stored 3")
	assert.Contains(t, rec.Body.String(), "sessiontimer_http_in_flight_requests")
}
