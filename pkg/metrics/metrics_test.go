package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_ObserveDecision(t *testing.T) {
	m := New("demo")

	m.ObserveDecision(true, "none")
	m.ObserveDecision(false, "unauthenticated")
	m.ObserveDecision(false, "unauthenticated")

	body := scrape(t, m)
	assert.Contains(t, body, `resource_server_auth_decisions_total{application="demo",outcome="allowed",reason="none"} 1`)
	assert.Contains(t, body, `resource_server_auth_decisions_total{application="demo",outcome="denied",reason="unauthenticated"} 2`)
}

func TestMetrics_Middleware(t *testing.T) {
	m := New("demo")

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/items/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `resource_server_http_requests_total{application="demo",method="GET",route="/api/items/:id",status="200"} 2`)
	assert.Contains(t, body, `resource_server_http_request_duration_seconds_count{application="demo",method="GET",route="/api/items/:id"} 2`)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() { m.ObserveDecision(true, "none") })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
