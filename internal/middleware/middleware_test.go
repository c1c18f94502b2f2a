package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	promMw := NewPrometheusMiddleware("test", reg)
	r.Use(NewRequestLogger().Handler())
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r, reg)

	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"trace": c.GetString(TraceIDKey)}) })
	r.GET("/fail", func(c *gin.Context) { c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"}) })
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(reg)

	assert.Equal(t, http.StatusOK, get(r, "/ok").Code)
	assert.Equal(t, http.StatusInternalServerError, get(r, "/fail").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/nowhere").Code)

	families, err := reg.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range families {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Equal(t, "Длительность HTTP-запросов.", mf.GetHelp())
			// /ok, /fail и неизвестный маршрут под общей меткой
			assert.Len(t, mf.GetMetric(), 3)
		case "test_http_request_errors_total":
			errorsFound = true
			assert.Len(t, mf.GetMetric(), 2)
		}
	}
	assert.True(t, durationFound, "Duration metric not found")
	assert.True(t, errorsFound, "Errors metric not found")
}

func TestPrometheusMiddleware_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(reg)
	get(r, "/ok")

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_inflight")
}

func TestRequestLogger_SetsTraceID(t *testing.T) {
	r := newRouter(prometheus.NewRegistry())
	w := get(r, "/ok")

	traceID := w.Header().Get("X-Trace-Id")
	require.NotEmpty(t, traceID)
	assert.JSONEq(t, `{"trace":"`+traceID+`"}`, w.Body.String())
}
