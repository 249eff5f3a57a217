package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type middlewareMetrics struct {
	noopMetrics
	endpoint string
	status   int
	observed bool
}

func (m *middlewareMetrics) IncRequestsTotal(endpoint string, status int) {
	m.endpoint = endpoint
	m.status = status
}

func (m *middlewareMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.observed = true
}

func TestMiddlewareRecordsStatusAndDuration(t *testing.T) {
	metrics := &middlewareMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fields", nil))

	assert.Equal(t, "/fields", metrics.endpoint)
	assert.Equal(t, http.StatusTeapot, metrics.status)
	assert.True(t, metrics.observed)
}

func TestMiddlewareDefaultsToOK(t *testing.T) {
	metrics := &middlewareMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hi"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))
	assert.Equal(t, http.StatusOK, metrics.status)
}
