package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMiddlewareMetricsRunningMean(t *testing.T) {
	m := NewMiddleware(nil)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	}

	got := m.GetMetrics()
	if got.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", got.TotalRequests)
	}
	// Each request sleeps 10ms, so the mean is at least 10000 microseconds.
	if got.AverageResponseTime < 10000 {
		t.Errorf("AverageResponseTime = %d, want >= 10000", got.AverageResponseTime)
	}
}

func TestMiddlewareMetricsEmpty(t *testing.T) {
	m := NewMiddleware(nil)
	got := m.GetMetrics()
	if got.TotalRequests != 0 || got.AverageResponseTime != 0 {
		t.Errorf("metrics = %+v, want zeroes", got)
	}
}

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	if !strings.HasPrefix(a, "req_") {
		t.Errorf("id %q should carry the req_ prefix", a)
	}
	if a == b {
		t.Errorf("consecutive ids should differ, both %q", a)
	}
}
