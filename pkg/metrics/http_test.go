package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe(http.MethodGet, "/api/v1/cart", http.StatusOK, 25*time.Millisecond)
	m.Observe(http.MethodGet, "/api/v1/cart", http.StatusOK, 10*time.Millisecond)
	m.Observe(http.MethodPost, "/api/v1/orders", http.StatusUnprocessableEntity, time.Millisecond)

	got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/v1/cart", "200"))
	if got != 2 {
		t.Fatalf("expected 2 GET /api/v1/cart requests, got %v", got)
	}
	got = testutil.ToFloat64(m.requests.WithLabelValues("POST", "/api/v1/orders", "422"))
	if got != 1 {
		t.Fatalf("expected 1 POST /api/v1/orders request, got %v", got)
	}
}

func TestObserveOnNilReceiverIsSafe(t *testing.T) {
	var m *HTTPMetrics
	m.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}
