package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestLifecycleMetricsRecordTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)
	m.IncTransition("PENDING", "CONFIRMED")
	m.IncTransition("PENDING", "CONFIRMED")
	m.IncStockRejection()
	m.ObserveRouteStops(4)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got, err := fetchCounterValue(mfs, "merko_order_item_transitions_total", "to", "CONFIRMED")
	if err != nil {
		t.Fatalf("fetch transitions: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 transitions, got %f", got)
	}
	rejections := findMetricFamily(mfs, "merko_stock_rejections_total")
	if rejections == nil || rejections.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one stock rejection")
	}
	stops := findMetricFamily(mfs, "merko_route_stops")
	if stops == nil || stops.GetMetric()[0].GetHistogram().GetSampleSum() != 4 {
		t.Fatalf("expected route stop histogram sum 4")
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var lifecycle *LifecycleMetrics
	lifecycle.IncTransition("a", "b")
	lifecycle.IncStockRejection()
	lifecycle.ObserveRouteStops(1)

	unregistered := NewHTTPMetrics(nil)
	unregistered.Observe("GET", "/api/cart", 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/checkout", 201, 30*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got, err := fetchCounterValue(mfs, "merko_http_requests_total", "route", "/api/checkout")
	if err != nil {
		t.Fatalf("fetch requests: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 request, got %f", got)
	}
}
