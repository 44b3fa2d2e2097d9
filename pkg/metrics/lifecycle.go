package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics tracks order item transitions, stock rejections and route sizes.
type LifecycleMetrics struct {
	transitions     *prometheus.CounterVec
	stockRejections prometheus.Counter
	routeStops      prometheus.Histogram
}

// NewLifecycleMetrics registers the lifecycle collectors. A nil registerer
// yields a no-op recorder.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "merko_order_item_transitions_total",
		Help: "Order item status transitions applied.",
	}, []string{"from", "to"})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "merko_stock_rejections_total",
		Help: "Confirmations rejected because stock was insufficient.",
	})
	routeStops := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "merko_route_stops",
		Help:    "Number of stops on generated routes.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
	reg.MustRegister(transitions, stockRejections, routeStops)
	return &LifecycleMetrics{
		transitions:     transitions,
		stockRejections: stockRejections,
		routeStops:      routeStops,
	}
}

func (m *LifecycleMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *LifecycleMetrics) IncStockRejection() {
	if m == nil || m.stockRejections == nil {
		return
	}
	m.stockRejections.Inc()
}

func (m *LifecycleMetrics) ObserveRouteStops(stops int) {
	if m == nil || m.routeStops == nil {
		return
	}
	m.routeStops.Observe(float64(stops))
}
