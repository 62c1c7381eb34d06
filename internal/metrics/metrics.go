// internal/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "larder"

// Metrics holds the service collectors. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	stockChanges     *prometheus.CounterVec
	selectionChanges *prometheus.CounterVec
	stockStatus      *prometheus.GaugeVec
	inventoryValue   prometheus.Gauge
}

// New registers the service metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stockChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_changes_total",
			Help:      "Stock count changes by kind (adjust, set) and outcome.",
		}, []string{"kind", "outcome"}),
		selectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vendor_selection_changes_total",
			Help:      "Vendor selection overrides and resets by outcome.",
		}, []string{"action", "outcome"}),
		stockStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "house_items_by_stock_status",
			Help:      "House items per stock status at the last inventory summary.",
		}, []string{"status"}),
		inventoryValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_value",
			Help:      "Total on-hand inventory value at the last inventory summary.",
		}),
	}

	reg.MustRegister(m.httpRequests, m.httpDuration, m.stockChanges, m.selectionChanges, m.stockStatus, m.inventoryValue)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) StockChanged(kind string, err error) {
	if m == nil {
		return
	}
	m.stockChanges.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) SelectionChanged(action string, err error) {
	if m == nil {
		return
	}
	m.selectionChanges.WithLabelValues(action, outcome(err)).Inc()
}

// InventorySnapshot publishes the counts of the most recent inventory summary.
func (m *Metrics) InventorySnapshot(byStatus map[string]int, totalValue float64) {
	if m == nil {
		return
	}
	for status, count := range byStatus {
		m.stockStatus.WithLabelValues(status).Set(float64(count))
	}
	m.inventoryValue.Set(totalValue)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
