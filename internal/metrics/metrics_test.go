// internal/metrics/metrics_test.go
package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", "/v1/house-items", 200, 30*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)
	m.StockChanged("adjust", nil)
	m.StockChanged("adjust", errors.New("boom"))
	m.SelectionChanged("override", nil)
	m.InventorySnapshot(map[string]int{"low_stock": 3, "normal": 5}, 512.75)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, mfs, "larder_http_requests_total", map[string]string{"route": "/v1/house-items", "status": "200"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "larder_http_requests_total", map[string]string{"route": "unmatched", "status": "404"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "larder_stock_changes_total", map[string]string{"kind": "adjust", "outcome": "error"}))
	assert.Equal(t, 1.0, counterValue(t, mfs, "larder_vendor_selection_changes_total", map[string]string{"action": "override", "outcome": "success"}))
	assert.Equal(t, 3.0, gaugeValue(t, mfs, "larder_house_items_by_stock_status", map[string]string{"status": "low_stock"}))
	assert.Equal(t, 512.75, gaugeValue(t, mfs, "larder_inventory_value", nil))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.Nil(t, New(nil))
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.StockChanged("set", nil)
		m.SelectionChanged("reset", nil)
		m.InventorySnapshot(map[string]int{"normal": 1}, 1)
	})
}

func findMetric(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return nil
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	return findMetric(t, mfs, name, labels).GetCounter().GetValue()
}

func gaugeValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	return findMetric(t, mfs, name, labels).GetGauge().GetValue()
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if value, ok := want[pair.GetName()]; ok {
			if value != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
