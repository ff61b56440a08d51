package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStoreMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStoreMetrics(reg)

	metrics.IncOrderPlaced("Completed")
	metrics.IncOrderFailed("insufficient_stock")
	metrics.ObserveOrderDuration("Completed", 120*time.Millisecond)
	metrics.IncAuditEntry("UPDATE")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "orders_placed_total", "status", "Completed"); err != nil {
		t.Fatalf("fetch placed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected placed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "orders_failed_total", "reason", "insufficient_stock"); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "audit_entries_total", "action", "UPDATE"); err != nil {
		t.Fatalf("fetch audit: %v", err)
	} else if got != 1 {
		t.Fatalf("expected audit=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "order_placement_seconds", "status", "Completed"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestStoreMetricsNilSafe(t *testing.T) {
	var metrics *StoreMetrics
	metrics.IncOrderPlaced("Completed")
	metrics.IncOrderFailed("unknown_book")
	metrics.ObserveOrderDuration("Completed", time.Second)
	metrics.IncAuditEntry("INSERT")

	empty := NewStoreMetrics(nil)
	empty.IncOrderPlaced("Completed")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
