package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSyncMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSyncMetrics(reg)
	if err != nil {
		t.Fatalf("NewSyncMetrics returned error: %v", err)
	}

	m.ObserveSync("synced", 20*time.Millisecond)
	m.ObserveSync("rejected", 0)
	m.ObserveSync("synced", 10*time.Millisecond)

	if got := testutil.ToFloat64(m.Total.WithLabelValues("synced")); got != 2 {
		t.Fatalf("expected 2 synced, got %v", got)
	}
	if got := testutil.ToFloat64(m.Total.WithLabelValues("rejected")); got != 1 {
		t.Fatalf("expected 1 rejected, got %v", got)
	}

	again, err := NewSyncMetrics(reg)
	if err != nil {
		t.Fatalf("re-registration returned error: %v", err)
	}
	if again.Total != m.Total {
		t.Fatalf("expected existing collector to be reused")
	}
}

func TestPushMetrics(t *testing.T) {
	m, err := NewPushMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewPushMetrics returned error: %v", err)
	}
	m.ObserveNotification("shown")
	m.ObserveNotification("shown")
	m.ObserveNotification("clicked")

	if got := testutil.ToFloat64(m.Notifications.WithLabelValues("shown")); got != 2 {
		t.Fatalf("expected 2 shown, got %v", got)
	}
}

func TestWindowsGauge(t *testing.T) {
	attached := 0
	gauge, err := RegisterWindowsGauge(prometheus.NewRegistry(), func() int { return attached })
	if err != nil {
		t.Fatalf("RegisterWindowsGauge returned error: %v", err)
	}

	attached = 3
	if got := testutil.ToFloat64(gauge); got != 3 {
		t.Fatalf("expected 3 attached windows, got %v", got)
	}
}
