package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics counts sync coordinator outcomes.
type SyncMetrics struct {
	Total    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewSyncMetrics registers the gestihotel_sync_* collectors.
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	total, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gestihotel",
		Name:      "sync_total",
		Help:      "Sync requests partitioned by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	duration, err := Register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gestihotel",
		Name:      "sync_duration_seconds",
		Help:      "Duration of sync runs that reached the store.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{Total: total, Duration: duration}, nil
}

// ObserveSync records one sync request.
func (m *SyncMetrics) ObserveSync(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Total.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.Duration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

// PushMetrics counts notification bridge activity.
type PushMetrics struct {
	Notifications *prometheus.CounterVec
}

// NewPushMetrics registers the pushbridge_notifications_total collector.
func NewPushMetrics(reg prometheus.Registerer) (*PushMetrics, error) {
	notifications, err := Register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pushbridge",
		Name:      "notifications_total",
		Help:      "Notifications partitioned by outcome (shown, discarded, clicked, closed).",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	return &PushMetrics{Notifications: notifications}, nil
}

// ObserveNotification records one notification outcome.
func (m *PushMetrics) ObserveNotification(outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(outcome).Inc()
}

// RegisterWindowsGauge exposes pushbridge_windows_attached, read from count at scrape time.
func RegisterWindowsGauge(reg prometheus.Registerer, count func() int) (prometheus.GaugeFunc, error) {
	return Register(reg, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "pushbridge",
		Name:      "windows_attached",
		Help:      "Application windows currently attached to the bridge.",
	}, func() float64 {
		return float64(count())
	}))
}

// Register adds c to reg, or returns the collector already registered under the same descriptor.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(c); err != nil {
		var zero T
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return zero, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return zero, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}
