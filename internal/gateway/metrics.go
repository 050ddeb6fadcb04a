package gateway

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "sga"
	metricsSubsystem = "gateway"
)

// Metrics holds the gateway collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	SharedResultsTotal  prometheus.Counter
	PendingRequests     prometheus.Gauge
	BaseURLResolutions  *prometheus.CounterVec
	SessionExpiredTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "requests_total",
				Help:      "Network operations issued by the gateway, by method and classified outcome",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of gateway network operations including classification",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		SharedResultsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "shared_results_total",
				Help:      "Results delivered to callers whose operation was shared with another caller",
			},
		),
		PendingRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "pending_requests",
				Help:      "Operations currently in flight in the pending-request registry",
			},
		),
		BaseURLResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "base_url_resolutions_total",
				Help:      "Base URL resolutions by source (default, manifest, fallback)",
			},
			[]string{"source"},
		),
		SessionExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "session_expired_total",
				Help:      "Unauthorized responses that cleared the stored credentials",
			},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RequestsTotal,
		m.RequestDuration,
		m.SharedResultsTotal,
		m.PendingRequests,
		m.BaseURLResolutions,
		m.SessionExpiredTotal,
	}
}

// Register adds every collector to reg. Collectors that are already
// registered are tolerated so a process can rebuild its gateway.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if m == nil || reg == nil {
		return nil
	}

	for _, collector := range m.collectors() {
		if err := reg.Register(collector); err != nil {
			var alreadyRegErr prometheus.AlreadyRegisteredError
			if errors.As(err, &alreadyRegErr) {
				continue
			}
			return fmt.Errorf("register gateway metric: %w", err)
		}
	}

	return nil
}

func (m *Metrics) observeRequest(method string, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) sharedResult() {
	if m == nil {
		return
	}
	m.SharedResultsTotal.Inc()
}

func (m *Metrics) pendingDelta(delta float64) {
	if m == nil {
		return
	}
	m.PendingRequests.Add(delta)
}

func (m *Metrics) resolution(source string) {
	if m == nil {
		return
	}
	m.BaseURLResolutions.WithLabelValues(source).Inc()
}

func (m *Metrics) sessionExpired() {
	if m == nil {
		return
	}
	m.SessionExpiredTotal.Inc()
}
