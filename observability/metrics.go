package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HostMetrics captures message execution, outbound dispatch and cross
// contract query activity of the contract host.
type HostMetrics struct {
	messages *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	outbound *prometheus.CounterVec
	queries  *prometheus.CounterVec
	events   *prometheus.CounterVec
}

var (
	hostMetricsOnce sync.Once
	hostRegistry    *HostMetrics
)

// Host returns the lazily-initialised host metrics registry.
func Host() *HostMetrics {
	hostMetricsOnce.Do(func() {
		hostRegistry = &HostMetrics{
			messages: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "host",
				Name:      "messages_total",
				Help:      "Total executed messages segmented by contract kind, action, and outcome.",
			}, []string{"contract", "action", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "host",
				Name:      "errors_total",
				Help:      "Rejected messages segmented by contract kind, action, and error code.",
			}, []string{"contract", "action", "code"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "launchpad",
				Subsystem: "host",
				Name:      "message_duration_seconds",
				Help:      "Latency distribution for message execution including commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"contract", "action"}),
			outbound: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "host",
				Name:      "outbound_total",
				Help:      "Outbound instructions dispatched on behalf of contracts.",
			}, []string{"kind"}),
			queries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "host",
				Name:      "queries_total",
				Help:      "Contract queries segmented by contract kind and outcome.",
			}, []string{"contract", "outcome"}),
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Count of contract events published after commit, segmented by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(
			hostRegistry.messages,
			hostRegistry.errors,
			hostRegistry.latency,
			hostRegistry.outbound,
			hostRegistry.queries,
			hostRegistry.events,
		)
	})
	return hostRegistry
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// ObserveMessage records the outcome of an executed message. code is empty
// for committed messages.
func (m *HostMetrics) ObserveMessage(contract, action, code string, duration time.Duration) {
	if m == nil {
		return
	}
	contract, action = orUnknown(contract), orUnknown(action)
	outcome := "success"
	if code != "" {
		outcome = "error"
		m.errors.WithLabelValues(contract, action, code).Inc()
	}
	m.messages.WithLabelValues(contract, action, outcome).Inc()
	m.latency.WithLabelValues(contract, action).Observe(duration.Seconds())
}

// RecordOutbound counts a dispatched outbound instruction.
func (m *HostMetrics) RecordOutbound(kind string) {
	if m == nil {
		return
	}
	m.outbound.WithLabelValues(orUnknown(kind)).Inc()
}

// RecordQuery counts a contract query.
func (m *HostMetrics) RecordQuery(contract string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.queries.WithLabelValues(orUnknown(contract), outcome).Inc()
}

// RecordEvent counts a published contract event.
func (m *HostMetrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(orUnknown(strings.TrimSpace(eventType))).Inc()
}
