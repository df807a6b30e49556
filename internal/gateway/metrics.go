package gateway

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsNamespace prefixes every exported metric.
const metricsNamespace = "mysgw"

// Metrics counts gateway activity.
//
// The counters are exported to Prometheus and mirrored in atomics for the
// JSON metrics endpoint. A nil *Metrics is valid and records nothing.
type Metrics struct {
	received         *prometheus.CounterVec
	sent             prometheus.Counter
	malformed        prometheus.Counter
	acks             prometheus.Counter
	controllerErrors *prometheus.CounterVec
	reconciled       prometheus.Counter
	snapshots        *prometheus.CounterVec
	sinkErrors       *prometheus.CounterVec
	channels         prometheus.Gauge

	rxCount         atomic.Uint64
	txCount         atomic.Uint64
	malformedCount  atomic.Uint64
	ctrlErrCount    atomic.Uint64
	reconcileCount  atomic.Uint64
	snapshotCount   atomic.Uint64
	sinkErrCount    atomic.Uint64
	channelCount    atomic.Int64
	lastSnapshotErr atomic.Bool
}

// NewMetrics creates the gateway metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "telegrams_received_total",
			Help:      "Telegrams received from the serial gateway, by message type.",
		}, []string{"type"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "telegrams_sent_total",
			Help:      "Telegrams written to the serial gateway.",
		}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "telegrams_malformed_total",
			Help:      "Lines from the serial gateway that were not valid telegrams.",
		}),
		acks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "telegrams_ack_total",
			Help:      "Acknowledgement telegrams received and not dispatched.",
		}),
		controllerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "controller_errors_total",
			Help:      "Failed Domoticz calls, by operation.",
		}, []string{"op"}),
		reconciled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconciled_switches_total",
			Help:      "Switch changes pulled from Domoticz into the sensor network.",
		}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registry_snapshots_total",
			Help:      "Registry snapshot writes, by result.",
		}, []string{"result"}),
		sinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sink_errors_total",
			Help:      "Reading sink failures, by sink.",
		}, []string{"sink"}),
		channels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "registry_channels",
			Help:      "Channels in the registry.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.received, m.sent, m.malformed, m.acks, m.controllerErrors,
			m.reconciled, m.snapshots, m.sinkErrors, m.channels,
		)
	}
	return m
}

func (m *Metrics) telegramReceived(msgType string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(msgType).Inc()
	m.rxCount.Add(1)
}

func (m *Metrics) telegramSent() {
	if m == nil {
		return
	}
	m.sent.Inc()
	m.txCount.Add(1)
}

func (m *Metrics) telegramMalformed() {
	if m == nil {
		return
	}
	m.malformed.Inc()
	m.malformedCount.Add(1)
}

func (m *Metrics) ackIgnored() {
	if m == nil {
		return
	}
	m.acks.Inc()
}

func (m *Metrics) controllerError(op string) {
	if m == nil {
		return
	}
	m.controllerErrors.WithLabelValues(op).Inc()
	m.ctrlErrCount.Add(1)
}

func (m *Metrics) switchReconciled() {
	if m == nil {
		return
	}
	m.reconciled.Inc()
	m.reconcileCount.Add(1)
}

func (m *Metrics) snapshotWritten(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.snapshots.WithLabelValues(result).Inc()
	m.snapshotCount.Add(1)
	m.lastSnapshotErr.Store(err != nil)
}

func (m *Metrics) sinkError(sink string) {
	if m == nil {
		return
	}
	m.sinkErrors.WithLabelValues(sink).Inc()
	m.sinkErrCount.Add(1)
}

func (m *Metrics) setChannels(n int) {
	if m == nil {
		return
	}
	m.channels.Set(float64(n))
	m.channelCount.Store(int64(n))
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	TelegramsReceived uint64 `json:"telegrams_received"`
	TelegramsSent     uint64 `json:"telegrams_sent"`
	Malformed         uint64 `json:"telegrams_malformed"`
	ControllerErrors  uint64 `json:"controller_errors"`
	Reconciled        uint64 `json:"reconciled_switches"`
	Snapshots         uint64 `json:"registry_snapshots"`
	LastSnapshotError bool   `json:"last_snapshot_failed"`
	SinkErrors        uint64 `json:"sink_errors"`
	Channels          int    `json:"channels"`
}

// Snapshot returns the current counter values. Zero for a nil receiver.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		TelegramsReceived: m.rxCount.Load(),
		TelegramsSent:     m.txCount.Load(),
		Malformed:         m.malformedCount.Load(),
		ControllerErrors:  m.ctrlErrCount.Load(),
		Reconciled:        m.reconcileCount.Load(),
		Snapshots:         m.snapshotCount.Load(),
		LastSnapshotError: m.lastSnapshotErr.Load(),
		SinkErrors:        m.sinkErrCount.Load(),
		Channels:          int(m.channelCount.Load()),
	}
}
