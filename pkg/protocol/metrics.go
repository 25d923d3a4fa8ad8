package protocol

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mpc"

	labelProtocol  = "protocol"
	labelStatus    = "status"
	labelCode      = "code"
	labelDirection = "direction"
	labelRound     = "round"

	statusDone    = "done"
	statusAborted = "aborted"
	statusStopped = "stopped"

	directionIn  = "in"
	directionOut = "out"
)

// Metrics holds the prometheus collectors updated by a Handler.
type Metrics struct {
	runs          *prometheus.CounterVec
	aborts        *prometheus.CounterVec
	messages      *prometheus.CounterVec
	roundDuration *prometheus.HistogramVec
	runDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates collectors which are not registered anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "protocol_runs_total",
				Help:      "Total number of finished protocol runs by status",
			},
			[]string{labelProtocol, labelStatus},
		),
		aborts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "protocol_aborts_total",
				Help:      "Total number of aborted protocol runs by error code",
			},
			[]string{labelProtocol, labelCode},
		),
		messages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "protocol_messages_total",
				Help:      "Total number of protocol messages by direction",
			},
			[]string{labelProtocol, labelDirection},
		),
		roundDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "protocol_round_duration_seconds",
				Help:      "Time spent in each protocol round",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{labelProtocol, labelRound},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "protocol_run_duration_seconds",
				Help:      "Time from the start of a protocol run to its end",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{labelProtocol},
		),
	}
}

func (m *Metrics) observeRound(protocol string, round int, seconds float64) {
	if m == nil {
		return
	}
	m.roundDuration.WithLabelValues(protocol, strconv.Itoa(round)).Observe(seconds)
}

func (m *Metrics) observeMessage(protocol, direction string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(protocol, direction).Inc()
}

func (m *Metrics) observeEnd(protocol, status string, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(protocol, status).Inc()
	m.runDuration.WithLabelValues(protocol).Observe(seconds)
}

func (m *Metrics) observeAbort(protocol string, code Code) {
	if m == nil {
		return
	}
	m.aborts.WithLabelValues(protocol, code.String()).Inc()
}
