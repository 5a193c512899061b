package browser

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "walletpilot"

// Metrics counts waits, actions, context switches and popups. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	waits         *prometheus.CounterVec
	waitDuration  prometheus.Histogram
	actions       *prometheus.CounterVec
	switches      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	retries       *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		waits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "waits_total",
				Help:      "Condition waits by outcome.",
			}, []string{"outcome"}),

		waitDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "wait_duration_seconds",
				Help:      "Time spent polling conditions.",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			}),

		actions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "actions_total",
				Help:      "UI actions by kind, correlated event and outcome.",
			}, []string{"action", "event", "outcome"}),

		switches: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "context_switches_total",
				Help:      "Active window changes by target window.",
			}, []string{"window"}),

		notifications: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_total",
				Help:      "Notification popup awaits by outcome.",
			}, []string{"outcome"}),

		retries: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "retries_total",
				Help:      "Self-healing retry loops by outcome.",
			}, []string{"outcome"}),
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrElementNotReady):
		return "not_ready"
	case errors.Is(err, ErrUnexpectedState):
		return "unexpected"
	case errors.Is(err, ErrTimedOut):
		return "timeout"
	case errors.Is(err, ErrRetriesExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

func (m *Metrics) observeWait(err error, d time.Duration) {
	if m == nil {
		return
	}
	m.waits.WithLabelValues(outcome(err)).Inc()
	m.waitDuration.Observe(d.Seconds())
}

func (m *Metrics) observeAction(action string, ev Event, err error) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(action, ev.String(), outcome(err)).Inc()
}

func (m *Metrics) observeSwitch(window string) {
	if m == nil {
		return
	}
	m.switches.WithLabelValues(window).Inc()
}

func (m *Metrics) observeNotification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) observeRetry(err error) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(outcome(err)).Inc()
}
