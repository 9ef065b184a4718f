package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace is the Prometheus namespace for all session metrics.
	Namespace = "musig"

	// Label names
	LabelOutcome = "outcome"
	LabelRound   = "round"
	LabelReason  = "reason"

	// Outcome values
	OutcomeSuccess = "success"
	OutcomeAborted = "aborted"

	// Round names
	RoundKeys   = "keys"
	RoundCommit = "commit"
	RoundReveal = "reveal"
	RoundSign   = "sign"

	// Abort reasons
	ReasonTimeout            = "timeout"
	ReasonCanceled           = "canceled"
	ReasonCommitmentMismatch = "commitment_mismatch"
	ReasonInvalidPartial     = "invalid_partial"
	ReasonInvalidKeys        = "invalid_keys"
	ReasonIdentityNonce      = "identity_nonce"
	ReasonParticipant        = "participant_error"
)

// Metrics holds the coordinator's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	sessions *prometheus.CounterVec
	rounds   *prometheus.HistogramVec
	aborts   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "sessions_total",
				Help:      "Total number of signing sessions by outcome",
			},
			[]string{LabelOutcome},
		),
		rounds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "round_duration_seconds",
				Help:      "Duration of signing rounds in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{LabelRound},
		),
		aborts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "aborts_total",
				Help:      "Total number of aborted sessions by reason",
			},
			[]string{LabelReason},
		),
	}
	if reg != nil {
		reg.MustRegister(m.sessions, m.rounds, m.aborts)
	}
	return m
}

func (m *Metrics) observeRound(round string, d time.Duration) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(round).Observe(d.Seconds())
}

func (m *Metrics) succeeded() {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(OutcomeSuccess).Inc()
}

func (m *Metrics) aborted(reason string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(OutcomeAborted).Inc()
	m.aborts.WithLabelValues(reason).Inc()
}
