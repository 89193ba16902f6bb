package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Verification outcomes recorded by VerificationOutcome.
const (
	OutcomeCredited         = "credited"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeRejected         = "rejected"
	OutcomeFailed           = "failed"
)

// Metrics holds the Prometheus collectors of the credits service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	verifications  *prometheus.CounterVec
	creditsAwarded prometheus.Counter
	balanceWrites  prometheus.Counter
	cacheLookups   *prometheus.CounterVec
}

// MustNewMetrics registers the collectors with reg. Registration errors panic,
// matching promauto, so duplicate wiring is caught at startup.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	verifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditfox",
			Subsystem: "payments",
			Name:      "verifications_total",
			Help:      "Payment verification requests by outcome.",
		},
		[]string{"outcome"},
	)
	creditsAwarded := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "creditfox",
			Subsystem: "payments",
			Name:      "credits_awarded_total",
			Help:      "Credits awarded from verified checkout sessions.",
		},
	)
	balanceWrites := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "creditfox",
			Subsystem: "credits",
			Name:      "balance_writes_total",
			Help:      "Direct balance set operations.",
		},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "creditfox",
			Subsystem: "credits",
			Name:      "balance_cache_lookups_total",
			Help:      "Balance cache lookups by result.",
		},
		[]string{"result"},
	)

	reg.MustRegister(verifications, creditsAwarded, balanceWrites, cacheLookups)
	return &Metrics{
		verifications:  verifications,
		creditsAwarded: creditsAwarded,
		balanceWrites:  balanceWrites,
		cacheLookups:   cacheLookups,
	}
}

func (m *Metrics) VerificationOutcome(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CreditsAwarded(credits int64) {
	if m == nil || credits <= 0 {
		return
	}
	m.creditsAwarded.Add(float64(credits))
}

func (m *Metrics) BalanceWritten() {
	if m == nil {
		return
	}
	m.balanceWrites.Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
