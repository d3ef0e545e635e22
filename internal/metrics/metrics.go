package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Access-control metrics. Kept in a leaf package so services and HTTP
// adapters can both record without import cycles.

var (
	AccessDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Access decisions by result and denial reason",
	}, []string{"result", "reason"}) // result: granted|denied

	AccessDecisionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "access_decision_duration_seconds",
		Help:    "Latency of one access decision including its store transaction",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qr_tokens_issued_total",
		Help: "QR tokens issued",
	})

	TokenValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qr_token_validations_total",
		Help: "QR token validations by result",
	}, []string{"result"}) // result: valid|invalid

	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_transitions_total",
		Help: "User status transitions",
	}, []string{"from", "to", "manual"})

	SweepUsers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "expiry_sweep_users_total",
		Help: "Users processed by expiry sweeps by job and outcome",
	}, []string{"job", "outcome"}) // outcome: processed|failed|skipped
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		AccessDecisions,
		AccessDecisionDuration,
		TokensIssued,
		TokenValidations,
		StatusTransitions,
		SweepUsers,
	}
}

// Register registers the access metrics on the given registry (or default if nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
