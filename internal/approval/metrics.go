package approval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// decisions tracks review decisions by outcome.
var decisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "approval_decisions_total",
	Help: "Total number of draft review decisions by outcome",
}, []string{"outcome"})

func recordDecision(outcome string) {
	decisions.WithLabelValues(outcome).Inc()
}
