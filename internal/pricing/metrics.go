package pricing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculationDuration tracks how long full price calculations take.
	calculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_calculation_duration_seconds",
		Help:    "Time taken for a full price calculation",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	// validationErrors tracks rejected inputs by field.
	validationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_validation_errors_total",
		Help: "Total number of rejected pricing inputs by field",
	}, []string{"field"})

	// resultConfidence tracks the distribution of final confidence scores.
	resultConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_result_confidence",
		Help:    "Final confidence score of price calculations",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// sourcesUsed tracks how many evidence sources contributed per calculation.
	sourcesUsed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_sources_used_count",
		Help:    "Number of evidence sources contributing to a calculation",
		Buckets: []float64{1, 2, 3},
	})

	// suggestedPrice tracks the distribution of suggested prices.
	suggestedPrice = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_suggested_price_dollars",
		Help:    "Suggested prices produced by the engine",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
	})
)

func recordCalculation(d time.Duration) {
	calculationDuration.Observe(d.Seconds())
}

func recordValidationError(err error) {
	if inv, ok := err.(ErrInvalidInput); ok {
		validationErrors.WithLabelValues(inv.Field).Inc()
		return
	}
	validationErrors.WithLabelValues("unknown").Inc()
}

func recordResult(r *Result) {
	resultConfidence.Observe(float64(r.Confidence))
	sourcesUsed.Observe(float64(len(r.Sources)))
	suggestedPrice.Observe(r.SuggestedPrice)
}
