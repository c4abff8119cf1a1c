package webhooks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// events tracks webhook deliveries by event type and outcome.
var events = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webhook_events_total",
	Help: "Total number of webhook deliveries by event type and outcome",
}, []string{"event_type", "outcome"})

func recordEvent(eventType, outcome string) {
	events.WithLabelValues(eventType, outcome).Inc()
}
