// Package metrics holds domain counters exported next to the HTTP metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Auth event names.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventGate     = "gate"
)

// Auth outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// Auth counts authentication events by outcome. A nil *Auth records nothing,
// so callers never need to check whether metrics are enabled.
type Auth struct {
	events *prometheus.CounterVec
}

// NewAuth builds the auth_events_total counter. Register it with Collector().
func NewAuth() *Auth {
	return &Auth{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_events_total",
				Help: "Authentication events by kind and outcome",
			},
			[]string{"event", "outcome"},
		),
	}
}

// Collector returns the underlying collector for registration.
func (a *Auth) Collector() prometheus.Collector {
	return a.events
}

// Record increments the counter for event/outcome.
func (a *Auth) Record(event, outcome string) {
	if a == nil {
		return
	}
	a.events.WithLabelValues(event, outcome).Inc()
}
