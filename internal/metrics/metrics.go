// Package metrics exposes Prometheus counters for calls to external collaborators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collaborator names used as label values.
const (
	Gemini   = "gemini"
	Zoom     = "zoom"
	Mongo    = "mongo"
	Matching = "matching"
	Games    = "games"
)

var (
	externalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studyhub",
		Name:      "external_calls_total",
		Help:      "Calls to external collaborators by outcome.",
	}, []string{"collaborator", "outcome"})

	schemaRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studyhub",
		Name:      "llm_schema_rejections_total",
		Help:      "Generated responses rejected because they did not match the expected shape.",
	}, []string{"schema"})

	meetingsProvisioned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "studyhub",
		Name:      "meetings_provisioned_total",
		Help:      "Meetings created for sessions.",
	})
)

// ObserveCall counts one call to collaborator.
func ObserveCall(collaborator string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	externalCalls.WithLabelValues(collaborator, outcome).Inc()
}

func SchemaRejected(schema string) {
	schemaRejections.WithLabelValues(schema).Inc()
}

func MeetingProvisioned() {
	meetingsProvisioned.Inc()
}
