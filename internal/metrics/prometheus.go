package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriinsight_external_requests_total",
			Help: "Outbound calls to external providers by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ExternalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agriinsight_external_request_duration_seconds",
			Help:    "Outbound call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 12},
		},
		[]string{"provider"},
	)

	InsightIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agriinsight_insight_intents_total",
			Help: "Deterministic data questions by matched intent",
		},
		[]string{"intent"},
	)

	DocumentStoreSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agriinsight_document_store_size",
			Help: "Number of documents in the retrieval index",
		},
	)
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

func init() {
	prometheus.MustRegister(
		ExternalRequests,
		ExternalDuration,
		InsightIntents,
		DocumentStoreSize,
	)
}

// ObserveExternal records one outbound call.
func ObserveExternal(provider string, seconds float64, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	ExternalRequests.WithLabelValues(provider, outcome).Inc()
	ExternalDuration.WithLabelValues(provider).Observe(seconds)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
