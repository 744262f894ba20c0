package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UploadMetrics owns a private registry with the upload endpoint's collectors.
// A nil *UploadMetrics is valid and records nothing.
type UploadMetrics struct {
	reg      *prometheus.Registry
	outcomes *prometheus.CounterVec
	signing  *prometheus.HistogramVec
}

func New() *UploadMetrics {
	reg := prometheus.NewRegistry()

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photo_deployer",
		Subsystem: "upload",
		Name:      "requests_total",
		Help:      "Upload credential requests by outcome.",
	}, []string{"outcome"})
	signing := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photo_deployer",
		Subsystem: "upload",
		Name:      "signing_duration_seconds",
		Help:      "Time spent producing a signed upload descriptor.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"result"}) // result = "ok" | "error"

	reg.MustRegister(
		outcomes,
		signing,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &UploadMetrics{
		reg:      reg,
		outcomes: outcomes,
		signing:  signing,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *UploadMetrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *UploadMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *UploadMetrics) ObserveSigning(dur time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.signing.WithLabelValues(result).Observe(dur.Seconds())
}

// Outcomes exposes the outcome counter for tests and ad-hoc inspection.
func (m *UploadMetrics) Outcomes() *prometheus.CounterVec {
	return m.outcomes
}
