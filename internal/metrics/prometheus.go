package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records forecast, classification and narrative metrics on its own registry.
type Recorder struct {
	registry        *prometheus.Registry
	fetchTotal      *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	classifications *prometheus.CounterVec
	narratives      *prometheus.CounterVec
	cacheHits       prometheus.Counter
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freeride_forecast_fetch_total",
				Help: "Forecast fetches by outcome",
			},
			[]string{"outcome"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "freeride_forecast_fetch_duration_seconds",
				Help:    "Duration of forecast fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		classifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freeride_classifications_total",
				Help: "Resort classifications by label",
			},
			[]string{"label"},
		),
		narratives: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freeride_narrative_requests_total",
				Help: "Narrative generation requests by outcome",
			},
			[]string{"outcome"},
		),
		cacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "freeride_cache_hits_total",
				Help: "Summary cache hits",
			},
		),
	}
}

// RecordFetch records a forecast fetch and its latency.
func (r *Recorder) RecordFetch(err error, d time.Duration) {
	r.fetchTotal.WithLabelValues(outcome(err)).Inc()
	r.fetchDuration.Observe(d.Seconds())
}

func (r *Recorder) RecordClassification(label string) {
	r.classifications.WithLabelValues(label).Inc()
}

func (r *Recorder) RecordNarrative(err error) {
	r.narratives.WithLabelValues(outcome(err)).Inc()
}

func (r *Recorder) RecordCacheHit() {
	r.cacheHits.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
