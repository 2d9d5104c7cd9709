// Package metrics exposes Prometheus instrumentation for the telemetry
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meterbridge/telemetry-go/pkg/transport"
)

// Pipeline holds the pipeline's Prometheus metrics on a private registry.
type Pipeline struct {
	itemsBuffered   prometheus.Counter
	itemsDrained    prometheus.Counter
	publishTotal    *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	itemsRejected   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewPipeline creates the metric set on a fresh registry.
func NewPipeline() *Pipeline {
	registry := prometheus.NewRegistry()

	p := &Pipeline{
		itemsBuffered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_items_buffered_total",
			Help: "Total number of telemetry records added to the buffer",
		}),
		itemsDrained: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "telemetry_items_drained_total",
			Help: "Total number of telemetry records drained for publishing",
		}),
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_publish_total",
				Help: "Publish attempts by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		publishDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telemetry_publish_duration_seconds",
				Help:    "Publish latency in seconds, covering auth, send, and parse",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		itemsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_items_rejected_total",
				Help: "Records rejected by the ingestion service in partial failures",
			},
			[]string{"endpoint"},
		),
		registry: registry,
	}

	registry.MustRegister(
		p.itemsBuffered,
		p.itemsDrained,
		p.publishTotal,
		p.publishDuration,
		p.itemsRejected,
	)
	return p
}

// ItemBuffered records one buffered telemetry record.
func (p *Pipeline) ItemBuffered() { p.itemsBuffered.Inc() }

// ItemsDrained records a drain of n records.
func (p *Pipeline) ItemsDrained(n int) { p.itemsDrained.Add(float64(n)) }

// PublishObserved records the outcome of one publisher's publish call.
func (p *Pipeline) PublishObserved(endpoint string, res transport.Result) {
	outcome := "success"
	switch {
	case res.Err != nil:
		outcome = "transport_error"
	case !res.Success && len(res.ItemErrors) > 0:
		outcome = "partial_failure"
	case !res.Success:
		outcome = "rejected"
	}
	p.publishTotal.WithLabelValues(endpoint, outcome).Inc()
	p.publishDuration.WithLabelValues(endpoint).Observe(res.Duration.Seconds())
	if n := len(res.ItemErrors); n > 0 {
		p.itemsRejected.WithLabelValues(endpoint).Add(float64(n))
	}
}

// Handler exposes the registry for scraping.
func (p *Pipeline) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
