// Package metrics exposes Prometheus instrumentation for the image pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder receives pipeline events.
type Recorder interface {
	ObserveProcessed(source, status string)
	ObserveUpload(provider, status string, d time.Duration)
	SetCacheEntries(n int)
}

// Noop implements Recorder without emitting anything.
type Noop struct{}

// ObserveProcessed does nothing.
func (Noop) ObserveProcessed(string, string) {}

// ObserveUpload does nothing.
func (Noop) ObserveUpload(string, string, time.Duration) {}

// SetCacheEntries does nothing.
func (Noop) SetCacheEntries(int) {}

// Prom implements Recorder backed by Prometheus collectors.
type Prom struct {
	processed      *prometheus.CounterVec
	uploads        *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
	cacheEntries   prometheus.Gauge
}

// NewProm creates the collectors under namespace and registers them with reg.
// A nil reg registers with the default registry.
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prom{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_processed_total",
			Help:      "Images transcoded by source and status",
		}, []string{"source", "status"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Provider uploads by provider and status",
		}, []string{"provider", "status"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Provider upload latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Transcoded images waiting for upload",
		}),
	}
	reg.MustRegister(p.processed, p.uploads, p.uploadDuration, p.cacheEntries)
	return p
}

// ObserveProcessed counts one transcode attempt for source.
func (p *Prom) ObserveProcessed(source, status string) {
	p.processed.WithLabelValues(source, status).Inc()
}

// ObserveUpload counts one provider upload and records its latency.
func (p *Prom) ObserveUpload(provider, status string, d time.Duration) {
	p.uploads.WithLabelValues(provider, status).Inc()
	p.uploadDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// SetCacheEntries reports the number of images waiting for upload.
func (p *Prom) SetCacheEntries(n int) {
	p.cacheEntries.Set(float64(n))
}

// Handler returns an HTTP handler for /metrics serving gatherer, or the
// default registry when gatherer is nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = Noop{}
	_ Recorder = (*Prom)(nil)
)
