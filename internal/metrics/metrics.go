// Package metrics counts probe outcomes for one muxprobe run and exports
// them in the Prometheus text format, for node_exporter's textfile
// collector or any scraper reading the file.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ProbesTotal.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Recorder holds the run's collectors on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	ProbesTotal     *prometheus.CounterVec
	RetriesTotal    prometheus.Counter
	ProbeDuration   *prometheus.HistogramVec
	ScreenshotTotal *prometheus.CounterVec
	LastRun         prometheus.Gauge
}

// New registers the muxprobe collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		ProbesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "muxprobe_probes_total",
			Help: "Resources probed, by outcome.",
		}, []string{"result"}),
		RetriesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "muxprobe_probe_retries_total",
			Help: "Second probe passes after ffprobe reported an error.",
		}),
		ProbeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "muxprobe_probe_duration_seconds",
			Help:    "Wall time of one resource probe, including the remote check.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		ScreenshotTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "muxprobe_screenshots_total",
			Help: "Screenshots attempted, by outcome.",
		}, []string{"result"}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "muxprobe_last_run_timestamp_seconds",
			Help: "Unix time the run finished.",
		}),
	}
}

// ObserveProbe records one probe. source is "local" or "remote"; attempts
// above one count as retries.
func (r *Recorder) ObserveProbe(result, source string, attempts int, elapsed time.Duration) {
	r.ProbesTotal.WithLabelValues(result).Inc()
	r.ProbeDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if attempts > 1 {
		r.RetriesTotal.Add(float64(attempts - 1))
	}
}

// ObserveScreenshot records one screenshot attempt.
func (r *Recorder) ObserveScreenshot(err error) {
	if err != nil {
		r.ScreenshotTotal.WithLabelValues(ResultFailed).Inc()
		return
	}
	r.ScreenshotTotal.WithLabelValues("ok").Inc()
}

// Finish stamps the run completion time.
func (r *Recorder) Finish(now time.Time) {
	r.LastRun.Set(float64(now.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile atomically writes every collector to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
