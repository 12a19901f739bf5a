package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geoscraper"

// Recorder holds the counters of a single collection run on its own registry
type Recorder struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	postsSeen       prometheus.Counter
	postsKept       prometheus.Counter
	lookupMisses    *prometheus.CounterVec
	collected       prometheus.Gauge
	quotaRemaining  prometheus.Gauge
	lastRun         *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_requests_total",
				Help:      "Recent search requests by outcome",
			},
			[]string{"status"},
		),
		requestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_request_duration_seconds",
				Help:      "Duration of recent search requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),
		postsSeen: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "posts_seen_total",
				Help:      "Posts returned by the search endpoint",
			},
		),
		postsKept: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "posts_kept_total",
				Help:      "Geo-tagged posts added to the collection",
			},
		),
		lookupMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookup_misses_total",
				Help:      "Place or media references missing from page includes",
			},
			[]string{"kind"},
		),
		collected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collected_posts",
				Help:      "Posts in the collection",
			},
		),
		quotaRemaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "search_quota_remaining",
				Help:      "Requests left in the current rate limit window",
			},
		),
		lastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished, by stop reason",
			},
			[]string{"reason"},
		),
	}
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRequest records one search request. status is "ok" or an error type.
func (r *Recorder) ObserveRequest(status string, d time.Duration) {
	r.requestsTotal.WithLabelValues(status).Inc()
	r.requestDuration.Observe(d.Seconds())
}

// SetQuotaRemaining records the last reported quota; negative values are ignored
func (r *Recorder) SetQuotaRemaining(n int) {
	if n >= 0 {
		r.quotaRemaining.Set(float64(n))
	}
}

func (r *Recorder) PostSeen() {
	r.postsSeen.Inc()
}

func (r *Recorder) PostKept() {
	r.postsKept.Inc()
}

// SetCollected records the size of the collection
func (r *Recorder) SetCollected(n int) {
	r.collected.Set(float64(n))
}

func (r *Recorder) LookupMissed(kind string) {
	r.lookupMisses.WithLabelValues(kind).Inc()
}

// RunFinished stamps the end of a run
func (r *Recorder) RunFinished(reason string, at time.Time) {
	r.lastRun.WithLabelValues(reason).Set(float64(at.Unix()))
}

// WriteTextfile exports every metric in the node_exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
