// Package metrics records pipeline operation durations and outcomes.
package metrics

import (
	"expvar"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder observes pipeline operations. Implementations must be safe for
// concurrent use.
type Recorder interface {
	RecordDuration(op string, d time.Duration)
	RecordResult(op, status string)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

// RecordDuration implements Recorder.
func (NopRecorder) RecordDuration(string, time.Duration) {}

// RecordResult implements Recorder.
func (NopRecorder) RecordResult(string, string) {}

// ExpvarRecorder publishes counters under an expvar map: cumulative
// nanoseconds and sample counts per operation, plus result counts per
// operation and status.
type ExpvarRecorder struct {
	mu   sync.Mutex
	root *expvar.Map
}

// NewExpvarRecorder publishes an expvar map under the given name, reusing
// the map when the name is already published.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if existing, ok := expvar.Get(name).(*expvar.Map); ok {
		return &ExpvarRecorder{root: existing}
	}
	return &ExpvarRecorder{root: expvar.NewMap(name)}
}

// RecordDuration accumulates the operation's duration and sample count.
func (r *ExpvarRecorder) RecordDuration(op string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root.Add(op+".duration_ns", d.Nanoseconds())
	r.root.Add(op+".samples", 1)
}

// RecordResult counts one outcome for the operation.
func (r *ExpvarRecorder) RecordResult(op, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.root.Add(fmt.Sprintf("%s.result.%s", op, status), 1)
}

// PrometheusRecorder exports operation durations as a histogram and
// outcomes as a counter.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusRecorder registers the recorder's collectors on the given
// registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sheetcurator",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pipeline operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sheetcurator",
			Name:      "operation_results_total",
			Help:      "Pipeline operation outcomes by status.",
		}, []string{"op", "status"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.results} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// RecordDuration implements Recorder.
func (r *PrometheusRecorder) RecordDuration(op string, d time.Duration) {
	r.durations.WithLabelValues(op).Observe(d.Seconds())
}

// RecordResult implements Recorder.
func (r *PrometheusRecorder) RecordResult(op, status string) {
	r.results.WithLabelValues(op, status).Inc()
}
