package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Metrics are registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	passDuration    prometheus.Histogram
	passesTotal     prometheus.Counter
	rowsTotal       prometheus.Counter
	progress        prometheus.Gauge
	paletteRebuilds *prometheus.CounterVec
	frameSave       prometheus.Histogram
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (uses prometheus.DefaultRegisterer if nil)
//   - namespace: metrics namespace (defaults to "fractal" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "fractal"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.passDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "pass_duration_seconds",
			Help:      "Wall-clock duration of render passes in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms .. ~10s
		})
		p.passesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "passes_total",
			Help:      "Total completed render passes.",
		})
		p.rowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "rows_total",
			Help:      "Total rows computed across all passes.",
		})
		p.progress = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "pass_progress_percent",
			Help:      "Last sampled progress of the active pass.",
		})
		p.paletteRebuilds = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "engine",
			Name:      "palette_rebuilds_total",
			Help:      "Color table rebuilds by reason (buffer, random).",
		}, []string{"reason"})
		p.frameSave = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "capture",
			Name:      "frame_save_seconds",
			Help:      "Time spent encoding and writing one frame.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		})

		p.reg.MustRegister(p.passDuration)
		p.reg.MustRegister(p.passesTotal)
		p.reg.MustRegister(p.rowsTotal)
		p.reg.MustRegister(p.progress)
		p.reg.MustRegister(p.paletteRebuilds)
		p.reg.MustRegister(p.frameSave)
	})
}

// RecordPass observes the pass duration and adds its rows.
func (p *PrometheusCollector) RecordPass(elapsed time.Duration, rows int) {
	p.ensureRegistered()
	p.passDuration.Observe(elapsed.Seconds())
	p.passesTotal.Inc()
	p.rowsTotal.Add(float64(rows))
}

// SetProgress sets the progress gauge.
func (p *PrometheusCollector) SetProgress(percent float64) {
	p.ensureRegistered()
	p.progress.Set(percent)
}

// IncrementPaletteRebuild counts one rebuild for reason.
func (p *PrometheusCollector) IncrementPaletteRebuild(reason string) {
	p.ensureRegistered()
	p.paletteRebuilds.WithLabelValues(reason).Inc()
}

// RecordFrameSaved observes one frame save.
func (p *PrometheusCollector) RecordFrameSaved(elapsed time.Duration) {
	p.ensureRegistered()
	p.frameSave.Observe(elapsed.Seconds())
}
