package fractal

import (
	"math/rand"
	"time"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// DefaultProgressInterval is how often the progress watcher samples.
const DefaultProgressInterval = time.Second

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	logger           types.Logger
	metrics          types.MetricsCollector
	progressInterval time.Duration
	progressReport   ReportFunc
	rowObserver      func(row int)
	rng              *rand.Rand
}

// WithLogger sets the logger used for pass and palette messages.
func WithLogger(logger types.Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
func WithMetrics(metrics types.MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithProgressInterval sets the progress sampling interval. Zero or a
// negative interval disables the background watcher; Engine.Progress can
// still be sampled by hand.
func WithProgressInterval(d time.Duration) Option {
	return func(o *engineOptions) {
		o.progressInterval = d
	}
}

// WithProgressReporter replaces the default reporter, which logs the
// percentage at Info level.
func WithProgressReporter(fn ReportFunc) Option {
	return func(o *engineOptions) {
		o.progressReport = fn
	}
}

// WithRowObserver installs a callback run by a worker right after it claims
// a row, outside the claim lock. It must be safe for concurrent use.
func WithRowObserver(fn func(row int)) Option {
	return func(o *engineOptions) {
		o.rowObserver = fn
	}
}

// WithRand sets the random source used by ChangeColors.
func WithRand(rng *rand.Rand) Option {
	return func(o *engineOptions) {
		o.rng = rng
	}
}
