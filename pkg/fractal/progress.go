package fractal

import (
	"sync"
	"sync/atomic"
	"time"
)

// ReportFunc receives a progress percentage in [0, 100).
type ReportFunc func(percent float64)

// ProgressSource exposes how many rows of the active pass were claimed.
type ProgressSource interface {
	Progress() (claimed, total int, active bool)
}

// ProgressWatcher samples a ProgressSource on a fixed interval and reports
// the percentage of claimed rows. Reporting is best effort: samples are
// dropped while no pass is active, and report is skipped while disabled.
type ProgressWatcher struct {
	source   ProgressSource
	interval time.Duration
	report   ReportFunc
	observe  ReportFunc
	enabled  atomic.Bool

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  atomic.Bool
}

// NewProgressWatcher creates a watcher. observe, if not nil, sees every
// sample of an active pass regardless of the display toggle; report only
// sees them while enabled. The watcher starts enabled.
func NewProgressWatcher(source ProgressSource, interval time.Duration, report, observe ReportFunc) *ProgressWatcher {
	w := &ProgressWatcher{
		source:   source,
		interval: interval,
		report:   report,
		observe:  observe,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.enabled.Store(true)
	return w
}

// SetEnabled toggles the report callback.
func (w *ProgressWatcher) SetEnabled(enabled bool) {
	w.enabled.Store(enabled)
}

// Enabled reports the display toggle.
func (w *ProgressWatcher) Enabled() bool {
	return w.enabled.Load()
}

// Start launches the sampling goroutine. It does nothing for a
// non-positive interval.
func (w *ProgressWatcher) Start() {
	if w.interval <= 0 || !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run()
}

func (w *ProgressWatcher) run() {
	defer close(w.done)
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			w.Sample()
		case <-w.stopCh:
			return
		}
	}
}

// Sample takes one reading. It returns false when no pass is active.
func (w *ProgressWatcher) Sample() (percent float64, sampled bool) {
	claimed, total, active := w.source.Progress()
	if !active || total <= 0 {
		return 0, false
	}
	percent = float64(claimed) * 100 / float64(total)
	if w.observe != nil {
		w.observe(percent)
	}
	if w.report != nil && w.enabled.Load() && percent < 100 {
		w.report(percent)
	}
	return percent, true
}

// Stop ends the sampling goroutine and waits for it.
func (w *ProgressWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.started.Load() {
			<-w.done
		}
	})
}
