package fractal

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joshvictor1024/go-fractal/internal/logger"
	"github.com/joshvictor1024/go-fractal/internal/metrics"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// Engine renders passes on a fixed pool of worker goroutines created once by
// New and parked between passes.
//
// Each pass: Render installs the pass state, wakes every worker once through
// its own wake channel and blocks on done. Workers claim rows under mu until
// the counter reaches the buffer height; each worker then counts itself as
// finished exactly once and parks again. The last one to finish signals done.
type Engine struct {
	workers int
	logger  types.Logger
	metrics types.MetricsCollector
	onRow   func(row int)
	rng     *rand.Rand

	// serialises Render and Close, at most one pass in flight
	renderMu sync.Mutex
	closed   bool

	// claim state, guarded by mu
	mu       sync.Mutex
	finished int
	// nextRow is written under mu. The progress watcher loads it without
	// the lock on purpose: it only grows during a pass and is only shown
	// to humans.
	nextRow atomic.Int64
	height  atomic.Int64
	active  atomic.Bool

	// read-only while workers run
	pass pass

	palette      *Palette
	paletteOwner *Buffer
	recolor      atomic.Bool

	wake      []chan struct{}
	done      chan struct{}
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	watcher *ProgressWatcher
}

// New starts workers render goroutines and the progress watcher.
func New(workers int, opts ...Option) (*Engine, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPoolSize, workers)
	}

	o := engineOptions{progressInterval: DefaultProgressInterval}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // colors only
	}

	e := &Engine{
		workers: workers,
		logger:  o.logger,
		metrics: o.metrics,
		onRow:   o.rowObserver,
		rng:     o.rng,
		wake:    make([]chan struct{}, workers),
		done:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}

	report := o.progressReport
	if report == nil {
		report = func(percent float64) {
			e.logger.Info("render progress", "percent", fmt.Sprintf("%.1f", percent))
		}
	}
	e.watcher = NewProgressWatcher(e, o.progressInterval, report, e.metrics.SetProgress)

	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		e.wake[i] = make(chan struct{}, 1)
		go e.runWorker(i)
	}
	e.watcher.Start()

	e.logger.Debug("render engine started", "workers", workers, "progressInterval", o.progressInterval)
	return e, nil
}

// Workers returns the fixed pool size.
func (e *Engine) Workers() int {
	return e.workers
}

// Render computes every row of dst for p and returns the wall-clock time of
// the pass. It blocks until the pass is complete; concurrent calls are
// serialised. dst must not be read or written by the caller until Render
// returns.
func (e *Engine) Render(p Params, dst *Buffer) (time.Duration, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if err := dst.Validate(); err != nil {
		return 0, err
	}

	e.renderMu.Lock()
	defer e.renderMu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}

	start := time.Now()
	e.preparePalette(dst)
	e.pass = newPass(p, dst, e.palette)

	e.mu.Lock()
	e.finished = 0
	e.nextRow.Store(0)
	e.mu.Unlock()
	e.height.Store(int64(dst.Height))
	e.active.Store(true)

	for _, w := range e.wake {
		w <- struct{}{}
	}
	<-e.done

	e.active.Store(false)
	elapsed := time.Since(start)

	e.metrics.RecordPass(elapsed, dst.Height)
	if e.watcher.Enabled() {
		e.logger.Info("render finished",
			"elapsed", fmt.Sprintf("%.3fs", elapsed.Seconds()),
			"size", fmt.Sprintf("%dx%d", dst.Width, dst.Height),
			"mode", p.Mode,
			"iterations", p.MaxIterations,
		)
	}
	return elapsed, nil
}

// ChangeColors asks for a randomized color table on the next pass that
// renders into the same buffer as the previous one.
func (e *Engine) ChangeColors() {
	e.recolor.Store(true)
}

// SetProgressDisplay toggles progress and pass completion messages.
func (e *Engine) SetProgressDisplay(enabled bool) {
	e.watcher.SetEnabled(enabled)
}

// Progress implements ProgressSource.
func (e *Engine) Progress() (claimed, total int, active bool) {
	return int(e.nextRow.Load()), int(e.height.Load()), e.active.Load()
}

// Watcher exposes the progress watcher, mainly so tests can sample it.
func (e *Engine) Watcher() *ProgressWatcher {
	return e.watcher
}

// Close stops the watcher and every worker. A pass in flight is allowed to
// finish first; workers only observe shutdown while parked. Close is safe to
// call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.renderMu.Lock()
		e.closed = true
		close(e.quit)
		e.renderMu.Unlock()

		e.watcher.Stop()
		e.wg.Wait()
		e.logger.Debug("render engine stopped", "workers", e.workers)
	})
}

// preparePalette runs before workers are woken. A new buffer always gets the
// default table, a pending ChangeColors only applies to the same buffer.
func (e *Engine) preparePalette(dst *Buffer) {
	if e.palette == nil || dst != e.paletteOwner {
		e.palette = BuildPalette(dst.Format, DefaultHueSweep())
		e.paletteOwner = dst
		e.recolor.Store(false)
		e.metrics.IncrementPaletteRebuild("buffer")
		e.logger.Debug("color table rebuilt", "reason", "buffer")
		return
	}
	if e.recolor.CompareAndSwap(true, false) {
		hs := RandomHueSweep(e.rng)
		e.palette = BuildPalette(dst.Format, hs)
		e.metrics.IncrementPaletteRebuild("random")
		e.logger.Debug("color table rebuilt", "reason", "random", "startHue", hs.Start, "sweep", hs.Sweep)
	}
}
