// Package capture runs the headless modes: a single photo, or a zoom
// sequence whose frames are encoded and written while the next one renders.
package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joshvictor1024/go-fractal/internal/bitmap"
	"github.com/joshvictor1024/go-fractal/internal/logger"
	"github.com/joshvictor1024/go-fractal/internal/metrics"
	"github.com/joshvictor1024/go-fractal/internal/view"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// DefaultSavers is the number of goroutines writing frames of a sequence.
const DefaultSavers = 2

// Renderer is the part of *fractal.Engine a Recorder drives.
type Renderer interface {
	Render(p fractal.Params, dst *fractal.Buffer) (time.Duration, error)
	SetProgressDisplay(enabled bool)
}

// Recorder renders pictures with a Renderer and saves them as BMP files.
type Recorder struct {
	renderer Renderer
	logger   types.Logger
	metrics  types.MetricsCollector
	publish  func(*fractal.Buffer)
	savers   int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(l types.Logger) Option {
	return func(r *Recorder) { r.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m types.MetricsCollector) Option {
	return func(r *Recorder) { r.metrics = m }
}

// WithPublisher is called with every finished frame, before it is saved.
// The buffer must not be modified.
func WithPublisher(fn func(*fractal.Buffer)) Option {
	return func(r *Recorder) { r.publish = fn }
}

// WithSavers sets how many frames of a sequence may be written at once.
func WithSavers(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.savers = n
		}
	}
}

// NewRecorder creates a Recorder.
func NewRecorder(renderer Renderer, opts ...Option) *Recorder {
	r := &Recorder{
		renderer: renderer,
		logger:   logger.NewNop(),
		metrics:  metrics.NewNop(),
		savers:   DefaultSavers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Photo renders p once at the given size and saves it as <stem>0.bmp.
func (r *Recorder) Photo(p fractal.Params, size types.Dimension, stem string) (string, error) {
	buf := fractal.NewBuffer(size.Width, size.Height)
	if _, err := r.renderer.Render(p, buf); err != nil {
		return "", err
	}
	if r.publish != nil {
		r.publish(buf)
	}

	name, err := r.save(buf, stem, 0)
	if err != nil {
		return "", err
	}
	r.logger.Info("photo saved", "file", name)
	return name, nil
}

// Sequence renders frames pictures, zooming into p.Bounds by zoomSpeed after
// each one, and saves them as <stem>0.bmp to <stem><frames-1>.bmp. Per-pass
// progress display is turned off; overall progress is logged per frame.
//
// Frames are written by background savers while rendering continues.
// Sequence returns once every rendered frame is on disk, with the first
// render, save or context error.
func (r *Recorder) Sequence(ctx context.Context, p fractal.Params, size types.Dimension, stem string, frames int, zoomSpeed float64) error {
	if frames < 1 {
		return fmt.Errorf("capture needs at least one frame, got %d", frames)
	}
	if zoomSpeed <= view.MinZoomFactor {
		return fmt.Errorf("capture zoom speed must be > %v, got %v", view.MinZoomFactor, zoomSpeed)
	}

	r.renderer.SetProgressDisplay(false)

	s := newSaver(r, stem)
	s.start(r.savers)

	buf := fractal.NewBuffer(size.Width, size.Height)
	start := time.Now()
	var renderErr error
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			renderErr = err
			break
		}
		r.logger.Info("capture progress", "frame", i, "frames", frames, "percent", i*100/frames)

		if _, err := r.renderer.Render(p, buf); err != nil {
			renderErr = fmt.Errorf("frame %d: %w", i, err)
			break
		}
		frame := buf.Clone()
		if r.publish != nil {
			r.publish(frame)
		}
		s.queue.Send(savedFrame{index: i, buf: frame})
		p.Bounds = view.ZoomBounds(p.Bounds, zoomSpeed)
	}
	saveErr := s.wait()

	if renderErr != nil {
		return renderErr
	}
	if saveErr != nil {
		return saveErr
	}
	r.logger.Info("capture finished",
		"frames", frames,
		"elapsed", fmt.Sprintf("%.3fs", time.Since(start).Seconds()),
	)
	return nil
}

func (r *Recorder) save(buf *fractal.Buffer, stem string, index int) (string, error) {
	start := time.Now()
	name, err := bitmap.Save(buf, stem, index)
	if err != nil {
		return "", err
	}
	r.metrics.RecordFrameSaved(time.Since(start))
	r.logger.Debug("frame saved", "file", name, "digest", fmt.Sprintf("%016x", buf.Digest()))
	return name, nil
}

// a nil buf tells one saver to stop
type savedFrame struct {
	index int
	buf   *fractal.Buffer
}

// saver writes frames from a queue in the background.
// 1 ctrl M send N recv, like the queue itself.
type saver struct {
	rec   *Recorder
	stem  string
	queue *types.ControlledQueue[savedFrame]
	n     int

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func newSaver(rec *Recorder, stem string) *saver {
	return &saver{
		rec:   rec,
		stem:  stem,
		queue: types.NewControlledQueue[savedFrame](),
	}
}

func (s *saver) start(n int) {
	s.n = n
	s.wg.Add(n)
	for i := 0; i < n; i++ {
		go s.run()
	}
}

func (s *saver) run() {
	defer s.wg.Done()
	for {
		f, ok := s.queue.Recv()
		if !ok || f.buf == nil {
			return
		}
		if _, err := s.rec.save(f.buf, s.stem, f.index); err != nil {
			s.errOnce.Do(func() { s.err = err })
			s.rec.logger.Error("failed to save frame", "frame", f.index, "error", err)
		}
	}
}

// wait queues one stop marker per saver behind the frames already sent and
// returns the first save error once every saver has stopped.
func (s *saver) wait() error {
	for i := 0; i < s.n; i++ {
		s.queue.Send(savedFrame{})
	}
	s.wg.Wait()
	s.queue.Close()
	return s.err
}
