package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/joshvictor1024/go-fractal/internal/capture"
	"github.com/joshvictor1024/go-fractal/internal/config"
	"github.com/joshvictor1024/go-fractal/internal/logging"
	"github.com/joshvictor1024/go-fractal/internal/metrics"
	"github.com/joshvictor1024/go-fractal/internal/preview"
	"github.com/joshvictor1024/go-fractal/internal/view"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

const shutdownTimeout = 2 * time.Second

// SDL wants every video call on the main thread
func init() {
	runtime.LockOSThread()
}

func sdlInit(windowTitle string, size types.Dimension, fullscreen bool) (*sdl.Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_TIMER); err != nil {
		return nil, err
	}
	sdl.StopTextInput()

	var flags uint32 = sdl.WINDOW_SHOWN
	if fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	window, err := sdl.CreateWindow(
		windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(size.Width), int32(size.Height), flags,
	)
	if err != nil {
		sdl.Quit()
		return nil, err
	}
	return window, nil
}

func sdlClose(window *sdl.Window) {
	window.Destroy()
	sdl.Quit()
}

// serveHTTP runs h on addr until the returned stop function is called
func serveHTTP(addr, name string, h http.Handler, log types.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("listening", "server", name, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "server", name, "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func main() {
	program := filepath.Base(os.Args[0])
	log := logging.NewText(os.Stderr, slog.LevelInfo)

	cfg, err := config.Parse(program, os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal("bad configuration", "error", err)
	}
	if level, err := logging.ParseLevel(cfg.LogLevel); err == nil {
		log = logging.NewText(os.Stderr, level)
	}

	if err := run(cfg, program, log); err != nil {
		log.Fatal("fractal failed", "error", err)
	}
}

func run(cfg *config.Config, program string, log types.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mc types.MetricsCollector = metrics.NewNop()
	if cfg.MetricsAddr != "" {
		mc = metrics.NewPrometheus(nil, "")
		defer serveHTTP(cfg.MetricsAddr, "metrics", promhttp.Handler(), log)()
	}

	var pv *preview.Server
	if cfg.PreviewAddr != "" {
		pv = preview.NewServer(log)
		defer pv.Close()
		defer serveHTTP(cfg.PreviewAddr, "preview", pv.Handler(), log)()
	}

	eng, err := fractal.New(cfg.Threads,
		fractal.WithLogger(log),
		fractal.WithMetrics(mc),
		fractal.WithProgressInterval(cfg.ProgressInterval),
	)
	if err != nil {
		return err
	}
	defer eng.Close()
	eng.SetProgressDisplay(!cfg.Quiet)

	initial := view.State{
		Bounds:        cfg.Bounds,
		Init:          cfg.Init,
		MaxIterations: cfg.MaxIterations,
		Mode:          cfg.Mode(),
	}

	if cfg.Photo || cfg.Capture {
		opts := []capture.Option{capture.WithLogger(log), capture.WithMetrics(mc)}
		if pv != nil {
			opts = append(opts, capture.WithPublisher(pv.Publish))
		}
		rec := capture.NewRecorder(eng, opts...)
		if cfg.Photo {
			_, err := rec.Photo(initial.Params(), cfg.Dimension, cfg.PictureName)
			return err
		}
		return rec.Sequence(ctx, initial.Params(), cfg.Dimension, cfg.PictureName, cfg.CaptureFrames, cfg.CaptureZoomSpeed)
	}

	return interactive(ctx, cfg, program, eng, initial, pv, log)
}

func interactive(ctx context.Context, cfg *config.Config, program string, eng *fractal.Engine, initial view.State, pv *preview.Server, log types.Logger) error {
	// start SDL
	window, err := sdlInit("Mandelbrot", cfg.Dimension, cfg.Fullscreen)
	if err != nil {
		return err
	}
	defer sdlClose(window)

	c, err := newCanvas(window)
	if err != nil {
		return err
	}
	s := newScene(c, eng, initial, program, log)
	if pv != nil {
		s.pq = newPublishQueue(pv.Publish)
	}
	defer s.close()

	fmt.Println(controls)
	fmt.Printf("using %d render workers\n\n", eng.Workers())

	// WaitEvent blocks, a signal has to arrive as an event
	go func() {
		<-ctx.Done()
		sdl.PushEvent(&sdl.QuitEvent{Type: sdl.QUIT, Timestamp: sdl.GetTicks()})
	}()

	if err := s.draw(); err != nil {
		return err
	}

	// start loop
	mouseDownPosition := types.Pointi{}
	for {
		// WaitEvent must be on the same thread that did INIT_VIDEO
		e := sdl.WaitEvent()

		// WaitEvent returns nil on some error
		if e == nil {
			return fmt.Errorf("waiting for SDL event failed: %v", sdl.GetError())
		}

		next := actionNone
		switch t := e.(type) {
		case *sdl.QuitEvent:
			log.Debug("quit event")
			next = actionQuit
		case *sdl.MouseButtonEvent:
			if t.Type == sdl.MOUSEBUTTONDOWN {
				mouseDownPosition = types.Pointi{X: int(t.X), Y: int(t.Y)}
			} else if t.Type == sdl.MOUSEBUTTONUP {
				next = s.updateView(types.Pointi{
					X: mouseDownPosition.X - int(t.X),
					Y: mouseDownPosition.Y - int(t.Y),
				})
			}
		case *sdl.KeyboardEvent:
			if t.Type == sdl.KEYDOWN {
				next = s.handleKey(t.Keysym.Sym)
			}
		case *sdl.WindowEvent:
			switch t.Event {
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				next = actionRedraw
			case sdl.WINDOWEVENT_EXPOSED:
				if err := c.present(); err != nil {
					return err
				}
			}
		}

		switch next {
		case actionQuit:
			return nil
		case actionRedraw:
			if err := s.draw(); err != nil {
				return err
			}
		}
	}
}
