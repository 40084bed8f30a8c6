package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/joshvictor1024/go-fractal/internal/logger"
	"github.com/joshvictor1024/go-fractal/internal/view"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

var testView = view.State{
	Bounds:        types.Bounds{Xmin: -2, Xmax: 2, Ymin: -1.5, Ymax: 1.5},
	MaxIterations: 32,
	Mode:          types.Mandelbrot,
}

func newTestScene(t *testing.T) *scene {
	t.Helper()
	eng, err := fractal.New(1, fractal.WithProgressInterval(0))
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return newScene(nil, eng, testView, "fractal", logger.NewNop())
}

func TestHandleKey(t *testing.T) {
	s := newTestScene(t)

	require.Equal(t, actionQuit, s.handleKey(sdl.K_ESCAPE))
	require.Equal(t, actionNone, s.handleKey(sdl.K_a))
	require.Equal(t, testView, s.state)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_t))
	require.InDelta(t, 2.0, s.state.Bounds.Width(), 1e-12)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_y))
	require.Equal(t, 48, s.state.MaxIterations)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_u))
	require.Equal(t, actionRedraw, s.handleKey(sdl.K_i))
	require.InDelta(t, view.InitStep, s.state.Init.Re, 1e-12)
	require.InDelta(t, view.InitStep, s.state.Init.Im, 1e-12)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_SPACE))
	require.Equal(t, types.Julia, s.state.Mode)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_r))
	require.Equal(t, testView, s.state)

	require.Equal(t, actionRedraw, s.handleKey(sdl.K_f))
	require.Equal(t, testView, s.state)
}

func TestHandleArrowKeys(t *testing.T) {
	s := newTestScene(t)

	s.handleKey(sdl.K_RIGHT)
	require.InDelta(t, -2+0.2, s.state.Bounds.Xmin, 1e-12)
	s.handleKey(sdl.K_LEFT)
	require.InDelta(t, -2.0, s.state.Bounds.Xmin, 1e-12)

	s.handleKey(sdl.K_UP)
	require.InDelta(t, -1.5-0.15, s.state.Bounds.Ymin, 1e-12)
	s.handleKey(sdl.K_DOWN)
	require.InDelta(t, -1.5, s.state.Bounds.Ymin, 1e-12)
}

func TestPublishQueueKeepsNewestFrame(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var got []*fractal.Buffer
	pq := newPublishQueue(func(b *fractal.Buffer) {
		<-release
		mu.Lock()
		got = append(got, b)
		mu.Unlock()
	})

	first := fractal.NewBuffer(1, 1)
	require.True(t, pq.send(first))
	// let the publisher pick up the first frame and block on it
	require.Eventually(t, func() bool { return pq.cq.Len() == 0 }, time.Second, time.Millisecond)

	stale := fractal.NewBuffer(1, 1)
	newest := fractal.NewBuffer(1, 1)
	require.True(t, pq.send(stale))
	require.True(t, pq.send(newest))
	require.Equal(t, 1, pq.cq.Len())

	close(release)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, time.Millisecond)

	pq.close()
	require.Same(t, first, got[0])
	require.Same(t, newest, got[1])
	require.False(t, pq.send(fractal.NewBuffer(1, 1)))
}
