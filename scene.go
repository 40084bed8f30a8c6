package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/joshvictor1024/go-fractal/internal/view"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

const (
	zoomStep      = 2.0
	iterationStep = 1.5
)

const controls = `---- controls ----
arrows  move the view
r       reset the view
f       change colors
t/g     zoom in/out
y/h     more/fewer iterations per point (*1.5 or /1.5)
u/j     increase/decrease the real part of init (c or z0) by 0.02
i/k     increase/decrease the imaginary part of init by 0.02
p       print the current parameters and a command line for a photo of them
space   switch between the Mandelbrot and Julia sets
drag    move the view with the mouse
esc     quit`

// what the event loop should do after an input
type action int

const (
	actionNone action = iota
	actionRedraw
	actionQuit
)

type scene struct {
	canvas  *canvas
	engine  *fractal.Engine
	state   view.State
	initial view.State
	program string
	logger  types.Logger
	pq      *publishQueue // nil without preview
}

func newScene(c *canvas, eng *fractal.Engine, initial view.State, program string, logger types.Logger) *scene {
	return &scene{
		canvas:  c,
		engine:  eng,
		state:   initial,
		initial: initial,
		program: program,
		logger:  logger,
	}
}

func (s *scene) close() {
	if s.pq != nil {
		s.pq.close()
	}
}

func (s *scene) draw() error {
	buf, err := s.canvas.render(s.engine, s.state.Params())
	if err != nil {
		return err
	}
	if err := s.canvas.present(); err != nil {
		return err
	}
	if s.pq != nil {
		s.pq.send(buf.Clone())
	}
	return nil
}

// deltaPixel is press position minus release position
func (s *scene) updateView(deltaPixel types.Pointi) action {
	if deltaPixel == (types.Pointi{}) {
		return actionNone
	}
	s.state.Drag(deltaPixel, s.canvas.size())
	return actionRedraw
}

func (s *scene) handleKey(sym sdl.Keycode) action {
	switch sym {
	case sdl.K_ESCAPE:
		return actionQuit
	case sdl.K_UP:
		s.state.Up()
	case sdl.K_DOWN:
		s.state.Down()
	case sdl.K_LEFT:
		s.state.Left()
	case sdl.K_RIGHT:
		s.state.Right()
	case sdl.K_t:
		s.state.Zoom(zoomStep)
	case sdl.K_g:
		s.state.Unzoom(zoomStep)
	case sdl.K_y:
		s.state.MoreIterations(iterationStep)
	case sdl.K_h:
		s.state.FewerIterations(iterationStep)
	case sdl.K_u:
		s.state.MoveInit(view.InitStep, 0)
	case sdl.K_j:
		s.state.MoveInit(-view.InitStep, 0)
	case sdl.K_i:
		s.state.MoveInit(0, view.InitStep)
	case sdl.K_k:
		s.state.MoveInit(0, -view.InitStep)
	case sdl.K_SPACE:
		s.state.ToggleMode()
	case sdl.K_r:
		s.state = s.initial
	case sdl.K_f:
		s.engine.ChangeColors()
	case sdl.K_p:
		fmt.Println(s.state.Describe(s.program))
		return actionNone
	default:
		return actionNone
	}
	s.logger.Debug("view changed",
		"bounds", s.state.Bounds.String(),
		"iterations", s.state.MaxIterations,
		"mode", s.state.Mode,
	)
	return actionRedraw
}
