// Package view holds the interactive view state and the transformations the
// front end applies to it between passes.
package view

import (
	"fmt"
	"strings"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

const (
	// MinIterations is the smallest iteration cap a view can reach.
	MinIterations = 4

	// fraction of an axis moved by one pan step
	panDivisor = 20

	// distance init moves per key press
	InitStep = 0.02
)

// State is what one pass needs besides the destination buffer.
type State struct {
	Bounds        types.Bounds
	Init          types.Complex
	MaxIterations int
	Mode          types.Mode
}

// Params converts the state for the render engine.
func (s State) Params() fractal.Params {
	return fractal.Params{
		Bounds:        s.Bounds,
		Init:          s.Init,
		Mode:          s.Mode,
		MaxIterations: s.MaxIterations,
	}
}

// pan moves the view by a fraction of the current spans; positive dx moves
// right, positive dy moves towards larger imaginary parts.
func (s *State) pan(dx, dy float64) {
	mx := s.Bounds.Width() * dx
	my := s.Bounds.Height() * dy
	s.Bounds.Xmin += mx
	s.Bounds.Xmax += mx
	s.Bounds.Ymin += my
	s.Bounds.Ymax += my
}

// Up moves the view 1/20 of its height towards smaller imaginary parts,
// which is up on screen since row 0 maps to Ymin.
func (s *State) Up() { s.pan(0, -1.0/panDivisor) }

// Down moves the view 1/20 of its height towards larger imaginary parts.
func (s *State) Down() { s.pan(0, 1.0/panDivisor) }

// Left moves the view 1/20 of its width to the left.
func (s *State) Left() { s.pan(-1.0/panDivisor, 0) }

// Right moves the view 1/20 of its width to the right.
func (s *State) Right() { s.pan(1.0/panDivisor, 0) }

// Drag moves the view by a pixel offset on a screen of the given size, so
// the point under the cursor follows the mouse.
func (s *State) Drag(delta types.Pointi, screen types.Dimension) {
	if screen.Width <= 0 || screen.Height <= 0 {
		return
	}
	s.pan(float64(delta.X)/float64(screen.Width), float64(delta.Y)/float64(screen.Height))
}

// Zoom shrinks the view around its centre: each side moves inwards by
// span/(2*factor), so the new span is span*(1-1/factor).
func (s *State) Zoom(factor float64) {
	s.Bounds = ZoomBounds(s.Bounds, factor)
}

// Unzoom grows the view around its centre: each side moves outwards by
// span/factor.
func (s *State) Unzoom(factor float64) {
	dx := s.Bounds.Width() / factor
	dy := s.Bounds.Height() / factor
	s.Bounds.Xmin -= dx
	s.Bounds.Xmax += dx
	s.Bounds.Ymin -= dy
	s.Bounds.Ymax += dy
}

// MinZoomFactor is the exclusive lower bound of a ZoomBounds factor. The
// span shrinks to span*(1-1/factor), which is empty at 1 and reversed below.
const MinZoomFactor = 1.0

// ZoomBounds is Zoom on a bare rectangle, as used by capture sequences.
func ZoomBounds(b types.Bounds, factor float64) types.Bounds {
	factor *= 2
	dx := b.Width() / factor
	dy := b.Height() / factor
	return types.Bounds{
		Xmin: b.Xmin + dx,
		Xmax: b.Xmax - dx,
		Ymin: b.Ymin + dy,
		Ymax: b.Ymax - dy,
	}
}

// MoreIterations multiplies the iteration cap.
func (s *State) MoreIterations(factor float64) {
	s.MaxIterations = int(float64(s.MaxIterations) * factor)
}

// FewerIterations divides the iteration cap unless that would go below
// MinIterations.
func (s *State) FewerIterations(factor float64) {
	n := int(float64(s.MaxIterations) / factor)
	if n < MinIterations {
		return
	}
	s.MaxIterations = n
}

// MoveInit shifts the initial complex value.
func (s *State) MoveInit(dre, dim float64) {
	s.Init.Re += dre
	s.Init.Im += dim
}

// ToggleMode switches between Mandelbrot and Julia.
func (s *State) ToggleMode() {
	s.Mode = s.Mode.Toggle()
}

// Describe prints the parameters of the view and a command line that renders
// the same picture in photo mode.
func (s State) Describe(program string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bounds: %s\n", s.Bounds)
	fmt.Fprintf(&sb, "init: %.2f %.2f\n", s.Init.Re, s.Init.Im)
	fmt.Fprintf(&sb, "iterations: %d\n", s.MaxIterations)
	fmt.Fprintf(&sb, "set: %s\n", s.Mode)
	fmt.Fprintf(&sb, "%s -photo -bounds %.8f,%.8f,%.8f,%.8f -init %.2f,%.2f -iterations %d",
		program,
		s.Bounds.Xmin, s.Bounds.Xmax, s.Bounds.Ymin, s.Bounds.Ymax,
		s.Init.Re, s.Init.Im,
		s.MaxIterations,
	)
	if s.Mode == types.Julia {
		sb.WriteString(" -julia")
	}
	return sb.String()
}
