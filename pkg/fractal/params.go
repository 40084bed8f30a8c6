package fractal

import (
	"fmt"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// Params fully determines one render pass. The engine copies it at the start
// of Render.
type Params struct {
	Bounds        types.Bounds
	Init          types.Complex
	Mode          types.Mode
	MaxIterations int
}

// Validate checks that the bounds are ordered and at least one iteration is
// allowed.
func (p Params) Validate() error {
	if !p.Bounds.Valid() {
		return fmt.Errorf("%w: bounds %s", ErrInvalidParams, p.Bounds)
	}
	if p.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidParams, p.MaxIterations)
	}
	if p.Mode != types.Mandelbrot && p.Mode != types.Julia {
		return fmt.Errorf("%w: %s", ErrInvalidParams, p.Mode)
	}
	return nil
}
