package fractal

import (
	"encoding/binary"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// pass holds what workers read while a pass runs
type pass struct {
	bounds   types.Bounds
	init     types.Complex
	mode     types.Mode
	maxIter  int
	dst      *Buffer
	palette  *Palette
	interior uint32
	xIncr    float64
	yIncr    float64
}

func newPass(p Params, dst *Buffer, palette *Palette) pass {
	return pass{
		bounds:   p.Bounds,
		init:     p.Init,
		mode:     p.Mode,
		maxIter:  p.MaxIterations,
		dst:      dst,
		palette:  palette,
		interior: dst.Format.MapRGB(0, 0, 0),
		xIncr:    p.Bounds.Width() / float64(dst.Width),
		yIncr:    p.Bounds.Height() / float64(dst.Height),
	}
}

// renderRow writes row y of the destination. Workers own disjoint rows.
func (ps *pass) renderRow(y int) {
	line := ps.dst.Row(y)
	point := types.Complex{Im: ps.bounds.Ymin + float64(y)*ps.yIncr}
	for x := 0; x < ps.dst.Width; x++ {
		point.Re = ps.bounds.Xmin + float64(x)*ps.xIncr
		iter, modulus := EscapePoint(ps.mode, point, ps.init, ps.maxIter)

		px := ps.interior
		if v, ok := Smooth(iter, modulus, ps.maxIter); ok {
			px = ps.palette.Lookup(v)
		}
		binary.NativeEndian.PutUint32(line[x*bytesPerPixel:], px)
	}
}

// parks until woken for a pass or told to quit
func (e *Engine) runWorker(id int) {
	defer e.wg.Done()
	for {
		select {
		case <-e.wake[id]:
		case <-e.quit:
			return
		}
		e.work()
	}
}

func (e *Engine) work() {
	for {
		y, ok := e.claimRow()
		if !ok {
			return
		}
		if e.onRow != nil {
			e.onRow(y)
		}
		e.pass.renderRow(y)
	}
}

// claimRow reserves the next row. Once the counter equals the height the
// caller counts as finished for this pass; the last finisher releases Render.
func (e *Engine) claimRow() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	y := int(e.nextRow.Load())
	if y == e.pass.dst.Height {
		e.finished++
		if e.finished == e.workers {
			e.done <- struct{}{}
		}
		return 0, false
	}
	e.nextRow.Store(int64(y + 1))
	return y, true
}
