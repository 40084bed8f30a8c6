// Package fractal renders the Mandelbrot and Julia sets into 32-bit pixel
// buffers with bounded escape-time iteration.
//
// An Engine owns a fixed pool of worker goroutines created once and reused
// across passes. Each call to Render is one pass: workers race to claim rows,
// compute them with Escape and color them through a Palette, and the caller
// is released when every row has been written.
//
// Example:
//
//	eng, err := fractal.New(runtime.NumCPU())
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	buf := fractal.NewBuffer(800, 600)
//	elapsed, err := eng.Render(fractal.Params{
//	    Bounds:        types.Bounds{Xmin: -2, Xmax: 2, Ymin: -1.5, Ymax: 1.5},
//	    Mode:          types.Mandelbrot,
//	    MaxIterations: 256,
//	}, buf)
package fractal
