package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// sdlFormat maps colors through the pixel format of an SDL surface
type sdlFormat struct {
	f *sdl.PixelFormat
}

func (sf sdlFormat) MapRGB(r, g, b uint8) uint32 {
	return sdl.MapRGB(sf.f, r, g, b)
}

func (sf sdlFormat) GetRGB(pixel uint32) (r, g, b uint8) {
	return sdl.GetRGB(pixel, sf.f)
}

// canvas is the window surface seen as a render buffer.
// the buffer is only replaced when SDL hands out a new surface,
// so the engine keeps its color table between passes
type canvas struct {
	window  *sdl.Window
	surface *sdl.Surface
	buf     *fractal.Buffer
}

func newCanvas(w *sdl.Window) (*canvas, error) {
	c := &canvas{window: w}
	if _, err := c.buffer(); err != nil {
		return nil, err
	}
	return c, nil
}

// only call from the thread that did INIT_VIDEO
func (c *canvas) buffer() (*fractal.Buffer, error) {
	s, err := c.window.GetSurface()
	if err != nil {
		return nil, err
	}
	if s == c.surface && c.buf != nil {
		return c.buf, nil
	}
	if s.Format.BytesPerPixel != 4 {
		return nil, fmt.Errorf("window surface has %d bytes per pixel, need 4", s.Format.BytesPerPixel)
	}

	c.surface = s
	c.buf = &fractal.Buffer{
		Pix:    s.Pixels(),
		Width:  int(s.W),
		Height: int(s.H),
		Pitch:  int(s.Pitch),
		Format: sdlFormat{f: s.Format},
	}
	return c.buf, nil
}

func (c *canvas) size() types.Dimension {
	if c.buf == nil {
		return types.Dimension{}
	}
	return types.Dimension{Width: c.buf.Width, Height: c.buf.Height}
}

// render runs one pass straight into the surface pixels
func (c *canvas) render(eng *fractal.Engine, p fractal.Params) (*fractal.Buffer, error) {
	buf, err := c.buffer()
	if err != nil {
		return nil, err
	}

	if c.surface.MustLock() {
		if err := c.surface.Lock(); err != nil {
			return nil, err
		}
		defer c.surface.Unlock()
	}
	if _, err := eng.Render(p, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *canvas) present() error {
	return c.window.UpdateSurface()
}
