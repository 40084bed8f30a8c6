package fractal

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/zeebo/xxh3"
)

const bytesPerPixel = 4

// PixelFormat packs RGB triples into the native 32-bit pixel value of a
// destination buffer and back.
type PixelFormat interface {
	MapRGB(r, g, b uint8) uint32
	GetRGB(pixel uint32) (r, g, b uint8)
}

// XRGB8888 is the 32-bit format used by buffers allocated with NewBuffer:
// 0xFFRRGGBB.
type XRGB8888 struct{}

func (XRGB8888) MapRGB(r, g, b uint8) uint32 {
	return 0xFF<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func (XRGB8888) GetRGB(pixel uint32) (r, g, b uint8) {
	return uint8(pixel >> 16), uint8(pixel >> 8), uint8(pixel)
}

// Buffer is a caller-owned grid of 32-bit pixels. Pitch is the row stride in
// bytes and may exceed Width*4. Pixels are stored in native byte order, the
// way SDL surfaces store them.
//
// The engine writes rows in place and never resizes the buffer. A Buffer's
// identity (its pointer) decides when the color table is rebuilt.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
	Pitch  int
	Format PixelFormat
}

// NewBuffer allocates a tightly packed XRGB8888 buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Pix:    make([]byte, width*height*bytesPerPixel),
		Width:  width,
		Height: height,
		Pitch:  width * bytesPerPixel,
		Format: XRGB8888{},
	}
}

// Validate checks the buffer geometry against its backing slice.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidBuffer)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if b.Pitch < b.Width*bytesPerPixel {
		return fmt.Errorf("%w: pitch %d shorter than row of %d pixels", ErrInvalidBuffer, b.Pitch, b.Width)
	}
	if need := b.Pitch*(b.Height-1) + b.Width*bytesPerPixel; len(b.Pix) < need {
		return fmt.Errorf("%w: %d bytes, need %d", ErrInvalidBuffer, len(b.Pix), need)
	}
	if b.Format == nil {
		return fmt.Errorf("%w: nil pixel format", ErrInvalidBuffer)
	}
	return nil
}

// Row returns the pixels of row y, without padding.
func (b *Buffer) Row(y int) []byte {
	off := y * b.Pitch
	return b.Pix[off : off+b.Width*bytesPerPixel]
}

// Pixel returns the packed value at (x, y).
func (b *Buffer) Pixel(x, y int) uint32 {
	off := y*b.Pitch + x*bytesPerPixel
	return binary.NativeEndian.Uint32(b.Pix[off:])
}

// SetPixel stores a packed value at (x, y).
func (b *Buffer) SetPixel(x, y int, v uint32) {
	off := y*b.Pitch + x*bytesPerPixel
	binary.NativeEndian.PutUint32(b.Pix[off:], v)
}

// Clone copies the buffer into a new tightly packed buffer of the same
// format.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{
		Pix:    make([]byte, b.Width*b.Height*bytesPerPixel),
		Width:  b.Width,
		Height: b.Height,
		Pitch:  b.Width * bytesPerPixel,
		Format: b.Format,
	}
	for y := 0; y < b.Height; y++ {
		copy(c.Row(y), b.Row(y))
	}
	return c
}

// Digest hashes the visible pixels, row by row, ignoring pitch padding.
func (b *Buffer) Digest() uint64 {
	h := xxh3.New()
	for y := 0; y < b.Height; y++ {
		_, _ = h.Write(b.Row(y))
	}
	return h.Sum64()
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image. Pixels are always opaque.
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return color.RGBA{}
	}
	r, g, bl := b.Format.GetRGB(b.Pixel(x, y))
	return color.RGBA{R: r, G: g, B: bl, A: 0xFF}
}

var _ image.Image = (*Buffer)(nil)
