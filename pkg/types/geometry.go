package types

import "fmt"

// Bounds is the rectangle of the complex plane mapped onto a pixel buffer.
// Row 0 of the buffer maps to Ymin and column 0 to Xmin.
type Bounds struct {
	Xmin float64 `yaml:"xmin"`
	Xmax float64 `yaml:"xmax"`
	Ymin float64 `yaml:"ymin"`
	Ymax float64 `yaml:"ymax"`
}

// Width is the real span of b.
func (b Bounds) Width() float64 {
	return b.Xmax - b.Xmin
}

// Height is the imaginary span of b.
func (b Bounds) Height() float64 {
	return b.Ymax - b.Ymin
}

// Valid reports whether both axes are strictly ordered.
func (b Bounds) Valid() bool {
	return b.Xmin < b.Xmax && b.Ymin < b.Ymax
}

func (b Bounds) String() string {
	return fmt.Sprintf("%.8f %.8f %.8f %.8f", b.Xmin, b.Xmax, b.Ymin, b.Ymax)
}

// Complex is used both as the Julia constant c and the Mandelbrot starting
// point z0, depending on the render mode.
type Complex struct {
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

// Dimension is a pixel size.
type Dimension struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func (d Dimension) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Mode selects which set is rendered.
type Mode int

const (
	Mandelbrot Mode = iota
	Julia
)

func (m Mode) String() string {
	switch m {
	case Mandelbrot:
		return "mandelbrot"
	case Julia:
		return "julia"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Toggle switches between Mandelbrot and Julia.
func (m Mode) Toggle() Mode {
	if m == Julia {
		return Mandelbrot
	}
	return Julia
}

// pixel offsets, used for mouse drags
type Pointi struct {
	X int
	Y int
}
