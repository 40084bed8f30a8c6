package fractal

import (
	"math"
	"math/rand"
)

// PaletteSize is the number of entries in a color table.
const PaletteSize = 4096

// default sweep used whenever a new destination buffer is seen
const (
	defaultStartHue   = 0
	defaultHueSweep   = 360
	defaultSaturation = 0.9
	defaultValue      = 0.9

	// randomized hues are drawn from [randomHueMin, randomHueMax)
	randomHueMin = 60
	randomHueMax = 360
)

// Palette maps a smoothed escape value to a packed pixel.
type Palette [PaletteSize]uint32

// HueSweep parameterises a palette: the table walks the hue circle from
// Start in PaletteSize steps of Sweep/PaletteSize degrees.
type HueSweep struct {
	Start      float64
	Sweep      float64
	Saturation float64
	Value      float64
}

// DefaultHueSweep is a full rainbow at 90% saturation and value.
func DefaultHueSweep() HueSweep {
	return HueSweep{
		Start:      defaultStartHue,
		Sweep:      defaultHueSweep,
		Saturation: defaultSaturation,
		Value:      defaultValue,
	}
}

// RandomHueSweep draws Start and Sweep from [60, 360).
func RandomHueSweep(rng *rand.Rand) HueSweep {
	return HueSweep{
		Start:      randomHueMin + rng.Float64()*(randomHueMax-randomHueMin),
		Sweep:      randomHueMin + rng.Float64()*(randomHueMax-randomHueMin),
		Saturation: defaultSaturation,
		Value:      defaultValue,
	}
}

// BuildPalette fills a table in the given pixel format. The hue wraps back
// to 0 once it passes 360.
func BuildPalette(format PixelFormat, hs HueSweep) *Palette {
	var p Palette
	step := hs.Sweep / PaletteSize
	h := hs.Start
	for i := range p {
		if h > 360 {
			h = 0
		}
		r, g, b := hsvToRGB(h, hs.Saturation, hs.Value)
		p[i] = format.MapRGB(r, g, b)
		h += step
	}
	return &p
}

// Lookup returns the color for value, clamped to [0, 1]. A value of exactly
// 1 wraps to entry 0.
func (p *Palette) Lookup(value float64) uint32 {
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	return p[int(value*PaletteSize)%PaletteSize]
}

// h in degrees, any sign; s and v in [0, 1]
func hsvToRGB(h, s, v float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	sector := int(h / 60)
	f := h/60 - float64(sector)
	l := v * (1 - s)
	m := v * (1 - f*s)
	n := v * (1 - (1-f)*s)

	var rf, gf, bf float64
	switch sector % 6 {
	case 0:
		rf, gf, bf = v, n, l
	case 1:
		rf, gf, bf = m, v, l
	case 2:
		rf, gf, bf = l, v, n
	case 3:
		rf, gf, bf = l, m, v
	case 4:
		rf, gf, bf = n, l, v
	case 5:
		rf, gf, bf = v, l, m
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}
