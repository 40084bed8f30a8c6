package fractal

import (
	"math"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// escape radius 2, compared squared
const escapeModulus = 4

// Escape iterates z = z^2 + c starting from z0 until |z|^2 > 4 or maxIter
// iterations were applied. It returns the number of iterations applied and
// the final squared modulus. A point that never escaped returns maxIter and
// a modulus <= 4.
//
// Escape touches no shared state.
func Escape(c, z0 types.Complex, maxIter int) (iter int, modulus float64) {
	zre, zim := z0.Re, z0.Im
	for iter < maxIter {
		// z = z ^ 2 + c
		zre, zim = zre*zre-zim*zim+c.Re, 2*zre*zim+c.Im
		iter++
		modulus = zre*zre + zim*zim
		if modulus > escapeModulus {
			return iter, modulus
		}
	}
	return iter, modulus
}

// EscapePoint picks c and z0 for a sampled point according to mode: Julia
// keeps c = init and starts from the point, Mandelbrot starts from z0 = init
// and uses the point as c.
func EscapePoint(mode types.Mode, point, init types.Complex, maxIter int) (int, float64) {
	if mode == types.Julia {
		return Escape(init, point, maxIter)
	}
	return Escape(point, init, maxIter)
}

// Smooth turns an escape result into a continuous value in [0, 1].
// Interior points (modulus never exceeded 4) report ok == false.
func Smooth(iter int, modulus float64, maxIter int) (value float64, ok bool) {
	if modulus <= escapeModulus {
		return 0, false
	}
	value = (float64(iter) - math.Log(0.5*math.Log(modulus))/math.Ln2) / float64(maxIter)
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}
	return value, true
}
