package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector routines for geometry on the unit 3-torus.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

func Max(a r3.Vec) float64 {
	return math.Max(a.Z, math.Max(a.X, a.Y))
}

func AbsElem(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Abs(a.X),
		Y: math.Abs(a.Y),
		Z: math.Abs(a.Z),
	}
}

// Wrap maps each component of a into the unit period [0,1).
func Wrap(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: wrap(a.X),
		Y: wrap(a.Y),
		Z: wrap(a.Z),
	}
}

// MinImage returns the minimal image displacement b-a on the unit torus.
// Every component of the result lies in the half-open interval (-0.5, 0.5].
func MinImage(a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: fold(b.X - a.X),
		Y: fold(b.Y - a.Y),
		Z: fold(b.Z - a.Z),
	}
}

// InUnit returns true if all components of a lie in [0,1).
func InUnit(a r3.Vec) bool {
	return a.X >= 0 && a.X < 1 &&
		a.Y >= 0 && a.Y < 1 &&
		a.Z >= 0 && a.Z < 1
}

// fold maps d into (-0.5, 0.5] by subtracting the nearest integer, ties
// going towards the positive half.
func fold(d float64) float64 {
	return d - math.Ceil(d-0.5)
}

func wrap(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		// x was a tiny negative number and rounded up to 1.
		return 0
	}
	return x
}
