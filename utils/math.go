package utils

import (
	"math"
)

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// ModAngle maps an angle in radians into [0, 2pi).
func ModAngle(ang float64) float64 {
	a := math.Mod(ang, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// math.Mod can hand back exactly 2pi after the correction above for tiny negative inputs
	if a >= TwoPi {
		a = 0
	}
	return a
}

// AngleDiff returns the smallest absolute difference between two angles in radians.
// The arguments are commutative.
func AngleDiff(a1, a2 float64) float64 {
	d := ModAngle(a1 - a2)
	if d > math.Pi {
		return TwoPi - d
	}
	return d
}

// AbsInt returns the absolute value of n.
func AbsInt(n int) int {
	if n < 0 {
		return -1 * n
	}
	return n
}

// MaxInt returns the larger of a and b.
func MaxInt(a, b int) int {
	if a < b {
		return b
	}
	return a
}

// MinInt returns the smaller of a and b.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampInt clamps n into [lo, hi].
func ClampInt(n, lo, hi int) int {
	return MinInt(MaxInt(n, lo), hi)
}

// ClampF64 clamps v into [lo, hi].
func ClampF64(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// Square is faster than math.Pow(n, 2).
func Square(n float64) float64 {
	return n * n
}
