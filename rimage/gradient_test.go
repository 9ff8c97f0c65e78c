package rimage

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestGradient(t *testing.T) {
	// ramp increasing to the right: gradient points along +x
	ramp := NewFloatImage(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			ramp.Set(x, y, 0.1*float64(x))
		}
	}
	g := ramp.Gradient(2, 2)
	test.That(t, g.Magnitude(), test.ShouldAlmostEqual, 0.1)
	test.That(t, g.Direction(), test.ShouldAlmostEqual, 0.)

	// reminder: left-handed coordinate system. +x is right, +y is down.
	down := NewFloatImage(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			down.Set(x, y, 0.2*float64(y))
		}
	}
	g = down.Gradient(2, 2)
	test.That(t, g.Magnitude(), test.ShouldAlmostEqual, 0.2)
	test.That(t, g.Direction(), test.ShouldAlmostEqual, math.Pi/2)

	// at the border the clamped difference is one-sided
	g = down.Gradient(2, 0)
	test.That(t, g.Magnitude(), test.ShouldAlmostEqual, 0.1)

	v := NewVec2D(-1, 0)
	test.That(t, v.Direction(), test.ShouldAlmostEqual, math.Pi)
	test.That(t, v.Magnitude(), test.ShouldAlmostEqual, 1.)
}
