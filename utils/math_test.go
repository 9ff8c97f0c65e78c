package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestModAngle(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{-1e-18, 0},
	}
	for _, tst := range tests {
		out := ModAngle(tst.in)
		test.That(t, out, test.ShouldAlmostEqual, tst.expected, 1e-12)
		test.That(t, out, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, out, test.ShouldBeLessThan, TwoPi)
	}
}

func TestAngleDiff(t *testing.T) {
	test.That(t, AngleDiff(0.1, TwoPi-0.1), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, AngleDiff(TwoPi-0.1, 0.1), test.ShouldAlmostEqual, 0.2, 1e-12)
	test.That(t, AngleDiff(DegToRad(37), 0), test.ShouldAlmostEqual, DegToRad(37), 1e-12)
	test.That(t, AngleDiff(0, math.Pi), test.ShouldAlmostEqual, math.Pi, 1e-12)
}

func TestClamp(t *testing.T) {
	test.That(t, ClampInt(5, -1, 1), test.ShouldEqual, 1)
	test.That(t, ClampInt(-5, -1, 1), test.ShouldEqual, -1)
	test.That(t, ClampInt(0, -1, 1), test.ShouldEqual, 0)
	test.That(t, ClampF64(2.5, 0, 1), test.ShouldEqual, 1.)
	test.That(t, AbsInt(-3), test.ShouldEqual, 3)
	test.That(t, RadToDeg(DegToRad(37)), test.ShouldAlmostEqual, 37., 1e-12)
}
