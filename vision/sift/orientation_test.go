package sift

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"go.viam.com/test"

	"go.viam.com/sift/utils"
)

func TestSmoothHistogram(t *testing.T) {
	hist := []float64{0, 0, 4, 0, 0, 0, 0, 8}
	test.That(t, SmoothHistogram(hist, 0), test.ShouldResemble, hist)

	once := SmoothHistogram(hist, 1)
	test.That(t, once, test.ShouldResemble, []float64{2, 1, 2, 1, 0, 0, 2, 4})
	// the input is left untouched
	test.That(t, hist[2], test.ShouldEqual, 4.)

	// smoothing keeps the total mass and never raises the maximum
	smoothed := hist
	for i := 0; i < 5; i++ {
		next := SmoothHistogram(smoothed, 1)
		test.That(t, floats.Sum(next), test.ShouldAlmostEqual, floats.Sum(hist))
		test.That(t, floats.Max(next), test.ShouldBeLessThanOrEqualTo, floats.Max(smoothed))
		smoothed = next
	}
	test.That(t, SmoothHistogram(nil, 3), test.ShouldBeEmpty)
}

func TestFindPeakOrientations(t *testing.T) {
	n := 36
	hist := make([]float64, n)
	hist[9] = 10
	peaks := FindPeakOrientations(hist, 0.8)
	test.That(t, peaks, test.ShouldHaveLength, 1)
	test.That(t, peaks[0], test.ShouldAlmostEqual, math.Pi/2)

	// the parabola through (-1, 4), (0, 10), (1, 8) peaks at +1/4
	hist[8], hist[10] = 4, 8
	peaks = FindPeakOrientations(hist, 0.8)
	test.That(t, peaks, test.ShouldHaveLength, 1)
	test.That(t, peaks[0], test.ShouldAlmostEqual, (9+0.25)*utils.TwoPi/float64(n))

	// a secondary peak above the threshold gives a second orientation
	hist[20] = 9
	peaks = FindPeakOrientations(hist, 0.8)
	test.That(t, peaks, test.ShouldHaveLength, 2)
	test.That(t, peaks[1], test.ShouldAlmostEqual, 20*utils.TwoPi/float64(n))
	hist[20] = 7
	test.That(t, FindPeakOrientations(hist, 0.8), test.ShouldHaveLength, 1)

	// peaks wrap around bin 0
	hist = make([]float64, n)
	hist[0], hist[n-1], hist[1] = 10, 6, 2
	peaks = FindPeakOrientations(hist, 0.8)
	test.That(t, peaks, test.ShouldHaveLength, 1)
	delta := (6. - 2.) / (2 * (6 - 20 + 2))
	test.That(t, peaks[0], test.ShouldAlmostEqual, utils.TwoPi+delta*utils.TwoPi/float64(n))

	// plateaus are not strict peaks
	hist = make([]float64, n)
	hist[4], hist[5] = 3, 3
	test.That(t, FindPeakOrientations(hist, 0.8), test.ShouldBeEmpty)

	test.That(t, FindPeakOrientations(make([]float64, n), 0.8), test.ShouldBeEmpty)
	test.That(t, FindPeakOrientations([]float64{1, 2}, 0.8), test.ShouldBeEmpty)
}

func TestDominantOrientationOfRamp(t *testing.T) {
	for _, theta := range []float64{1, 2.5, 4, 5.9} {
		cos, sin := math.Cos(theta), math.Sin(theta)
		img := sampledImage(41, 41, func(x, y float64) float64 {
			return 0.5 + 0.01*(x*cos+y*sin)
		})
		gss := constantGaussianScaleSpace(img)
		oe := NewOrientationEstimator(gss, DefaultConfig())
		kp := newCandidate(gss, 0, 0, 20, 20, 1)

		hist := oe.Histogram(kp)
		test.That(t, hist, test.ShouldHaveLength, 36)
		nonZero := 0
		for _, v := range hist {
			if v > 1e-9 {
				nonZero++
			}
		}
		test.That(t, nonZero, test.ShouldBeBetweenOrEqual, 1, 2)

		orientations := oe.DominantOrientations(kp)
		test.That(t, orientations, test.ShouldHaveLength, 1)
		test.That(t, math.Abs(utils.AngleDiff(orientations[0], theta)), test.ShouldBeLessThan, utils.DegToRad(2))
	}
}

func TestDominantOrientationOfFlatPatch(t *testing.T) {
	img := sampledImage(41, 41, func(x, y float64) float64 { return 0.3 })
	gss := constantGaussianScaleSpace(img)
	oe := NewOrientationEstimator(gss, DefaultConfig())
	test.That(t, oe.DominantOrientations(newCandidate(gss, 0, 0, 20, 20, 1)), test.ShouldBeEmpty)
}
