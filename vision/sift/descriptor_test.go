package sift

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func rampDescriptor(t *testing.T, theta float64) *SiftDescriptor {
	t.Helper()
	cos, sin := math.Cos(theta), math.Sin(theta)
	img := sampledImage(41, 41, func(x, y float64) float64 {
		return 0.5 + 0.01*(x*cos+y*sin)
	})
	gss := constantGaussianScaleSpace(img)
	db := NewDescriptorBuilder(gss, DefaultConfig())
	desc, ok := db.Build(newCandidate(gss, 0, 0, 20, 20, 0.5), theta)
	test.That(t, ok, test.ShouldBeTrue)
	return desc
}

func TestDescriptorOfRamp(t *testing.T) {
	cfg := DefaultConfig()
	desc := rampDescriptor(t, 1)
	test.That(t, desc.Features, test.ShouldHaveLength, cfg.DescriptorLength())
	test.That(t, desc.Orientation, test.ShouldEqual, 1.)
	test.That(t, desc.Position.X, test.ShouldEqual, 20.)
	test.That(t, desc.Magnitude, test.ShouldEqual, 0.5)
	test.That(t, desc.Scale, test.ShouldAlmostEqual, 1.6)

	// every gradient points along the orientation, so only angular bin 0 is filled
	for i, f := range desc.Features {
		test.That(t, f, test.ShouldBeBetweenOrEqual, 0, 512)
		if i%cfg.NAngl != 0 {
			test.That(t, f, test.ShouldEqual, 0)
		} else {
			test.That(t, f, test.ShouldBeGreaterThan, 0)
		}
	}
}

func TestDescriptorRotationInvariance(t *testing.T) {
	reference := rampDescriptor(t, 1)
	for _, theta := range []float64{2, 3.5, 5} {
		desc := rampDescriptor(t, theta)
		d, err := Distance(NormL2, reference.Features, desc.Features)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d, test.ShouldBeLessThan, 0.15*512)
	}
}

func TestDescriptorOfFlatPatch(t *testing.T) {
	img := sampledImage(41, 41, func(x, y float64) float64 { return 0.3 })
	gss := constantGaussianScaleSpace(img)
	db := NewDescriptorBuilder(gss, DefaultConfig())
	desc, ok := db.Build(newCandidate(gss, 0, 0, 20, 20, 0.5), 0)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, desc, test.ShouldBeNil)
}

func TestMakeFeatureVector(t *testing.T) {
	db := NewDescriptorBuilder(bareGaussianScaleSpace(), DefaultConfig())
	hist := make([]float64, 128)
	hist[0], hist[1] = 3, 4
	features, ok := db.makeFeatureVector(hist)
	test.That(t, ok, test.ShouldBeTrue)
	// both entries are clipped to 0.2 and renormalized to 1/sqrt(2)
	test.That(t, features[0], test.ShouldEqual, 362)
	test.That(t, features[1], test.ShouldEqual, 362)
	for _, f := range features[2:] {
		test.That(t, f, test.ShouldEqual, 0)
	}
	test.That(t, hist[1], test.ShouldEqual, 4.)

	hist = make([]float64, 128)
	hist[5] = 1
	features, ok = db.makeFeatureVector(hist)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, features[5], test.ShouldEqual, 512)

	_, ok = db.makeFeatureVector(make([]float64, 128))
	test.That(t, ok, test.ShouldBeFalse)
}

func TestAddSampleSplitsWeight(t *testing.T) {
	db := NewDescriptorBuilder(bareGaussianScaleSpace(), DefaultConfig())
	hist := make([]float64, 128)
	// the center of the window lies between the four central spatial bins
	db.addSample(hist, 0, 0, math.Pi/8, 1)
	total := 0.
	for _, v := range hist {
		total += v
	}
	test.That(t, total, test.ShouldAlmostEqual, 1)
	for _, i := range []int{1, 2} {
		for _, j := range []int{1, 2} {
			base := (i*4 + j) * 8
			test.That(t, hist[base], test.ShouldAlmostEqual, 0.125)
			test.That(t, hist[base+1], test.ShouldAlmostEqual, 0.125)
		}
	}

	// samples past the outer bin centers lose the weight of the missing bins
	hist = make([]float64, 128)
	db.addSample(hist, 0.6, 0, 0, 1)
	total = 0
	for _, v := range hist {
		total += v
	}
	test.That(t, total, test.ShouldBeLessThan, 1)
}
