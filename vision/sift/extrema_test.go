package sift

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
)

func TestFindLevelExtrema(t *testing.T) {
	gss := bareGaussianScaleSpace()
	cfg := DefaultConfig()

	dss := quadraticDoG(9, 9, bowl(-0.05, 0.01, 0.01, 4, 5))
	candidates := NewExtremaDetector(gss, dss, cfg).FindLevelExtrema(0, 0)
	test.That(t, candidates, test.ShouldHaveLength, 1)
	test.That(t, candidates[0].U, test.ShouldEqual, 4)
	test.That(t, candidates[0].V, test.ShouldEqual, 5)
	test.That(t, candidates[0].Magnitude, test.ShouldAlmostEqual, 0.05)

	// a positive peak is found too
	dss = quadraticDoG(9, 9, func(x, y, s float64) float64 {
		return -bowl(-0.05, 0.01, 0.01, 3, 3)(x, y, s)
	})
	candidates = NewExtremaDetector(gss, dss, cfg).FindLevelExtrema(0, 0)
	test.That(t, candidates, test.ShouldHaveLength, 1)
	test.That(t, candidates[0].U, test.ShouldEqual, 3)

	// below the magnitude threshold
	dss = quadraticDoG(9, 9, bowl(-0.005, 0.0001, 0.0001, 4, 4))
	candidates = NewExtremaDetector(gss, dss, cfg).FindLevelExtrema(0, 0)
	test.That(t, candidates, test.ShouldBeEmpty)

	// extrema on the border are skipped
	dss = quadraticDoG(9, 9, bowl(-0.05, 0.01, 0.01, 0, 4))
	candidates = NewExtremaDetector(gss, dss, cfg).FindLevelExtrema(0, 0)
	test.That(t, candidates, test.ShouldBeEmpty)
}

func TestFindExtremaOrdered(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := DefaultConfig()
	ctx := context.Background()
	gss, err := NewGaussianScaleSpace(ctx, noiseImage(96, 3, 2), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	dss, err := NewDogScaleSpace(gss)
	test.That(t, err, test.ShouldBeNil)

	candidates, err := NewExtremaDetector(gss, dss, cfg).FindExtrema(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, candidates, test.ShouldNotBeEmpty)
	for i, c := range candidates {
		test.That(t, c.Q, test.ShouldBeBetweenOrEqual, 0, cfg.Levels-1)
		test.That(t, c.Magnitude, test.ShouldBeGreaterThan, cfg.TMag)
		if i > 0 {
			prev := candidates[i-1]
			test.That(t, prev.P*cfg.Levels+prev.Q, test.ShouldBeLessThanOrEqualTo, c.P*cfg.Levels+c.Q)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewExtremaDetector(gss, dss, cfg).FindExtrema(cancelled)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}
