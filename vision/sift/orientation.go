package sift

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/sift/utils"
)

// OrientationEstimator finds the dominant gradient orientations around refined keypoints.
type OrientationEstimator struct {
	gss     *GaussianScaleSpace
	nOrient int
	nSmooth int
	tDomOr  float64
}

// NewOrientationEstimator returns an estimator sampling gradients from gss.
func NewOrientationEstimator(gss *GaussianScaleSpace, cfg *Config) *OrientationEstimator {
	return &OrientationEstimator{
		gss:     gss,
		nOrient: cfg.NOrient,
		nSmooth: cfg.NSmooth,
		tDomOr:  cfg.TDomOr,
	}
}

// Histogram returns the raw orientation histogram of kp. Each gradient sample inside a disk
// of radius 2.5 sigma_w contributes its magnitude times a gaussian weight, split linearly
// between the two nearest bins. Bin k is centered on angle 2 pi k / n.
func (oe *OrientationEstimator) Histogram(kp KeyPoint) []float64 {
	level := oe.gss.Level(kp.P, kp.Q)
	w, h := level.Width(), level.Height()
	n := oe.nOrient
	hist := make([]float64, n)

	sigmaW := 1.5 * oe.gss.OctaveScale(kp.Q)
	rW := math.Max(1, 2.5*sigmaW)
	rW2 := rW * rW
	uMin := utils.MaxInt(int(math.Floor(kp.X-rW)), 1)
	uMax := utils.MinInt(int(math.Ceil(kp.X+rW)), w-2)
	vMin := utils.MaxInt(int(math.Floor(kp.Y-rW)), 1)
	vMax := utils.MinInt(int(math.Ceil(kp.Y+rW)), h-2)
	for v := vMin; v <= vMax; v++ {
		for u := uMin; u <= uMax; u++ {
			dist2 := utils.Square(float64(u)-kp.X) + utils.Square(float64(v)-kp.Y)
			if dist2 >= rW2 {
				continue
			}
			g := level.Gradient(u, v)
			z := g.Magnitude() * math.Exp(-dist2/(2*sigmaW*sigmaW))
			kPhi := float64(n) * g.Direction() / utils.TwoPi
			k0f := math.Floor(kPhi)
			alpha := kPhi - k0f
			k0 := ((int(k0f) % n) + n) % n
			k1 := (k0 + 1) % n
			hist[k0] += (1 - alpha) * z
			hist[k1] += alpha * z
		}
	}
	return hist
}

// SmoothHistogram applies passes rounds of the circular [1/4, 1/2, 1/4] filter and returns
// the result; hist is left untouched.
func SmoothHistogram(hist []float64, passes int) []float64 {
	n := len(hist)
	out := make([]float64, n)
	copy(out, hist)
	if n == 0 {
		return out
	}
	tmp := make([]float64, n)
	for i := 0; i < passes; i++ {
		for k := 0; k < n; k++ {
			tmp[k] = 0.25*out[(k-1+n)%n] + 0.5*out[k] + 0.25*out[(k+1)%n]
		}
		out, tmp = tmp, out
	}
	return out
}

// FindPeakOrientations returns the interpolated angles, in [0, 2pi), of every circular
// histogram peak above tDomOr times the histogram maximum.
func FindPeakOrientations(hist []float64, tDomOr float64) []float64 {
	n := len(hist)
	if n < 3 {
		return nil
	}
	hMax := floats.Max(hist)
	if !(hMax > 0) {
		return nil
	}
	var orientations []float64
	for k := 0; k < n; k++ {
		hc := hist[k]
		if hc <= tDomOr*hMax {
			continue
		}
		hp := hist[(k-1+n)%n]
		hn := hist[(k+1)%n]
		if !(hc > hp && hc > hn) {
			continue
		}
		// vertex of the parabola through the three bins; the denominator is negative here
		delta := (hp - hn) / (2 * (hp - 2*hc + hn))
		orientations = append(orientations, utils.ModAngle((float64(k)+delta)*utils.TwoPi/float64(n)))
	}
	return orientations
}

// DominantOrientations returns zero or more orientations for kp.
func (oe *OrientationEstimator) DominantOrientations(kp KeyPoint) []float64 {
	hist := SmoothHistogram(oe.Histogram(kp), oe.nSmooth)
	return FindPeakOrientations(hist, oe.tDomOr)
}
