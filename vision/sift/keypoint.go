package sift

import (
	"github.com/golang/geo/r2"
)

// KeyPoint is a scale-space extremum. Candidates sit on lattice cell (U, V) of DoG level
// (P, Q); refined keypoints carry the interpolated position (X, Y) in octave coordinates.
type KeyPoint struct {
	P, Q int
	U, V int
	X, Y float64
	// Real is the position in original image coordinates.
	Real r2.Point
	// Scale is the absolute scale of level (P, Q).
	Scale float64
	// Magnitude is the absolute DoG response, interpolated once the keypoint is refined.
	Magnitude float64
}

// newCandidate returns an unrefined keypoint at lattice cell (u, v) of level (p, q).
func newCandidate(gss *GaussianScaleSpace, p, q, u, v int, magnitude float64) KeyPoint {
	return KeyPoint{
		P:         p,
		Q:         q,
		U:         u,
		V:         v,
		X:         float64(u),
		Y:         float64(v),
		Real:      r2.Point{X: gss.RealCoordinate(p, float64(u)), Y: gss.RealCoordinate(p, float64(v))},
		Scale:     gss.AbsoluteScale(p, q),
		Magnitude: magnitude,
	}
}
