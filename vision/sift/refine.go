package sift

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/sift/utils"
)

// determinants below this are treated as singular
const hessianEpsilon = 1e-15

// rejection tells why a candidate or keypoint was dropped. accepted means it was not.
type rejection int

const (
	accepted rejection = iota
	rejectSingularHessian
	rejectOutside
	rejectLowPeak
	rejectNotPositiveDefinite
	rejectEdge
	rejectNoOrientation
	rejectEmptyDescriptor
)

// KeypointRefiner interpolates candidates to sub-pixel accuracy and filters out
// low-contrast and edge-like responses.
type KeypointRefiner struct {
	gss     *GaussianScaleSpace
	dss     *DogScaleSpace
	nRefine int
	tPeak   float64
	// aMax is (rho+1)^2/rho, the largest accepted trace^2/det of the spatial hessian
	aMax float64
}

// NewKeypointRefiner returns a refiner working on the given scale spaces.
func NewKeypointRefiner(gss *GaussianScaleSpace, dss *DogScaleSpace, cfg *Config) *KeypointRefiner {
	return &KeypointRefiner{
		gss:     gss,
		dss:     dss,
		nRefine: cfg.NRefine,
		tPeak:   cfg.TPeak,
		aMax:    (cfg.RhoMax + 1) * (cfg.RhoMax + 1) / cfg.RhoMax,
	}
}

// Refine returns the refined keypoint for candidate and true, or false when the candidate
// is rejected. candidate itself is never modified.
func (kr *KeypointRefiner) Refine(candidate KeyPoint) (KeyPoint, bool) {
	kp, r := kr.refine(candidate)
	return kp, r == accepted
}

func (kr *KeypointRefiner) refine(candidate KeyPoint) (KeyPoint, rejection) {
	p, q := candidate.P, candidate.Q
	level := kr.dss.Level(p, q)
	w, h := level.Width(), level.Height()
	u, v := candidate.U, candidate.V
	for k := 0; k < kr.nRefine; k++ {
		if u < 1 || v < 1 || u > w-2 || v > h-2 {
			return KeyPoint{}, rejectOutside
		}
		nh := kr.dss.Neighborhood(p, q, u, v)
		grad := nh.Gradient()
		hess := nh.Hessian()
		delta, ok := solveOffset(hess, grad)
		if !ok {
			return KeyPoint{}, rejectSingularHessian
		}
		dx, dy := delta[0], delta[1]
		if math.Abs(dx) >= 0.5 || math.Abs(dy) >= 0.5 {
			// the extremum lies closer to a neighboring cell; never move along the scale axis
			u += cellStep(dx)
			v += cellStep(dy)
			continue
		}

		dPeak := nh.Center() + 0.5*(grad[0]*delta[0]+grad[1]*delta[1]+grad[2]*delta[2])
		if math.Abs(dPeak) <= kr.tPeak {
			return KeyPoint{}, rejectLowPeak
		}
		dxx, dyy, dxy := hess[0][0], hess[1][1], hess[0][1]
		detXY := dxx*dyy - dxy*dxy
		if detXY <= 0 {
			return KeyPoint{}, rejectNotPositiveDefinite
		}
		trace := dxx + dyy
		if trace*trace/detXY > kr.aMax {
			return KeyPoint{}, rejectEdge
		}
		x, y := float64(u)+dx, float64(v)+dy
		return KeyPoint{
			P:         p,
			Q:         q,
			U:         u,
			V:         v,
			X:         x,
			Y:         y,
			Real:      r2.Point{X: kr.gss.RealCoordinate(p, x), Y: kr.gss.RealCoordinate(p, y)},
			Scale:     kr.gss.AbsoluteScale(p, q),
			Magnitude: math.Abs(dPeak),
		}, accepted
	}
	return KeyPoint{}, rejectOutside
}

// cellStep rounds an offset into a move of -1, 0 or 1 cells. Clamping happens before the
// conversion so huge offsets stay well defined.
func cellStep(d float64) int {
	return int(utils.ClampF64(math.Round(d), -1, 1))
}

// solveOffset solves hess * delta = -grad. It returns false when hess is singular.
func solveOffset(hess [3][3]float64, grad [3]float64) ([3]float64, bool) {
	h := mat.NewDense(3, 3, []float64{
		hess[0][0], hess[0][1], hess[0][2],
		hess[1][0], hess[1][1], hess[1][2],
		hess[2][0], hess[2][1], hess[2][2],
	})
	if math.Abs(mat.Det(h)) < hessianEpsilon {
		return [3]float64{}, false
	}
	b := mat.NewVecDense(3, []float64{-grad[0], -grad[1], -grad[2]})
	var delta mat.VecDense
	if err := delta.SolveVec(h, b); err != nil {
		return [3]float64{}, false
	}
	return [3]float64{delta.AtVec(0), delta.AtVec(1), delta.AtVec(2)}, true
}
