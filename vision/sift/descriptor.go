package sift

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/sift/utils"
)

// SiftDescriptor is an oriented keypoint together with its integer feature vector.
type SiftDescriptor struct {
	// Position is the keypoint location in original image coordinates.
	Position r2.Point
	// Octave is the octave the keypoint was found in.
	Octave      int
	Scale       float64
	Magnitude   float64
	Orientation float64
	Features    []int
}

// DescriptorBuilder encodes oriented keypoints into gradient histogram descriptors.
type DescriptorBuilder struct {
	gss     *GaussianScaleSpace
	nSpat   int
	nAngl   int
	tFclip  float64
	sFscale float64
	sDesc   float64
}

// NewDescriptorBuilder returns a builder sampling gradients from gss.
func NewDescriptorBuilder(gss *GaussianScaleSpace, cfg *Config) *DescriptorBuilder {
	return &DescriptorBuilder{
		gss:     gss,
		nSpat:   cfg.NSpat,
		nAngl:   cfg.NAngl,
		tFclip:  cfg.TFclip,
		sFscale: cfg.SFscale,
		sDesc:   cfg.SDesc,
	}
}

// Build returns the descriptor of kp at dominant orientation phi, or false when no gradient
// energy falls into the descriptor window.
func (db *DescriptorBuilder) Build(kp KeyPoint, phi float64) (*SiftDescriptor, bool) {
	hist := db.histogram(kp, phi)
	features, ok := db.makeFeatureVector(hist)
	if !ok {
		return nil, false
	}
	return &SiftDescriptor{
		Position:    kp.Real,
		Octave:      kp.P,
		Scale:       kp.Scale,
		Magnitude:   kp.Magnitude,
		Orientation: phi,
		Features:    features,
	}, true
}

// histogram samples the gradients in a disk around kp and returns the flattened
// nSpat x nSpat x nAngl histogram, angular index varying fastest.
func (db *DescriptorBuilder) histogram(kp KeyPoint, phi float64) []float64 {
	level := db.gss.Level(kp.P, kp.Q)
	w, h := level.Width(), level.Height()
	hist := make([]float64, db.nSpat*db.nSpat*db.nAngl)

	wd := db.sDesc * db.gss.OctaveScale(kp.Q)
	sigmaD := 0.25 * wd
	rD := 2.5 * sigmaD
	rD2 := rD * rD
	sinPhi, cosPhi := math.Sincos(-phi)

	uMin := utils.MaxInt(int(math.Floor(kp.X-rD)), 1)
	uMax := utils.MinInt(int(math.Ceil(kp.X+rD)), w-2)
	vMin := utils.MaxInt(int(math.Floor(kp.Y-rD)), 1)
	vMax := utils.MinInt(int(math.Ceil(kp.Y+rD)), h-2)
	for v := vMin; v <= vMax; v++ {
		for u := uMin; u <= uMax; u++ {
			dx, dy := float64(u)-kp.X, float64(v)-kp.Y
			dist2 := dx*dx + dy*dy
			if dist2 >= rD2 {
				continue
			}
			// rotate by -phi and scale into the canonical descriptor frame
			uc := (cosPhi*dx - sinPhi*dy) / wd
			vc := (sinPhi*dx + cosPhi*dy) / wd
			g := level.Gradient(u, v)
			z := g.Magnitude() * math.Exp(-dist2/(2*sigmaD*sigmaD))
			db.addSample(hist, uc, vc, utils.ModAngle(g.Direction()-phi), z)
		}
	}
	return hist
}

// addSample distributes z over the 2x2x2 nearest histogram cells (trilinear interpolation).
// Spatial bins are clipped at the borders, angular bins wrap around.
func (db *DescriptorBuilder) addSample(hist []float64, uc, vc, angle, z float64) {
	n := float64(db.nSpat)
	ri := n*uc + 0.5*(n-1)
	rj := n*vc + 0.5*(n-1)
	rk := angle * float64(db.nAngl) / utils.TwoPi

	i0 := int(math.Floor(ri))
	j0 := int(math.Floor(rj))
	k0f := math.Floor(rk)
	a1 := ri - float64(i0)
	b1 := rj - float64(j0)
	c1 := rk - k0f
	k0 := ((int(k0f) % db.nAngl) + db.nAngl) % db.nAngl

	for di := 0; di < 2; di++ {
		i := i0 + di
		if i < 0 || i >= db.nSpat {
			continue
		}
		wi := 1 - a1
		if di == 1 {
			wi = a1
		}
		for dj := 0; dj < 2; dj++ {
			j := j0 + dj
			if j < 0 || j >= db.nSpat {
				continue
			}
			wj := 1 - b1
			if dj == 1 {
				wj = b1
			}
			for dk := 0; dk < 2; dk++ {
				k := (k0 + dk) % db.nAngl
				wk := 1 - c1
				if dk == 1 {
					wk = c1
				}
				hist[(i*db.nSpat+j)*db.nAngl+k] += z * wi * wj * wk
			}
		}
	}
}

// makeFeatureVector normalizes, clips, renormalizes and quantizes the histogram.
func (db *DescriptorBuilder) makeFeatureVector(hist []float64) ([]int, bool) {
	f := make([]float64, len(hist))
	copy(f, hist)
	if !normalizeL2(f) {
		return nil, false
	}
	for i, v := range f {
		f[i] = math.Min(v, db.tFclip)
	}
	if !normalizeL2(f) {
		return nil, false
	}
	maxVal := int(math.Round(db.sFscale))
	features := make([]int, len(f))
	for i, v := range f {
		features[i] = utils.ClampInt(int(math.Round(db.sFscale*v)), 0, maxVal)
	}
	return features, true
}

// normalizeL2 scales f to unit euclidean norm in place. It returns false for a zero vector.
func normalizeL2(f []float64) bool {
	norm := floats.Norm(f, 2)
	if !(norm > 0) {
		return false
	}
	floats.Scale(1/norm, f)
	return true
}
