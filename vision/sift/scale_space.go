package sift

import (
	"context"
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/sift/rimage"
	"go.viam.com/sift/utils"
)

// ErrDegenerateImage is returned when the input image has no contrast at all.
var ErrDegenerateImage = rimage.ErrDegenerateImage

// octaves whose side would drop below this size after decimation are not built.
const minOctaveSize = 4

// ScaleLevel is one smoothed sample grid together with its absolute scale.
type ScaleLevel struct {
	img   *rimage.FloatImage
	sigma float64
}

// NewScaleLevel wraps img as a level of absolute scale sigma.
func NewScaleLevel(img *rimage.FloatImage, sigma float64) *ScaleLevel {
	return &ScaleLevel{img: img, sigma: sigma}
}

// Width returns the number of columns of the level.
func (sl *ScaleLevel) Width() int {
	return sl.img.Width()
}

// Height returns the number of rows of the level.
func (sl *ScaleLevel) Height() int {
	return sl.img.Height()
}

// Sigma returns the absolute scale of the level.
func (sl *ScaleLevel) Sigma() float64 {
	return sl.sigma
}

// Image returns the sample grid.
func (sl *ScaleLevel) Image() *rimage.FloatImage {
	return sl.img
}

// Value returns the sample at lattice position (u, v).
func (sl *ScaleLevel) Value(u, v int) float64 {
	return sl.img.At(u, v)
}

// Gradient returns the local gradient magnitude and orientation at (u, v).
func (sl *ScaleLevel) Gradient(u, v int) rimage.Vec2D {
	return sl.img.Gradient(u, v)
}

// Octave is the sequence of scale levels sharing one sampling resolution. Levels are
// addressed by q in [qMin, qMax].
type Octave struct {
	index  int
	qMin   int
	levels []*ScaleLevel
}

// Index returns the octave number p.
func (o *Octave) Index() int {
	return o.index
}

// QMin returns the lowest level index.
func (o *Octave) QMin() int {
	return o.qMin
}

// QMax returns the highest level index.
func (o *Octave) QMax() int {
	return o.qMin + len(o.levels) - 1
}

// Level returns level q of the octave.
func (o *Octave) Level(q int) *ScaleLevel {
	return o.levels[q-o.qMin]
}

// Width returns the width shared by all levels of the octave.
func (o *Octave) Width() int {
	return o.levels[0].Width()
}

// Height returns the height shared by all levels of the octave.
func (o *Octave) Height() int {
	return o.levels[0].Height()
}

// GaussianScaleSpace is the multi-octave gaussian pyramid of one image. Each octave holds
// the levels q = -1 .. Q+1; it is read-only once built.
type GaussianScaleSpace struct {
	octaves []*Octave
	levels  int
	sigma0  float64
	sigmaS  float64
}

// NewGaussianScaleSpace builds up to cfg.Octaves octaves of cfg.Levels levels from img, whose
// samples are expected in [0, 1] and carry an inherent blur of cfg.SigmaS.
func NewGaussianScaleSpace(ctx context.Context, img *rimage.FloatImage, cfg *Config, logger golog.Logger) (*GaussianScaleSpace, error) {
	if img.IsFlat() {
		return nil, ErrDegenerateImage
	}
	gss := &GaussianScaleSpace{
		levels: cfg.Levels,
		sigma0: cfg.Sigma0,
		sigmaS: cfg.SigmaS,
	}
	// level -1 of every octave, in octave-local units
	sigmaBottom := gss.OctaveScale(-1)
	if sigmaBottom <= cfg.SigmaS {
		return nil, errors.Errorf("bottom level scale %.3f must exceed the sampling scale %.3f", sigmaBottom, cfg.SigmaS)
	}
	bottom := rimage.GaussianBlur(img, math.Sqrt(sigmaBottom*sigmaBottom-cfg.SigmaS*cfg.SigmaS))
	for p := 0; p < cfg.Octaves; p++ {
		if p > 0 {
			bottom = gss.octaves[p-1].Level(cfg.Levels - 1).Image().Decimate()
			if bottom.Width() < minOctaveSize || bottom.Height() < minOctaveSize {
				logger.Warnw("image too small for the requested octaves",
					"requested", cfg.Octaves, "built", p, "width", img.Width(), "height", img.Height())
				break
			}
		}
		octave, err := gss.buildOctave(ctx, p, bottom)
		if err != nil {
			return nil, err
		}
		gss.octaves = append(gss.octaves, octave)
	}
	return gss, nil
}

// buildOctave blurs every level q >= 0 directly from the bottom level so the levels can be
// computed concurrently.
func (gss *GaussianScaleSpace) buildOctave(ctx context.Context, p int, bottom *rimage.FloatImage) (*Octave, error) {
	octave := &Octave{
		index:  p,
		qMin:   -1,
		levels: make([]*ScaleLevel, gss.levels+3),
	}
	sigmaBottom := gss.OctaveScale(-1)
	octave.levels[0] = NewScaleLevel(bottom, gss.AbsoluteScale(p, -1))
	fs := make([]utils.SimpleFunc, 0, gss.levels+2)
	for q := 0; q <= gss.levels+1; q++ {
		fs = append(fs, func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sigmaQ := gss.OctaveScale(q)
			blurred := rimage.GaussianBlur(bottom, math.Sqrt(sigmaQ*sigmaQ-sigmaBottom*sigmaBottom))
			octave.levels[q+1] = NewScaleLevel(blurred, gss.AbsoluteScale(p, q))
			return nil
		})
	}
	if _, err := utils.RunInParallel(ctx, fs); err != nil {
		return nil, errors.Wrapf(err, "cannot build octave %d", p)
	}
	return octave, nil
}

// NumOctaves returns the number of octaves actually built.
func (gss *GaussianScaleSpace) NumOctaves() int {
	return len(gss.octaves)
}

// NumLevels returns Q, the number of nominal levels per octave.
func (gss *GaussianScaleSpace) NumLevels() int {
	return gss.levels
}

// Octave returns octave p.
func (gss *GaussianScaleSpace) Octave(p int) *Octave {
	return gss.octaves[p]
}

// Level returns the gaussian level (p, q).
func (gss *GaussianScaleSpace) Level(p, q int) *ScaleLevel {
	return gss.octaves[p].Level(q)
}

// OctaveScale returns the scale of level q relative to its octave's sampling grid.
func (gss *GaussianScaleSpace) OctaveScale(q int) float64 {
	return gss.sigma0 * math.Pow(2, float64(q)/float64(gss.levels))
}

// AbsoluteScale returns the scale of level (p, q) in original image units.
func (gss *GaussianScaleSpace) AbsoluteScale(p, q int) float64 {
	return gss.sigma0 * math.Pow(2, float64(p)+float64(q)/float64(gss.levels))
}

// RealCoordinate maps a coordinate of octave p onto the original image.
func (gss *GaussianScaleSpace) RealCoordinate(p int, c float64) float64 {
	return c * math.Pow(2, float64(p))
}

// DogScaleSpace holds, for every octave, the differences of adjacent gaussian levels,
// DoG(p, q) = G(p, q+1) - G(p, q) for q = -1 .. Q.
type DogScaleSpace struct {
	octaves []*Octave
	levels  int
}

// NewDogScaleSpace derives the difference-of-gaussians space from gss.
func NewDogScaleSpace(gss *GaussianScaleSpace) (*DogScaleSpace, error) {
	dss := &DogScaleSpace{levels: gss.levels}
	for _, g := range gss.octaves {
		octave := &Octave{index: g.index, qMin: g.qMin}
		for q := g.QMin(); q < g.QMax(); q++ {
			diff, err := g.Level(q + 1).Image().Subtract(g.Level(q).Image())
			if err != nil {
				return nil, err
			}
			octave.levels = append(octave.levels, NewScaleLevel(diff, g.Level(q).Sigma()))
		}
		dss.octaves = append(dss.octaves, octave)
	}
	return dss, nil
}

// NumOctaves returns the number of octaves.
func (dss *DogScaleSpace) NumOctaves() int {
	return len(dss.octaves)
}

// Octave returns DoG octave p.
func (dss *DogScaleSpace) Octave(p int) *Octave {
	return dss.octaves[p]
}

// Level returns DoG level (p, q).
func (dss *DogScaleSpace) Level(p, q int) *ScaleLevel {
	return dss.octaves[p].Level(q)
}

// Neighborhood returns the 27 DoG values around lattice cell (u, v) over levels q-1, q, q+1.
// The cell must be interior and q-1, q+1 must exist.
func (dss *DogScaleSpace) Neighborhood(p, q, u, v int) Neighborhood {
	var nh Neighborhood
	octave := dss.octaves[p]
	for k := 0; k < 3; k++ {
		img := octave.Level(q + k - 1).Image()
		for j := 0; j < 3; j++ {
			for i := 0; i < 3; i++ {
				nh[i][j][k] = img.At(u+i-1, v+j-1)
			}
		}
	}
	return nh
}
