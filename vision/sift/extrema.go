package sift

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"go.viam.com/sift/utils"
)

// ExtremaDetector finds lattice cells that are local minima or maxima of the DoG space.
type ExtremaDetector struct {
	gss          *GaussianScaleSpace
	dss          *DogScaleSpace
	neighborhood NeighborhoodType
	tMag         float64
	tExtrm       float64
}

// NewExtremaDetector returns a detector reading from the given scale spaces.
func NewExtremaDetector(gss *GaussianScaleSpace, dss *DogScaleSpace, cfg *Config) *ExtremaDetector {
	return &ExtremaDetector{
		gss:          gss,
		dss:          dss,
		neighborhood: cfg.Neighborhood,
		tMag:         cfg.TMag,
		tExtrm:       cfg.TExtrm,
	}
}

// FindExtrema scans every level q in [0, Q-1] of every octave. Levels are searched
// concurrently and the results are concatenated in (p, q) order.
func (ed *ExtremaDetector) FindExtrema(ctx context.Context) ([]KeyPoint, error) {
	numLevels := ed.gss.NumLevels()
	perLevel := make([][]KeyPoint, ed.dss.NumOctaves()*numLevels)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(utils.ParallelFactor)
	for p := 0; p < ed.dss.NumOctaves(); p++ {
		for q := 0; q < numLevels; q++ {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				perLevel[p*numLevels+q] = ed.FindLevelExtrema(p, q)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []KeyPoint
	for _, kps := range perLevel {
		out = append(out, kps...)
	}
	return out, nil
}

// FindLevelExtrema returns the extrema of DoG level (p, q), skipping the one-pixel border.
func (ed *ExtremaDetector) FindLevelExtrema(p, q int) []KeyPoint {
	level := ed.dss.Level(p, q)
	w, h := level.Width(), level.Height()
	var out []KeyPoint
	for v := 1; v < h-1; v++ {
		for u := 1; u < w-1; u++ {
			mag := math.Abs(level.Value(u, v))
			if mag <= ed.tMag {
				continue
			}
			nh := ed.dss.Neighborhood(p, q, u, v)
			if nh.IsLocalMax(ed.neighborhood, ed.tExtrm) || nh.IsLocalMin(ed.neighborhood, ed.tExtrm) {
				out = append(out, newCandidate(ed.gss, p, q, u, v, mag))
			}
		}
	}
	return out
}
