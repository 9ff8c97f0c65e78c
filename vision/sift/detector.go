// Package sift contains a scale-invariant feature detector: keypoints are extrema of a
// difference-of-gaussians scale space, refined to sub-pixel accuracy, assigned dominant
// orientations and encoded as gradient histogram descriptors that can be matched across images.
package sift

import (
	"context"
	"sort"

	"github.com/edaniels/golog"

	"go.viam.com/sift/rimage"
	"go.viam.com/sift/utils"
)

// RejectionStats counts what happened to the candidates of one detection run.
type RejectionStats struct {
	Candidates          int
	SingularHessian     int
	Outside             int
	LowPeak             int
	NotPositiveDefinite int
	Edge                int
	Refined             int
	NoOrientation       int
	EmptyDescriptor     int
	Descriptors         int
}

func (s *RejectionStats) add(r rejection) {
	switch r {
	case accepted:
		s.Refined++
	case rejectSingularHessian:
		s.SingularHessian++
	case rejectOutside:
		s.Outside++
	case rejectLowPeak:
		s.LowPeak++
	case rejectNotPositiveDefinite:
		s.NotPositiveDefinite++
	case rejectEdge:
		s.Edge++
	case rejectNoOrientation:
		s.NoOrientation++
	case rejectEmptyDescriptor:
		s.EmptyDescriptor++
	}
}

// Result holds the output of a full detection run.
type Result struct {
	// KeyPoints are the refined keypoints by descending magnitude.
	KeyPoints []KeyPoint
	// Descriptors follow the order of KeyPoints; one keypoint may yield several.
	Descriptors []*SiftDescriptor
	Stats       RejectionStats
}

// Detector owns the scale spaces of one image and runs the detection stages on them.
type Detector struct {
	cfg      *Config
	gss      *GaussianScaleSpace
	dss      *DogScaleSpace
	extrema  *ExtremaDetector
	refiner  *KeypointRefiner
	orienter *OrientationEstimator
	builder  *DescriptorBuilder
	logger   golog.Logger
}

// NewDetector validates cfg (nil means DefaultConfig) and builds the gaussian and DoG scale
// spaces of img. It fails with ErrDegenerateImage when img is flat.
func NewDetector(ctx context.Context, img *rimage.FloatImage, cfg *Config, logger golog.Logger) (*Detector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate("sift"); err != nil {
		return nil, err
	}
	gss, err := NewGaussianScaleSpace(ctx, img, cfg, logger)
	if err != nil {
		return nil, err
	}
	dss, err := NewDogScaleSpace(gss)
	if err != nil {
		return nil, err
	}
	return &Detector{
		cfg:      cfg,
		gss:      gss,
		dss:      dss,
		extrema:  NewExtremaDetector(gss, dss, cfg),
		refiner:  NewKeypointRefiner(gss, dss, cfg),
		orienter: NewOrientationEstimator(gss, cfg),
		builder:  NewDescriptorBuilder(gss, cfg),
		logger:   logger,
	}, nil
}

// GaussianScaleSpace returns the gaussian scale space of the image.
func (d *Detector) GaussianScaleSpace() *GaussianScaleSpace {
	return d.gss
}

// DogScaleSpace returns the difference-of-gaussians scale space of the image.
func (d *Detector) DogScaleSpace() *DogScaleSpace {
	return d.dss
}

// KeyPoints returns the refined keypoints sorted by descending magnitude.
func (d *Detector) KeyPoints(ctx context.Context) ([]KeyPoint, error) {
	var stats RejectionStats
	return d.keyPoints(ctx, &stats)
}

// Descriptors runs the whole pipeline and returns the descriptors.
func (d *Detector) Descriptors(ctx context.Context) ([]*SiftDescriptor, error) {
	res, err := d.Run(ctx)
	if err != nil {
		return nil, err
	}
	return res.Descriptors, nil
}

// DescriptorsForKeyPoint returns one descriptor per dominant orientation of kp.
func (d *Detector) DescriptorsForKeyPoint(kp KeyPoint) []*SiftDescriptor {
	descs, _ := d.describe(kp)
	return descs
}

// Run detects, refines, orients and describes all keypoints of the image.
func (d *Detector) Run(ctx context.Context) (*Result, error) {
	var stats RejectionStats
	kps, err := d.keyPoints(ctx, &stats)
	if err != nil {
		return nil, err
	}

	perKeyPoint := make([][]*SiftDescriptor, len(kps))
	reasons := make([]rejection, len(kps))
	err = utils.GroupWorkParallel(ctx, len(kps), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				perKeyPoint[workNum], reasons[workNum] = d.describe(kps[workNum])
			}, nil
		})
	if err != nil {
		return nil, err
	}
	var descs []*SiftDescriptor
	for i, ds := range perKeyPoint {
		if reasons[i] != accepted {
			stats.add(reasons[i])
		}
		descs = append(descs, ds...)
	}
	stats.Descriptors = len(descs)
	d.logger.Debugw("sift detection done",
		"candidates", stats.Candidates,
		"refined", stats.Refined,
		"singular_hessian", stats.SingularHessian,
		"outside", stats.Outside,
		"low_peak", stats.LowPeak,
		"not_positive_definite", stats.NotPositiveDefinite,
		"edge", stats.Edge,
		"no_orientation", stats.NoOrientation,
		"empty_descriptor", stats.EmptyDescriptor,
		"descriptors", stats.Descriptors,
	)
	return &Result{KeyPoints: kps, Descriptors: descs, Stats: stats}, nil
}

func (d *Detector) keyPoints(ctx context.Context, stats *RejectionStats) ([]KeyPoint, error) {
	candidates, err := d.extrema.FindExtrema(ctx)
	if err != nil {
		return nil, err
	}
	stats.Candidates = len(candidates)

	refined := make([]KeyPoint, len(candidates))
	reasons := make([]rejection, len(candidates))
	err = utils.GroupWorkParallel(ctx, len(candidates), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				refined[workNum], reasons[workNum] = d.refiner.refine(candidates[workNum])
			}, nil
		})
	if err != nil {
		return nil, err
	}
	kps := make([]KeyPoint, 0, len(candidates))
	for i, r := range reasons {
		stats.add(r)
		if r == accepted {
			kps = append(kps, refined[i])
		}
	}
	sort.SliceStable(kps, func(i, j int) bool {
		return kps[i].Magnitude > kps[j].Magnitude
	})
	return kps, nil
}

func (d *Detector) describe(kp KeyPoint) ([]*SiftDescriptor, rejection) {
	orientations := d.orienter.DominantOrientations(kp)
	if len(orientations) == 0 {
		return nil, rejectNoOrientation
	}
	descs := make([]*SiftDescriptor, 0, len(orientations))
	for _, phi := range orientations {
		if desc, ok := d.builder.Build(kp, phi); ok {
			descs = append(descs, desc)
		}
	}
	if len(descs) == 0 {
		return nil, rejectEmptyDescriptor
	}
	return descs, accepted
}

// DetectDescriptors is a shortcut building a Detector for img and running it.
func DetectDescriptors(ctx context.Context, img *rimage.FloatImage, cfg *Config, logger golog.Logger) ([]*SiftDescriptor, error) {
	d, err := NewDetector(ctx, img, cfg, logger)
	if err != nil {
		return nil, err
	}
	return d.Descriptors(ctx)
}
