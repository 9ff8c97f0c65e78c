package sift

import (
	"context"
	"math"
	"sort"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/sift/utils"
)

// second nearest distances at or below this are not trusted as ratio denominators
const matchEpsilon = 1e-6

// SiftMatch pairs a descriptor of the first set with its nearest neighbor in the second.
type SiftMatch struct {
	A        *SiftDescriptor
	B        *SiftDescriptor
	Distance float64
}

// Distance returns the distance between two feature vectors of equal length under norm.
func Distance(norm Norm, f1, f2 []int) (float64, error) {
	if len(f1) != len(f2) {
		return 0, errors.Errorf("feature vectors have different lengths %d and %d", len(f1), len(f2))
	}
	switch norm {
	case NormL1, NormL2, NormLInf:
		return distance(norm, f1, f2), nil
	default:
		return 0, errors.Errorf("unknown norm %q", norm)
	}
}

// distance assumes equal lengths and a known norm.
func distance(norm Norm, f1, f2 []int) float64 {
	switch norm {
	case NormL1:
		sum := 0
		for i := range f1 {
			sum += utils.AbsInt(f1[i] - f2[i])
		}
		return float64(sum)
	case NormLInf:
		maxDiff := 0
		for i := range f1 {
			maxDiff = utils.MaxInt(maxDiff, utils.AbsInt(f1[i]-f2[i]))
		}
		return float64(maxDiff)
	default:
		sum := 0
		for i := range f1 {
			d := f1[i] - f2[i]
			sum += d * d
		}
		return math.Sqrt(float64(sum))
	}
}

// MatchDescriptors finds, for every descriptor of descs1, its nearest and second nearest
// neighbors in descs2 by linear scan, and keeps the pair when the distance ratio passes
// Lowe's test. Matches are sorted by ascending distance.
func MatchDescriptors(
	ctx context.Context,
	descs1, descs2 []*SiftDescriptor,
	cfg *MatchingConfig,
	logger golog.Logger,
) ([]*SiftMatch, error) {
	if err := cfg.Validate("matching"); err != nil {
		return nil, err
	}
	if len(descs1) == 0 || len(descs2) < 2 {
		logger.Debugw("not enough descriptors to match", "n1", len(descs1), "n2", len(descs2))
		return nil, nil
	}
	length := len(descs2[0].Features)
	for _, d := range append(append([]*SiftDescriptor{}, descs1...), descs2...) {
		if len(d.Features) != length {
			return nil, errors.Errorf("feature vectors have different lengths %d and %d", len(d.Features), length)
		}
	}

	candidates := make([]*SiftMatch, len(descs1))
	err := utils.GroupWorkParallel(
		ctx,
		len(descs1),
		nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				candidates[workNum] = matchOne(descs1[workNum], descs2, cfg)
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}

	matches := make([]*SiftMatch, 0, len(descs1))
	for _, m := range candidates {
		if m != nil {
			matches = append(matches, m)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	logger.Debugw("matched descriptors", "n1", len(descs1), "n2", len(descs2), "matches", len(matches))
	return matches, nil
}

// matchOne returns the accepted match for d or nil. Feature lengths and the norm were checked
// by the caller.
func matchOne(d *SiftDescriptor, others []*SiftDescriptor, cfg *MatchingConfig) *SiftMatch {
	var best *SiftDescriptor
	d1, d2 := math.Inf(1), math.Inf(1)
	for _, o := range others {
		dist := distance(cfg.Norm, d.Features, o.Features)
		switch {
		case dist < d1:
			d2 = d1
			d1 = dist
			best = o
		case dist < d2:
			d2 = dist
		}
	}
	if best == nil || math.IsInf(d2, 0) || d2 <= matchEpsilon || d1/d2 >= cfg.RMax {
		return nil
	}
	return &SiftMatch{A: d, B: best, Distance: d1}
}
