package sift

// NeighborhoodType selects which of the 26 cells around a scale-space sample take part in
// the extremum test. The value is the number of compared neighbors.
type NeighborhoodType int

const (
	// Neighborhood8 compares the 8 neighbors in the same scale level.
	Neighborhood8 NeighborhoodType = 8
	// Neighborhood10 adds the two cells at the same position in the levels below and above.
	Neighborhood10 NeighborhoodType = 10
	// Neighborhood18 adds the 4-connected neighbors in the levels below and above.
	Neighborhood18 NeighborhoodType = 18
	// Neighborhood26 compares the full 3x3x3 cube.
	Neighborhood26 NeighborhoodType = 26
)

// neighborhoodOffsets maps every NeighborhoodType to the [i][j][k] indices it compares.
var neighborhoodOffsets = buildNeighborhoodOffsets()

func buildNeighborhoodOffsets() map[NeighborhoodType][][3]int {
	var same, axial, faces, corners [][3]int
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == 1 && j == 1 {
				continue
			}
			same = append(same, [3]int{i, j, 1})
		}
	}
	for _, k := range []int{0, 2} {
		axial = append(axial, [3]int{1, 1, k})
		faces = append(faces, [3]int{0, 1, k}, [3]int{2, 1, k}, [3]int{1, 0, k}, [3]int{1, 2, k})
		corners = append(corners, [3]int{0, 0, k}, [3]int{0, 2, k}, [3]int{2, 0, k}, [3]int{2, 2, k})
	}
	concat := func(parts ...[][3]int) [][3]int {
		var out [][3]int
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	return map[NeighborhoodType][][3]int{
		Neighborhood8:  concat(same),
		Neighborhood10: concat(same, axial),
		Neighborhood18: concat(same, axial, faces),
		Neighborhood26: concat(same, axial, faces, corners),
	}
}

// IsValid reports whether t is one of the supported neighborhood types.
func (t NeighborhoodType) IsValid() bool {
	_, ok := neighborhoodOffsets[t]
	return ok
}

// Neighborhood is the 3x3x3 block of DoG values around a lattice cell, indexed
// [x offset + 1][y offset + 1][level offset + 1].
type Neighborhood [3][3][3]float64

// Center returns the value of the cell the block is centered on.
func (nh *Neighborhood) Center() float64 {
	return nh[1][1][1]
}

// IsLocalMax reports whether the center exceeds every neighbor selected by t by more than
// tExtrm and is positive.
func (nh *Neighborhood) IsLocalMax(t NeighborhoodType, tExtrm float64) bool {
	c := nh.Center()
	if c <= 0 {
		return false
	}
	for _, o := range neighborhoodOffsets[t] {
		if !(c-tExtrm > nh[o[0]][o[1]][o[2]]) {
			return false
		}
	}
	return true
}

// IsLocalMin reports whether the center is below every neighbor selected by t by more than
// tExtrm and is negative.
func (nh *Neighborhood) IsLocalMin(t NeighborhoodType, tExtrm float64) bool {
	c := nh.Center()
	if c >= 0 {
		return false
	}
	for _, o := range neighborhoodOffsets[t] {
		if !(c+tExtrm < nh[o[0]][o[1]][o[2]]) {
			return false
		}
	}
	return true
}

// Gradient returns (dx, dy, ds) estimated with central differences.
func (nh *Neighborhood) Gradient() [3]float64 {
	return [3]float64{
		0.5 * (nh[2][1][1] - nh[0][1][1]),
		0.5 * (nh[1][2][1] - nh[1][0][1]),
		0.5 * (nh[1][1][2] - nh[1][1][0]),
	}
}

// Hessian returns the symmetric 3x3 matrix of second derivatives in (x, y, s) order.
func (nh *Neighborhood) Hessian() [3][3]float64 {
	c2 := 2 * nh.Center()
	dxx := nh[0][1][1] - c2 + nh[2][1][1]
	dyy := nh[1][0][1] - c2 + nh[1][2][1]
	dss := nh[1][1][0] - c2 + nh[1][1][2]
	dxy := 0.25 * (nh[2][2][1] - nh[0][2][1] - nh[2][0][1] + nh[0][0][1])
	dxs := 0.25 * (nh[2][1][2] - nh[0][1][2] - nh[2][1][0] + nh[0][1][0])
	dys := 0.25 * (nh[1][2][2] - nh[1][0][2] - nh[1][2][0] + nh[1][0][0])
	return [3][3]float64{
		{dxx, dxy, dxs},
		{dxy, dyy, dys},
		{dxs, dys, dss},
	}
}
