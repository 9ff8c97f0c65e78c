package rimage

import (
	"image"

	"go.viam.com/sift/utils"
)

// ConvolveRows convolves every row of fi with the odd-length kernel. Samples beyond the
// border are replaced by the nearest border sample.
func ConvolveRows(fi *FloatImage, kernel []float64) *FloatImage {
	offsets := makeRangeArray(len(kernel))
	out := NewFloatImage(fi.width, fi.height)
	utils.ParallelForEachPixel(image.Point{fi.width, fi.height}, func(x, y int) {
		sum := 0.
		for i, dx := range offsets {
			sum += kernel[i] * fi.AtClamped(x+dx, y)
		}
		out.Set(x, y, sum)
	})
	return out
}

// ConvolveCols convolves every column of fi with the odd-length kernel, clamping at the border.
func ConvolveCols(fi *FloatImage, kernel []float64) *FloatImage {
	offsets := makeRangeArray(len(kernel))
	out := NewFloatImage(fi.width, fi.height)
	utils.ParallelForEachPixel(image.Point{fi.width, fi.height}, func(x, y int) {
		sum := 0.
		for i, dy := range offsets {
			sum += kernel[i] * fi.AtClamped(x, y+dy)
		}
		out.Set(x, y, sum)
	})
	return out
}

// GaussianBlur applies a separable gaussian blur with the given sigma. A non-positive sigma
// returns a copy of the input.
func GaussianBlur(fi *FloatImage, sigma float64) *FloatImage {
	if sigma <= 0 {
		return fi.Clone()
	}
	kernel := GaussianKernel1D(sigma)
	return ConvolveCols(ConvolveRows(fi, kernel), kernel)
}
