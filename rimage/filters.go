package rimage

import (
	"math"
)

// Helper function for convolving with kernels. When used with i, dx := range makeRangeArray(n)
// i is the position within the kernel and dx gives the offset within the image.
// if length is even, then the origin is to the right of middle i.e. 4 -> {-2, -1, 0, 1}
func makeRangeArray(length int) []int {
	if length <= 0 {
		return make([]int, 0)
	}
	rangeArray := make([]int, length)
	var span int
	if length%2 == 0 {
		oddArr := makeRangeArray(length - 1)
		span = length / 2
		rangeArray = append([]int{-span}, oddArr...)
	} else {
		span = (length - 1) / 2
		for i := 0; i < span; i++ {
			rangeArray[length-1-i] = span - i
			rangeArray[i] = -span + i
		}
	}
	return rangeArray
}

// GaussianFunction1D takes in a sigma and returns a gaussian function useful for weighing averages or blurring.
func GaussianFunction1D(sigma float64) func(p float64) float64 {
	if sigma <= 0. {
		return func(p float64) float64 {
			return 1.
		}
	}
	return func(p float64) float64 {
		return math.Exp(-0.5*math.Pow(p, 2)/math.Pow(sigma, 2)) / (sigma * math.Sqrt(2.*math.Pi))
	}
}

// GaussianKernel1D returns a normalized, sampled 1D gaussian covering 3.5 sigma on each side.
// A non-positive sigma gives the identity kernel {1}.
func GaussianKernel1D(sigma float64) []float64 {
	if sigma <= 0. {
		return []float64{1}
	}
	gaus := GaussianFunction1D(sigma)
	radius := int(math.Max(1, math.Ceil(3.5*sigma)))
	xRange := makeRangeArray(2*radius + 1)
	kernel := make([]float64, len(xRange))
	sum := 0.
	for i, x := range xRange {
		kernel[i] = gaus(float64(x))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}
