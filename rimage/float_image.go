// Package rimage holds the single-channel real-valued images the feature pipeline works on,
// together with the filters used to build scale spaces from them.
package rimage

import (
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"

	"go.viam.com/sift/utils"
)

// ErrDegenerateImage is returned when every sample of an image has the same value.
var ErrDegenerateImage = errors.New("degenerate image: all samples are equal")

// FloatImage is a single-channel grid of float64 samples stored in row-major order.
type FloatImage struct {
	width  int
	height int
	data   []float64
}

// NewFloatImage returns a zeroed image of the given size.
func NewFloatImage(width, height int) *FloatImage {
	return &FloatImage{
		width:  width,
		height: height,
		data:   make([]float64, width*height),
	}
}

// NewFloatImageFromData wraps data (row-major, len == width*height) in a FloatImage.
func NewFloatImageFromData(width, height int, data []float64) (*FloatImage, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid image size %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Errorf("expected %d samples for a %dx%d image but got %d", width*height, width, height, len(data))
	}
	return &FloatImage{width, height, data}, nil
}

func (fi *FloatImage) kxy(x, y int) int {
	return (y * fi.width) + x
}

// Width returns the number of columns.
func (fi *FloatImage) Width() int {
	return fi.width
}

// Height returns the number of rows.
func (fi *FloatImage) Height() int {
	return fi.height
}

// Bounds returns the image rectangle anchored at the origin.
func (fi *FloatImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, fi.width, fi.height)
}

// In reports whether (x, y) lies inside the image.
func (fi *FloatImage) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < fi.width && y < fi.height
}

// At returns the sample at (x, y). The point must be inside the image.
func (fi *FloatImage) At(x, y int) float64 {
	return fi.data[fi.kxy(x, y)]
}

// AtClamped returns the sample at (x, y) with coordinates clamped to the border.
func (fi *FloatImage) AtClamped(x, y int) float64 {
	if !fi.In(x, y) {
		x = clampIndex(x, fi.width)
		y = clampIndex(y, fi.height)
	}
	return fi.data[fi.kxy(x, y)]
}

// Set sets the sample at (x, y).
func (fi *FloatImage) Set(x, y int, v float64) {
	fi.data[fi.kxy(x, y)] = v
}

// Clone returns a deep copy.
func (fi *FloatImage) Clone() *FloatImage {
	data := make([]float64, len(fi.data))
	copy(data, fi.data)
	return &FloatImage{fi.width, fi.height, data}
}

// MinMax returns the smallest and largest sample.
func (fi *FloatImage) MinMax() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range fi.data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// IsFlat reports whether all samples share the same value.
func (fi *FloatImage) IsFlat() bool {
	lo, hi := fi.MinMax()
	return !(hi > lo)
}

// Normalize linearly maps the samples into [0, 1] in place.
func (fi *FloatImage) Normalize() error {
	lo, hi := fi.MinMax()
	if !(hi > lo) {
		return ErrDegenerateImage
	}
	scale := 1. / (hi - lo)
	for i, v := range fi.data {
		fi.data[i] = (v - lo) * scale
	}
	return nil
}

// Subtract returns the pointwise difference fi - other. Both images must share the same size.
func (fi *FloatImage) Subtract(other *FloatImage) (*FloatImage, error) {
	if fi.width != other.width || fi.height != other.height {
		return nil, errors.Errorf("cannot subtract images of different sizes (%d,%d), (%d,%d)",
			fi.width, fi.height, other.width, other.height)
	}
	out := NewFloatImage(fi.width, fi.height)
	for i := range fi.data {
		out.data[i] = fi.data[i] - other.data[i]
	}
	return out, nil
}

// Decimate returns the image subsampled by a factor of 2 in both directions, keeping
// the samples with even coordinates.
func (fi *FloatImage) Decimate() *FloatImage {
	w := (fi.width + 1) / 2
	h := (fi.height + 1) / 2
	out := NewFloatImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, fi.At(2*x, 2*y))
		}
	}
	return out
}

// ToGray renders the image as 8-bit gray, mapping [0,1] to [0,255] and clamping the rest.
func (fi *FloatImage) ToGray() *image.Gray {
	img := image.NewGray(fi.Bounds())
	for y := 0; y < fi.height; y++ {
		for x := 0; x < fi.width; x++ {
			v := utils.ClampF64(math.Round(fi.At(x, y)*255), 0, 255)
			img.SetGray(x, y, color.Gray{uint8(v)})
		}
	}
	return img
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
