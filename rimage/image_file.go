package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// FloatImageFromImage converts any image to gray and returns its luminance in [0, 1].
func FloatImageFromImage(img image.Image) *FloatImage {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	out := NewFloatImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			// after Grayscale the R, G and B channels carry the same luminance
			i := gray.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Set(x, y, float64(gray.Pix[i])/255.)
		}
	}
	return out
}

// ReadFloatImageFromFile decodes the image file at path into a FloatImage in [0, 1].
func ReadFloatImageFromFile(path string) (*FloatImage, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return FloatImageFromImage(img), nil
}

// WriteFloatImageToFile saves fi as an 8-bit gray image; the format follows the file extension.
func WriteFloatImageToFile(path string, fi *FloatImage) error {
	return imaging.Save(fi.ToGray(), path)
}
