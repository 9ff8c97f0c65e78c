package sift

import (
	"math"
	"math/rand"

	"go.viam.com/sift/rimage"
)

// gaussianBlobImage returns a size x size image, zero except for one gaussian blob.
func gaussianBlobImage(size int, cx, cy, sigma, amplitude float64) *rimage.FloatImage {
	img := rimage.NewFloatImage(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r2 := (float64(x)-cx)*(float64(x)-cx) + (float64(y)-cy)*(float64(y)-cy)
			img.Set(x, y, amplitude*math.Exp(-r2/(2*sigma*sigma)))
		}
	}
	return img
}

// noiseImage returns blurred uniform noise normalized to [0, 1].
func noiseImage(size int, seed int64, blur float64) *rimage.FloatImage {
	rng := rand.New(rand.NewSource(seed))
	img := rimage.NewFloatImage(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, rng.Float64())
		}
	}
	img = rimage.GaussianBlur(img, blur)
	if err := img.Normalize(); err != nil {
		panic(err)
	}
	return img
}

// sampledImage evaluates f on a w x h lattice.
func sampledImage(w, h int, f func(x, y float64) float64) *rimage.FloatImage {
	img := rimage.NewFloatImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, f(float64(x), float64(y)))
		}
	}
	return img
}

// bareGaussianScaleSpace returns a scale space with the default scale parameters and no octaves.
func bareGaussianScaleSpace() *GaussianScaleSpace {
	return &GaussianScaleSpace{levels: 3, sigma0: 1.6, sigmaS: 0.5}
}

// quadraticDoG builds a one-octave DoG space whose levels q = -1, 0, 1 sample f(x, y, q).
func quadraticDoG(w, h int, f func(x, y, s float64) float64) *DogScaleSpace {
	octave := &Octave{index: 0, qMin: -1}
	for q := -1; q <= 1; q++ {
		s := float64(q)
		img := sampledImage(w, h, func(x, y float64) float64 { return f(x, y, s) })
		octave.levels = append(octave.levels, NewScaleLevel(img, 1))
	}
	return &DogScaleSpace{octaves: []*Octave{octave}, levels: 3}
}

// constantGaussianScaleSpace builds a one-octave gaussian space whose levels all equal img.
func constantGaussianScaleSpace(img *rimage.FloatImage) *GaussianScaleSpace {
	gss := bareGaussianScaleSpace()
	octave := &Octave{index: 0, qMin: -1}
	for q := -1; q <= gss.levels+1; q++ {
		octave.levels = append(octave.levels, NewScaleLevel(img, gss.AbsoluteScale(0, q)))
	}
	gss.octaves = []*Octave{octave}
	return gss
}
