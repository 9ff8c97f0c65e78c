package sift

import (
	"image"
	"math"

	"github.com/fogleman/gg"

	"go.viam.com/sift/utils"
)

// PlotDescriptors draws every descriptor on img as a circle of radius proportional to its
// scale with a ray along its orientation.
func PlotDescriptors(img image.Image, descs []*SiftDescriptor) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(1)
	for _, d := range descs {
		drawDescriptor(dc, d, 0, 0)
	}
	return dc.Image()
}

// PlotMatches draws img1 and img2 side by side with a line between every matched pair.
func PlotMatches(img1, img2 image.Image, matches []*SiftMatch) image.Image {
	b1, b2 := img1.Bounds(), img2.Bounds()
	w := b1.Dx() + b2.Dx()
	h := utils.MaxInt(b1.Dy(), b2.Dy())
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()
	dc.DrawImage(img1, 0, 0)
	dc.DrawImage(img2, b1.Dx(), 0)

	offset := float64(b1.Dx())
	dc.SetLineWidth(1)
	for _, m := range matches {
		drawDescriptor(dc, m.A, 0, 0)
		drawDescriptor(dc, m.B, offset, 0)
		dc.SetRGBA(0, 1, 0, 0.7)
		dc.DrawLine(m.A.Position.X, m.A.Position.Y, m.B.Position.X+offset, m.B.Position.Y)
		dc.Stroke()
	}
	return dc.Image()
}

// SavePlot writes img as a png file.
func SavePlot(img image.Image, outName string) error {
	return gg.SavePNG(outName, img)
}

func drawDescriptor(dc *gg.Context, d *SiftDescriptor, dx, dy float64) {
	x, y := d.Position.X+dx, d.Position.Y+dy
	r := math.Max(2, 2*d.Scale)
	dc.SetRGBA(0, 0, 1, 0.7)
	dc.DrawCircle(x, y, r)
	dc.Stroke()
	dc.SetRGBA(1, 0, 0, 0.9)
	dc.DrawLine(x, y, x+r*math.Cos(d.Orientation), y+r*math.Sin(d.Orientation))
	dc.Stroke()
}
