package rimage

import (
	"math"
)

// Vec2D represents the gradient of an image at a point.
// The gradient has both a magnitude and direction.
// Magnitude has values [0, infinity) and direction is (-pi, pi].
type Vec2D struct {
	magnitude float64
	direction float64
}

// NewVec2D builds a gradient vector from its cartesian components.
func NewVec2D(dx, dy float64) Vec2D {
	return Vec2D{math.Hypot(dx, dy), math.Atan2(dy, dx)}
}

// Magnitude returns the gradient norm.
func (g Vec2D) Magnitude() float64 {
	return g.magnitude
}

// Direction returns the gradient angle.
func (g Vec2D) Direction() float64 {
	return g.direction
}

// Gradient returns the central-difference gradient at (x, y); neighbors beyond the border
// are clamped. With +y pointing down, a direction of pi/2 points down the image.
func (fi *FloatImage) Gradient(x, y int) Vec2D {
	dx := 0.5 * (fi.AtClamped(x+1, y) - fi.AtClamped(x-1, y))
	dy := 0.5 * (fi.AtClamped(x, y+1) - fi.AtClamped(x, y-1))
	return NewVec2D(dx, dy)
}
