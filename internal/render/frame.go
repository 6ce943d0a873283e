package render

import (
	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
)

// sphereMargin pads the unit disk of the sphere view.
const sphereMargin = 1.05

// Frame maps view coordinates onto a surface of Width x Height units with
// the origin in the top left corner.
type Frame struct {
	X0, Y0, X1, Y1 float64
	Width, Height  float64
}

// NewFrame picks the view box for atlas: the padded unit disk for the
// sphere view, bounds (x0 y0 x1 y1) otherwise, or [-1, 1]² without bounds.
func NewFrame(atlas chart.Atlas, bounds []float64, width, height float64) Frame {
	f := Frame{X0: -1, Y0: -1, X1: 1, Y1: 1, Width: width, Height: height}
	switch {
	case atlas.View() == chart.ViewSphere:
		f.X0, f.Y0, f.X1, f.Y1 = -sphereMargin, -sphereMargin, sphereMargin, sphereMargin
	case len(bounds) == 4:
		f.X0, f.Y0, f.X1, f.Y1 = bounds[0], bounds[1], bounds[2], bounds[3]
	}
	return f
}

// BoundsOf returns the bounds stored with a portrait, if any.
func BoundsOf(res *portrait.Results) []float64 {
	if res == nil || res.Bounds == nil {
		return nil
	}
	b := *res.Bounds
	return b[:]
}

// Map converts a view point to surface coordinates.
func (f Frame) Map(v chart.Point) (float64, float64) {
	x := (v[0] - f.X0) / (f.X1 - f.X0) * f.Width
	y := (f.Y1 - v[1]) / (f.Y1 - f.Y0) * f.Height
	return x, y
}

// Clip cuts the surface segment (ax, ay)-(bx, by) to the surface with the
// Liang-Barsky algorithm. ok is false when nothing is visible.
func (f Frame) Clip(ax, ay, bx, by float64) (x0, y0, x1, y1 float64, ok bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := bx-ax, by-ay
	edges := [4][2]float64{
		{-dx, ax},
		{dx, f.Width - ax},
		{-dy, ay},
		{dy, f.Height - ay},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return ax + t0*dx, ay + t0*dy, ax + t1*dx, ay + t1*dy, true
}

// Inside reports whether a surface point lies on the surface.
func (f Frame) Inside(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= f.Width && y <= f.Height
}
