package render

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
)

// surface draws in view coordinates.
type surface interface {
	dot(v chart.Point, c portrait.Color)
	segment(a, b chart.Point, c portrait.Color)
}

// projector turns sphere points into view coordinates for a surface.
type projector struct {
	atlas chart.Atlas
	surf  surface
}

func (p projector) DrawPoint(s chart.Sphere, c portrait.Color) {
	v := p.atlas.SphereToView(s)
	if p.atlas.IsValidView(v) {
		p.surf.dot(v, c)
	}
}

func (p projector) DrawLine(a, b chart.Sphere, c portrait.Color) {
	first, second, ok := p.atlas.SphereToViewPair(a, b)
	p.draw(first, c)
	if !ok {
		p.draw(second, c)
	}
}

func (p projector) draw(seg chart.Segment, c portrait.Color) {
	if !p.atlas.IsValidView(seg.A) || !p.atlas.IsValidView(seg.B) {
		return
	}
	p.surf.segment(seg.A, seg.B, c)
}

// boundarySamples is the number of chords approximating the circle at
// infinity in the sphere view.
const boundarySamples = 128

// DrawBoundary draws the line at infinity: the unit circle of the sphere
// view, or the axis v = 0 of a view at infinity.
func (p projector) DrawBoundary(f Frame) {
	c := portrait.ColorLineAtInfinity
	switch p.atlas.View() {
	case chart.ViewSphere:
		prev := chart.Point{1, 0}
		for i := 1; i <= boundarySamples; i++ {
			a := 2 * math.Pi * float64(i) / boundarySamples
			v := chart.Point{math.Cos(a), math.Sin(a)}
			p.surf.segment(prev, v, c)
			prev = v
		}
	case chart.ViewR2:
	default:
		p.surf.segment(chart.Point{f.X0, 0}, chart.Point{f.X1, 0}, c)
	}
}
