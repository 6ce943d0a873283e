// Package gcf evaluates the greatest common factor divided out of a vector
// field. Where it is negative the reduced field runs against the real one,
// so stability and separatrix colors are swapped there.
package gcf

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
)

type Sign int

const (
	Negative    Sign = -1
	NonNegative Sign = 1
)

// Sector returns the infinite chart covering angle theta of the cylinder.
// Sectors are split at odd multiples of π/4.
func Sector(theta float64) chart.Chart {
	theta = math.Remainder(theta, 2*math.Pi)
	switch {
	case theta >= -math.Pi/4 && theta < math.Pi/4:
		return chart.U1
	case theta >= math.Pi/4 && theta < 3*math.Pi/4:
		return chart.U2
	case theta >= -3*math.Pi/4 && theta < -math.Pi/4:
		return chart.V2
	}
	return chart.V1
}

// SignAt evaluates the GCF of chart c at pt. A chart without a GCF, or one
// with a constant GCF, never flips.
func SignAt(r *portrait.Results, c chart.Chart, pt chart.Point) Sign {
	if c == chart.Cylinder {
		sec := Sector(pt[1])
		a := chart.NewLyapunov(r.P, r.Q, chart.ViewSphere)
		pt = a.SphereToChart(sec, chart.Sphere{1, pt[0], pt[1]})
		c = sec
	}
	if c < 0 || int(c) >= len(r.GCF) {
		return NonNegative
	}
	g := r.GCF[c]
	if g.Degree() <= 0 {
		return NonNegative
	}
	if g.Eval(pt[0], pt[1]) < 0 {
		return Negative
	}
	return NonNegative
}

var sepColors = map[portrait.SepType]portrait.Color{
	portrait.Stable:         portrait.ColorStable,
	portrait.Unstable:       portrait.ColorUnstable,
	portrait.CenterStable:   portrait.ColorCenterStable,
	portrait.CenterUnstable: portrait.ColorCenterUnstable,
}

// FindSepColor maps a separatrix type to its color. A negative sign swaps
// stable and unstable.
func FindSepColor(t portrait.SepType, s Sign) portrait.Color {
	if s == Negative {
		t = t.Swap()
	}
	return sepColors[t]
}

// ColorAt is FindSepColor with the sign taken at pt.
func ColorAt(r *portrait.Results, c chart.Chart, pt chart.Point, t portrait.SepType) portrait.Color {
	return FindSepColor(t, SignAt(r, c, pt))
}

// ApplyGCF flips the stability of every owning node, focus and
// semi-elementary point lying where the GCF is negative, and returns how
// many were flipped. Duplicates inherit from their owner and are skipped.
func ApplyGCF(r *portrait.Results) int {
	n := 0
	for _, s := range r.Singularities {
		if !s.NotADummy {
			continue
		}
		switch s.Kind {
		case portrait.Node, portrait.StrongFocus, portrait.WeakFocus, portrait.SemiElementary:
		default:
			continue
		}
		if SignAt(r, s.Chart, chart.Point{s.X0, s.Y0}) == Negative {
			s.Stable = s.Stable.Flip()
			n++
		}
	}
	return n
}
