// Package chart implements the coordinate atlas of the compactified plane.
//
// Two compactifications are supported. The classical Poincaré one maps the
// plane onto the upper unit hemisphere, with antipodal points of the equator
// identified. The weighted Poincaré-Lyapunov one with weights (p, q) keeps
// the finite disk x²+y² < 1 as is and represents everything outside on a
// cylinder (r, θ) with x = cos θ / r^p and y = sin θ / r^q.
//
// An [Atlas] bundles the maps for one compactification and one display
// view. It carries no state besides the weights and the view.
package chart

import (
	"fmt"
	"math"
)

type Chart int

const (
	R2 Chart = iota
	U1
	U2
	V1
	V2
	Cylinder
)

var chartNames = [...]string{"R2", "U1", "U2", "V1", "V2", "Cylinder"}

func (c Chart) String() string {
	if c < 0 || int(c) >= len(chartNames) {
		return fmt.Sprintf("Chart(%d)", int(c))
	}
	return chartNames[c]
}

// ParseChart accepts the names returned by String, case sensitive.
func ParseChart(name string) (Chart, error) {
	for i, n := range chartNames {
		if n == name {
			return Chart(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chart: %s", name)
}

// Antipodal returns the chart holding the other side of an infinite chart:
// U1 <-> V1 and U2 <-> V2. Other charts are returned unchanged.
func (c Chart) Antipodal() Chart {
	switch c {
	case U1:
		return V1
	case V1:
		return U1
	case U2:
		return V2
	case V2:
		return U2
	}
	return c
}

// AtInfinity reports whether the chart describes a neighbourhood of infinity.
func (c Chart) AtInfinity() bool {
	return c != R2
}

// View selects how sphere points are projected for display.
type View int

const (
	ViewSphere View = iota
	ViewR2
	ViewU1
	ViewU2
	ViewV1
	ViewV2
)

var viewNames = [...]string{"sphere", "R2", "U1", "U2", "V1", "V2"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return fmt.Sprintf("View(%d)", int(v))
	}
	return viewNames[v]
}

func ParseView(name string) (View, error) {
	for i, n := range viewNames {
		if n == name {
			return View(i), nil
		}
	}
	return 0, fmt.Errorf("unknown view: %s", name)
}

// Chart returns the chart a planar view displays. The sphere view has none.
func (v View) Chart() (Chart, bool) {
	switch v {
	case ViewR2:
		return R2, true
	case ViewU1:
		return U1, true
	case ViewU2:
		return U2, true
	case ViewV1:
		return V1, true
	case ViewV2:
		return V2, true
	}
	return 0, false
}

// Point is a pair of chart or view coordinates.
type Point [2]float64

// Sphere is a point of the compactified plane. For the classical
// compactification it is (X, Y, Z) on the unit sphere with Z >= 0. For the
// weighted one it is (0, x, y) for a finite point or (1, r, θ) on the
// cylinder.
type Sphere [3]float64

// Segment is a line segment in view coordinates.
type Segment struct {
	A, B Point
}

// Atlas is the set of maps of one compactification, seen through one view.
type Atlas interface {
	Weighted() bool
	Weights() (p, q int)
	View() View

	ChartToSphere(c Chart, pt Point) Sphere
	SphereToChart(c Chart, s Sphere) Point

	SphereToView(s Sphere) Point
	ViewToSphere(v Point) Sphere
	IsValidView(v Point) bool

	// SphereToViewPair maps the segment a-b to view coordinates. When the
	// segment crosses a rendering discontinuity it is split into two pieces
	// with near-boundary endpoints and ok is false; otherwise second is the
	// zero Segment and ok is true.
	SphereToViewPair(a, b Sphere) (first, second Segment, ok bool)

	// IntegrationChart returns the chart orbits through s are integrated in.
	IntegrationChart(s Sphere) Chart
}

// New returns the atlas for the given compactification.
func New(weighted bool, p, q int, view View) Atlas {
	if weighted {
		return NewLyapunov(p, q, view)
	}
	return NewPoincare(view)
}

// splitEpsilon offsets synthetic endpoints from a discontinuity.
const splitEpsilon = 1e-8

func finite(v Point) bool {
	return !math.IsNaN(v[0]) && !math.IsNaN(v[1]) && !math.IsInf(v[0], 0) && !math.IsInf(v[1], 0)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
