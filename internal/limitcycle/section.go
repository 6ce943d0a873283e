package limitcycle

import (
	"fmt"
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
)

// Section is the transverse segment between two points that limit cycles
// are searched on. Positions along it are measured in arc length: radians
// along a great circle for the classical compactification, distance in the
// R2 plane for the weighted one.
type Section struct {
	atlas    chart.Atlas
	weighted bool
	p, q     int
	length   float64

	// classical
	e1, e2, normal chart.Sphere

	// weighted
	from, dir chart.Point
	line      [3]float64
}

// NewSection builds the section from a to b.
func NewSection(atlas chart.Atlas, a, b chart.Sphere) (*Section, error) {
	sec := &Section{atlas: atlas, weighted: atlas.Weighted()}
	sec.p, sec.q = atlas.Weights()
	if sec.weighted {
		return sec, sec.initWeighted(a, b)
	}
	return sec, sec.initClassical(a, b)
}

func (sec *Section) initClassical(a, b chart.Sphere) error {
	e1 := unit(a)
	e2 := sub(b, scale(e1, dot(b, e1)))
	if norm(e2) < 1e-12 {
		return fmt.Errorf("%w: section endpoints coincide", dynamo.ErrInvalidConfig)
	}
	e2 = unit(e2)
	sec.e1, sec.e2 = e1, e2
	sec.normal = cross(e1, e2)
	sec.length = math.Atan2(dot(b, e2), dot(b, e1))
	return nil
}

// initWeighted works in R2 coordinates, so endpoints may lie on the
// cylinder as long as they are not on the line at infinity.
func (sec *Section) initWeighted(a, b chart.Sphere) error {
	pa := sec.atlas.SphereToChart(chart.R2, a)
	pb := sec.atlas.SphereToChart(chart.R2, b)
	if !planar(pa) || !planar(pb) {
		return fmt.Errorf("%w: section endpoints must not lie at infinity", dynamo.ErrInvalidConfig)
	}
	d := chart.Point{pb[0] - pa[0], pb[1] - pa[1]}
	l := math.Hypot(d[0], d[1])
	if l < 1e-12 {
		return fmt.Errorf("%w: section endpoints coincide", dynamo.ErrInvalidConfig)
	}
	sec.from = pa
	sec.dir = chart.Point{d[0] / l, d[1] / l}
	sec.length = l
	sec.line = [3]float64{
		(pa[1] - pb[1]) / l,
		(pb[0] - pa[0]) / l,
		(pa[0]*pb[1] - pb[0]*pa[1]) / l,
	}
	return nil
}

func (sec *Section) Length() float64 { return sec.length }

// At returns the sphere point at arc length s from the first endpoint.
func (sec *Section) At(s float64) chart.Sphere {
	if sec.weighted {
		pt := chart.Point{sec.from[0] + s*sec.dir[0], sec.from[1] + s*sec.dir[1]}
		return sec.atlas.ChartToSphere(chart.R2, pt)
	}
	return add(scale(sec.e1, math.Cos(s)), scale(sec.e2, math.Sin(s)))
}

// Eval is the signed distance of sp from the section line. The weighted
// form on the cylinder is a·cos θ·r^q + b·sin θ·r^p + c·r^(p+q), which
// keeps its sign across the line at infinity.
func (sec *Section) Eval(sp chart.Sphere) float64 {
	if !sec.weighted {
		return dot(sec.normal, sp)
	}
	a, b, c := sec.line[0], sec.line[1], sec.line[2]
	if chart.IsFinite(sp) {
		return a*sp[1] + b*sp[2] + c
	}
	r, th := sp[1], sp[2]
	return a*math.Cos(th)*math.Pow(r, float64(sec.q)) +
		b*math.Sin(th)*math.Pow(r, float64(sec.p)) +
		c*math.Pow(r, float64(sec.p+sec.q))
}

// Position projects a point on the section line to its arc length. Of
// the two antipodal representatives the one facing the segment is used.
func (sec *Section) Position(sp chart.Sphere) float64 {
	if sec.weighted {
		pt := sec.atlas.SphereToChart(chart.R2, sp)
		return (pt[0]-sec.from[0])*sec.dir[0] + (pt[1]-sec.from[1])*sec.dir[1]
	}
	if dot(sp, sec.At(sec.length/2)) < 0 {
		sp = scale(sp, -1)
	}
	return math.Atan2(dot(sp, sec.e2), dot(sp, sec.e1))
}

func planar(p chart.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func dot(a, b chart.Sphere) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func norm(a chart.Sphere) float64 { return math.Sqrt(dot(a, a)) }

func unit(a chart.Sphere) chart.Sphere { return scale(a, 1/norm(a)) }

func scale(a chart.Sphere, f float64) chart.Sphere {
	return chart.Sphere{a[0] * f, a[1] * f, a[2] * f}
}

func add(a, b chart.Sphere) chart.Sphere {
	return chart.Sphere{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b chart.Sphere) chart.Sphere {
	return chart.Sphere{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b chart.Sphere) chart.Sphere {
	return chart.Sphere{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
