package chart

import "math"

// FiniteZ is the height above which classical orbits are integrated in R2.
// It corresponds to the disk x²+y² < 15.
const FiniteZ = 0.25

type Poincare struct {
	view View
}

func NewPoincare(view View) *Poincare {
	return &Poincare{view: view}
}

func (a *Poincare) Weighted() bool      { return false }
func (a *Poincare) Weights() (int, int) { return 1, 1 }
func (a *Poincare) View() View          { return a.view }

// canonical normalizes s onto the unit sphere with Z >= 0.
func canonical(s Sphere) Sphere {
	n := math.Sqrt(s[0]*s[0] + s[1]*s[1] + s[2]*s[2])
	if n == 0 {
		return Sphere{0, 0, 1}
	}
	if s[2] < 0 {
		n = -n
	}
	return Sphere{s[0] / n, s[1] / n, s[2] / n}
}

func (a *Poincare) ChartToSphere(c Chart, pt Point) Sphere {
	z1, z2 := pt[0], pt[1]
	switch c {
	case U1:
		return canonical(Sphere{1, z1, z2})
	case V1:
		return canonical(Sphere{-1, z1, z2})
	case U2:
		return canonical(Sphere{z1, 1, z2})
	case V2:
		return canonical(Sphere{z1, -1, z2})
	}
	return canonical(Sphere{z1, z2, 1})
}

// SphereToChart only uses ratios of the sphere coordinates, so it is
// invariant under the antipodal map.
func (a *Poincare) SphereToChart(c Chart, s Sphere) Point {
	X, Y, Z := s[0], s[1], s[2]
	switch c {
	case U1:
		return Point{Y / X, Z / X}
	case V1:
		return Point{-Y / X, -Z / X}
	case U2:
		return Point{X / Y, Z / Y}
	case V2:
		return Point{-X / Y, -Z / Y}
	}
	return Point{X / Z, Y / Z}
}

func (a *Poincare) SphereToView(s Sphere) Point {
	if c, ok := a.view.Chart(); ok {
		return a.SphereToChart(c, s)
	}
	s = canonical(s)
	return Point{s[0], s[1]}
}

func (a *Poincare) ViewToSphere(v Point) Sphere {
	if c, ok := a.view.Chart(); ok {
		return a.ChartToSphere(c, v)
	}
	z := 1 - v[0]*v[0] - v[1]*v[1]
	if z < 0 {
		z = 0
	}
	return canonical(Sphere{v[0], v[1], math.Sqrt(z)})
}

func (a *Poincare) IsValidView(v Point) bool {
	if !finite(v) {
		return false
	}
	if a.view == ViewSphere {
		return v[0]*v[0]+v[1]*v[1] <= 1
	}
	return true
}

// selector returns the coordinate whose sign change marks a discontinuity
// of the current view.
func (a *Poincare) selector(s Sphere) float64 {
	switch a.view {
	case ViewU1, ViewV1:
		return s[0]
	case ViewU2, ViewV2:
		return s[1]
	}
	return s[2]
}

func (a *Poincare) SphereToViewPair(p, q Sphere) (Segment, Segment, bool) {
	orig := q
	flipped := false
	if p[0]*q[0]+p[1]*q[1]+p[2]*q[2] < 0 {
		q = Sphere{-q[0], -q[1], -q[2]}
		flipped = true
	}

	fp, fq := a.selector(p), a.selector(q)
	split := fp*fq < 0
	if flipped && (a.view == ViewSphere || a.view == ViewR2) {
		split = true
	}
	if !split {
		return Segment{A: a.SphereToView(p), B: a.SphereToView(orig)}, Segment{}, true
	}

	t0 := 0.5
	if fp != fq {
		t0 = fp / (fp - fq)
	}
	m1 := lerpSphere(p, q, t0-splitEpsilon)
	m2 := lerpSphere(p, q, t0+splitEpsilon)
	first := Segment{A: a.SphereToView(p), B: a.SphereToView(m1)}
	second := Segment{A: a.SphereToView(m2), B: a.SphereToView(orig)}
	return first, second, false
}

func lerpSphere(p, q Sphere, t float64) Sphere {
	return Sphere{
		p[0] + t*(q[0]-p[0]),
		p[1] + t*(q[1]-p[1]),
		p[2] + t*(q[2]-p[2]),
	}
}

func (a *Poincare) IntegrationChart(s Sphere) Chart {
	s = canonical(s)
	if s[2] >= FiniteZ {
		return R2
	}
	if math.Abs(s[0]) >= math.Abs(s[1]) {
		if s[0] > 0 {
			return U1
		}
		return V1
	}
	if s[1] > 0 {
		return U2
	}
	return V2
}
