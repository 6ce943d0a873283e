package chart

import "math"

// DiskInner is the radius of the finite unit disk in the Lyapunov disk view.
// The cylinder annulus r in [0, 1] is drawn between DiskInner and 1.
const DiskInner = 0.5

// Lyapunov is the weighted Poincaré-Lyapunov atlas with weights (p, q).
type Lyapunov struct {
	p, q int
	view View
}

func NewLyapunov(p, q int, view View) *Lyapunov {
	if p < 1 {
		p = 1
	}
	if q < 1 {
		q = 1
	}
	return &Lyapunov{p: p, q: q, view: view}
}

func (a *Lyapunov) Weighted() bool      { return true }
func (a *Lyapunov) Weights() (int, int) { return a.p, a.q }
func (a *Lyapunov) View() View          { return a.view }

// IsFinite reports whether a weighted sphere point lies in the finite disk.
func IsFinite(s Sphere) bool {
	return s[0] == 0
}

// generic returns (cos, sin, r) of s. Finite points use r = 1 with
// (cos, sin) = (x, y); every chart formula is weighted-homogeneous so both
// representations give the same chart coordinates.
func generic(s Sphere) (c, sn, r float64) {
	if IsFinite(s) {
		return s[1], s[2], 1
	}
	return math.Cos(s[2]), math.Sin(s[2]), s[1]
}

// fromCylinder turns a scaled cylinder solution into a sphere point,
// switching to the finite representation once r >= 1.
func (a *Lyapunov) fromCylinder(ca, cb, rho float64) Sphere {
	w := cylinderRadius(ca, cb, a.p, a.q)
	if math.IsInf(w, 1) {
		return Sphere{0, 0, 0}
	}
	r := rho * w
	c := ca * math.Pow(w, float64(a.p))
	sn := cb * math.Pow(w, float64(a.q))
	if r >= 1 {
		return Sphere{0, c / math.Pow(r, float64(a.p)), sn / math.Pow(r, float64(a.q))}
	}
	return Sphere{1, r, math.Atan2(sn, c)}
}

func (a *Lyapunov) ChartToSphere(c Chart, pt Point) Sphere {
	z1, z2 := pt[0], pt[1]
	s := sign(z2)
	sp := math.Pow(s, float64(a.p))
	sq := math.Pow(s, float64(a.q))
	rho := math.Abs(z2)

	switch c {
	case U1:
		return a.fromCylinder(sp, z1*sq, rho)
	case V1:
		return a.fromCylinder(-sp, z1*sq, rho)
	case U2:
		return a.fromCylinder(z1*sp, sq, rho)
	case V2:
		return a.fromCylinder(z1*sp, -sq, rho)
	case Cylinder:
		r, theta := a.Reflect(z1, z2)
		if r >= 1 {
			return Sphere{0, math.Cos(theta) / math.Pow(r, float64(a.p)), math.Sin(theta) / math.Pow(r, float64(a.q))}
		}
		return Sphere{1, r, theta}
	}
	if z1*z1+z2*z2 < 1 {
		return Sphere{0, z1, z2}
	}
	return a.fromCylinder(z1, z2, 1)
}

// Reflect maps a cylinder point with r < 0 to the same point of the plane
// with r > 0. Points with r >= 0 are returned unchanged.
func (a *Lyapunov) Reflect(r, theta float64) (float64, float64) {
	if r >= 0 {
		return r, theta
	}
	c := math.Cos(theta) * math.Pow(-1, float64(a.p))
	sn := math.Sin(theta) * math.Pow(-1, float64(a.q))
	return -r, math.Atan2(sn, c)
}

func (a *Lyapunov) chartFromGeneric(ch Chart, c, sn, r float64) Point {
	p, q := float64(a.p), float64(a.q)
	switch ch {
	case U1:
		k := 1 / rootN(c, a.p)
		return Point{sn * math.Pow(k, q), r * k}
	case V1:
		k := 1 / rootN(-c, a.p)
		return Point{sn * math.Pow(k, q), r * k}
	case U2:
		k := 1 / rootN(sn, a.q)
		return Point{c * math.Pow(k, p), r * k}
	case V2:
		k := 1 / rootN(-sn, a.q)
		return Point{c * math.Pow(k, p), r * k}
	case Cylinder:
		if r == 1 && c*c+sn*sn < 1 {
			w := cylinderRadius(c, sn, a.p, a.q)
			return Point{w, math.Atan2(sn*math.Pow(w, q), c*math.Pow(w, p))}
		}
		return Point{r, math.Atan2(sn, c)}
	}
	return Point{c / math.Pow(r, p), sn / math.Pow(r, q)}
}

func (a *Lyapunov) SphereToChart(ch Chart, s Sphere) Point {
	c, sn, r := generic(s)
	return a.chartFromGeneric(ch, c, sn, r)
}

func (a *Lyapunov) SphereToView(s Sphere) Point {
	if ch, ok := a.view.Chart(); ok {
		return a.SphereToChart(ch, s)
	}
	if IsFinite(s) {
		return Point{DiskInner * s[1], DiskInner * s[2]}
	}
	rho := 1 - (1-DiskInner)*s[1]
	return Point{rho * math.Cos(s[2]), rho * math.Sin(s[2])}
}

func (a *Lyapunov) ViewToSphere(v Point) Sphere {
	if ch, ok := a.view.Chart(); ok {
		return a.ChartToSphere(ch, v)
	}
	rho := math.Hypot(v[0], v[1])
	if rho < DiskInner {
		return Sphere{0, v[0] / DiskInner, v[1] / DiskInner}
	}
	r := (1 - rho) / (1 - DiskInner)
	if r < 0 {
		r = 0
	}
	return Sphere{1, r, math.Atan2(v[1], v[0])}
}

// IsValidView applies the parity rule: a planar view at infinity covers
// its half of the plane twice when the matching weight is even, so only
// z2 >= 0 is admissible there.
func (a *Lyapunov) IsValidView(v Point) bool {
	if !finite(v) {
		return false
	}
	switch a.view {
	case ViewSphere:
		return v[0]*v[0]+v[1]*v[1] <= 1
	case ViewU1, ViewV1:
		return a.p%2 == 1 || v[1] >= 0
	case ViewU2, ViewV2:
		return a.q%2 == 1 || v[1] >= 0
	}
	return true
}

func (a *Lyapunov) SphereToViewPair(p, q Sphere) (Segment, Segment, bool) {
	switch a.view {
	case ViewSphere:
		if IsFinite(p) == IsFinite(q) {
			return Segment{A: a.SphereToView(p), B: a.SphereToView(q)}, Segment{}, true
		}
		first := Segment{A: a.SphereToView(p), B: a.boundary(p)}
		second := Segment{A: a.boundary(q), B: a.SphereToView(q)}
		return first, second, false
	case ViewR2:
		return Segment{A: a.SphereToView(p), B: a.SphereToView(q)}, Segment{}, true
	}

	ch, _ := a.view.Chart()
	pc, ps, pr := generic(p)
	qc, qs, qr := generic(q)
	fp, fq := pc, qc
	if ch == U2 || ch == V2 {
		fp, fq = ps, qs
	}
	if fp*fq >= 0 {
		return Segment{A: a.SphereToView(p), B: a.SphereToView(q)}, Segment{}, true
	}

	t0 := fp / (fp - fq)
	at := func(t float64) Point {
		return a.chartFromGeneric(ch, pc+t*(qc-pc), ps+t*(qs-ps), pr+t*(qr-pr))
	}
	first := Segment{A: a.SphereToView(p), B: at(t0 - splitEpsilon)}
	second := Segment{A: at(t0 + splitEpsilon), B: a.SphereToView(q)}
	return first, second, false
}

// boundary returns the point just inside the side of the disk-view circle
// of radius DiskInner that s lies on, along the angle of s.
func (a *Lyapunov) boundary(s Sphere) Point {
	var phi, rho float64
	if IsFinite(s) {
		phi = math.Atan2(s[2], s[1])
		rho = DiskInner * (1 - splitEpsilon)
	} else {
		phi = s[2]
		rho = DiskInner * (1 + splitEpsilon)
	}
	return Point{rho * math.Cos(phi), rho * math.Sin(phi)}
}

func (a *Lyapunov) IntegrationChart(s Sphere) Chart {
	if IsFinite(s) {
		return R2
	}
	return Cylinder
}
