package portrait

import (
	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/poly"
)

// homogenize rewrites a planar polynomial in chart coordinates (u, v).
// each maps the exponents (i, j) of x^i·y^j to those of u and v and a sign.
func homogenize(p poly.Poly2, each func(i, j int) (eu, ev int, sign float64)) poly.Poly2 {
	out := make(poly.Poly2, 0, len(p))
	for _, t := range p {
		eu, ev, sign := each(t.ExpX, t.ExpY)
		out = append(out, poly.Term2{ExpX: eu, ExpY: ev, Coeff: sign * t.Coeff})
	}
	return out.Normalize()
}

func parity(n int) float64 {
	if n%2 != 0 {
		return -1
	}
	return 1
}

// Compactify derives the classical fields of U1, V1, U2 and V2 from the
// planar field in r.Fields[R2] and sets DirVecField to (-1)^(d-1). Each
// chart field is rescaled by v^(d-1), which keeps orientation for v > 0.
func Compactify(r *Results) {
	f := r.Fields[chart.R2]
	if f == nil {
		return
	}
	d := f.Degree()
	if d < 1 {
		d = 1
	}
	r.Weighted = false
	r.P, r.Q = 1, 1
	r.DirVecField = int(parity(d - 1))

	u := poly.Poly2{{ExpX: 1, Coeff: 1}}
	v := poly.Poly2{{ExpY: 1, Coeff: 1}}
	mul := func(a, b poly.Poly2) poly.Poly2 {
		var out poly.Poly2
		for _, t := range a {
			out = append(out, b.MulMonomial(t.ExpX, t.ExpY, t.Coeff)...)
		}
		return out.Normalize()
	}

	// U1: x = 1/v, y = u/v.
	ps := homogenize(f.P, func(i, j int) (int, int, float64) { return j, d - i - j, 1 })
	qs := homogenize(f.Q, func(i, j int) (int, int, float64) { return j, d - i - j, 1 })
	r.SetField(NewVectorField(chart.U1, qs.Sub(mul(u, ps)), mul(v, ps).Scale(-1)))

	// V1: x = -1/v, y = u/v.
	ps = homogenize(f.P, func(i, j int) (int, int, float64) { return j, d - i - j, parity(i) })
	qs = homogenize(f.Q, func(i, j int) (int, int, float64) { return j, d - i - j, parity(i) })
	r.SetField(NewVectorField(chart.V1, qs.Add(mul(u, ps)), mul(v, ps)))

	// U2: x = u/v, y = 1/v.
	ps = homogenize(f.P, func(i, j int) (int, int, float64) { return i, d - i - j, 1 })
	qs = homogenize(f.Q, func(i, j int) (int, int, float64) { return i, d - i - j, 1 })
	r.SetField(NewVectorField(chart.U2, ps.Sub(mul(u, qs)), mul(v, qs).Scale(-1)))

	// V2: x = u/v, y = -1/v.
	ps = homogenize(f.P, func(i, j int) (int, int, float64) { return i, d - i - j, parity(j) })
	qs = homogenize(f.Q, func(i, j int) (int, int, float64) { return i, d - i - j, parity(j) })
	r.SetField(NewVectorField(chart.V2, ps.Add(mul(u, qs)), mul(v, qs)))
}

// CompactifyWeighted derives the cylinder field for weights (p, q) from
// the planar field, with x = cos θ/r^p and y = sin θ/r^q. Time is rescaled
// by r^M·(p·cos²θ + q·sin²θ), which is positive for r > 0, with M the
// smallest power clearing every negative exponent of r.
func CompactifyWeighted(r *Results, p, q int) {
	f := r.Fields[chart.R2]
	if f == nil {
		return
	}
	r.Weighted = true
	r.P, r.Q = p, q

	m := 0
	for _, t := range f.P {
		if e := p*t.ExpX + q*t.ExpY - p; e > m {
			m = e
		}
	}
	for _, t := range f.Q {
		if e := p*t.ExpX + q*t.ExpY - q; e > m {
			m = e
		}
	}

	var rdot, tdot poly.Poly3
	for _, t := range f.P {
		e := m + p - p*t.ExpX - q*t.ExpY
		rdot = append(rdot, poly.Term3{ExpR: e + 1, ExpCos: t.ExpX + 1, ExpSin: t.ExpY, Coeff: -t.Coeff})
		tdot = append(tdot, poly.Term3{ExpR: e, ExpCos: t.ExpX, ExpSin: t.ExpY + 1, Coeff: -float64(q) * t.Coeff})
	}
	for _, t := range f.Q {
		e := m + q - p*t.ExpX - q*t.ExpY
		rdot = append(rdot, poly.Term3{ExpR: e + 1, ExpCos: t.ExpX, ExpSin: t.ExpY + 1, Coeff: -t.Coeff})
		tdot = append(tdot, poly.Term3{ExpR: e, ExpCos: t.ExpX + 1, ExpSin: t.ExpY, Coeff: float64(p) * t.Coeff})
	}
	r.SetField(NewCylinderField(rdot, tdot))
}
