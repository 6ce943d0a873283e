// Package poly implements the sparse polynomials used by vector fields,
// GCF curves and Taylor separatrices.
//
// A polynomial is an ordered slice of terms with strictly decreasing
// exponents. Ties in the leading exponent are broken by the following
// exponents, again decreasing. Zero coefficients are never stored once a
// polynomial has been normalized.
package poly

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Term1 is a single-variable term coeff*t^Exp.
type Term1 struct {
	Exp   int
	Coeff float64
}

// Term2 is a term coeff*x^ExpX*y^ExpY.
type Term2 struct {
	ExpX, ExpY int
	Coeff      float64
}

// Term3 is a term coeff*r^ExpR*cos(θ)^ExpCos*sin(θ)^ExpSin.
type Term3 struct {
	ExpR, ExpCos, ExpSin int
	Coeff                float64
}

type Poly1 []Term1

type Poly2 []Term2

type Poly3 []Term3

// Pow raises x to a non-negative integer power by repeated squaring.
// Unlike math.Pow it is exact in sign for negative bases.
func Pow(x float64, n int) float64 {
	if n < 0 {
		return 1 / Pow(x, -n)
	}
	result := 1.0
	for n > 0 {
		if n&1 == 1 {
			result *= x
		}
		x *= x
		n >>= 1
	}
	return result
}

func (p Poly1) Eval(t float64) float64 {
	sum := 0.0
	for _, term := range p {
		sum += term.Coeff * Pow(t, term.Exp)
	}
	return sum
}

// Derivative returns dp/dt.
func (p Poly1) Derivative() Poly1 {
	out := make(Poly1, 0, len(p))
	for _, term := range p {
		if term.Exp == 0 {
			continue
		}
		out = append(out, Term1{Exp: term.Exp - 1, Coeff: term.Coeff * float64(term.Exp)})
	}
	return out
}

func (p Poly1) Clone() Poly1 {
	if p == nil {
		return nil
	}
	c := make(Poly1, len(p))
	copy(c, p)
	return c
}

func (p Poly1) Scale(factor float64) Poly1 {
	out := make(Poly1, len(p))
	for i, term := range p {
		out[i] = Term1{Exp: term.Exp, Coeff: term.Coeff * factor}
	}
	return out.Normalize()
}

func (p Poly1) Add(q Poly1) Poly1 {
	out := make(Poly1, 0, len(p)+len(q))
	out = append(out, p...)
	out = append(out, q...)
	return out.Normalize()
}

func (p Poly1) Sub(q Poly1) Poly1 {
	return p.Add(q.Scale(-1))
}

// Normalize sorts the terms, merges equal exponents and drops zeros.
func (p Poly1) Normalize() Poly1 {
	sorted := p.Clone()
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Exp > sorted[j].Exp })
	out := make(Poly1, 0, len(sorted))
	for _, term := range sorted {
		if n := len(out); n > 0 && out[n-1].Exp == term.Exp {
			out[n-1].Coeff += term.Coeff
			continue
		}
		out = append(out, term)
	}
	return dropZero1(out)
}

func dropZero1(p Poly1) Poly1 {
	out := p[:0]
	for _, term := range p {
		if term.Coeff != 0 {
			out = append(out, term)
		}
	}
	return out
}

func (p Poly1) Degree() int {
	deg := -1
	for _, term := range p {
		if term.Exp > deg {
			deg = term.Exp
		}
	}
	return deg
}

func (p Poly1) String() string {
	if len(p) == 0 {
		return "0"
	}
	parts := make([]string, len(p))
	for i, term := range p {
		parts[i] = monomial(term.Coeff, []string{"t"}, []int{term.Exp})
	}
	return joinTerms(parts)
}

func (p Poly2) Eval(x, y float64) float64 {
	sum := 0.0
	for _, term := range p {
		sum += term.Coeff * Pow(x, term.ExpX) * Pow(y, term.ExpY)
	}
	return sum
}

func (p Poly2) Clone() Poly2 {
	if p == nil {
		return nil
	}
	c := make(Poly2, len(p))
	copy(c, p)
	return c
}

func (p Poly2) Scale(factor float64) Poly2 {
	out := make(Poly2, len(p))
	for i, term := range p {
		out[i] = Term2{ExpX: term.ExpX, ExpY: term.ExpY, Coeff: term.Coeff * factor}
	}
	return out.Normalize()
}

// MulMonomial multiplies every term by coeff*x^ex*y^ey.
func (p Poly2) MulMonomial(ex, ey int, coeff float64) Poly2 {
	out := make(Poly2, len(p))
	for i, term := range p {
		out[i] = Term2{ExpX: term.ExpX + ex, ExpY: term.ExpY + ey, Coeff: term.Coeff * coeff}
	}
	return out.Normalize()
}

func (p Poly2) Add(q Poly2) Poly2 {
	out := make(Poly2, 0, len(p)+len(q))
	out = append(out, p...)
	out = append(out, q...)
	return out.Normalize()
}

func (p Poly2) Sub(q Poly2) Poly2 {
	return p.Add(q.Scale(-1))
}

func (p Poly2) Normalize() Poly2 {
	sorted := p.Clone()
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ExpX != sorted[j].ExpX {
			return sorted[i].ExpX > sorted[j].ExpX
		}
		return sorted[i].ExpY > sorted[j].ExpY
	})
	out := make(Poly2, 0, len(sorted))
	for _, term := range sorted {
		if n := len(out); n > 0 && out[n-1].ExpX == term.ExpX && out[n-1].ExpY == term.ExpY {
			out[n-1].Coeff += term.Coeff
			continue
		}
		out = append(out, term)
	}
	res := out[:0]
	for _, term := range out {
		if term.Coeff != 0 {
			res = append(res, term)
		}
	}
	return res
}

// Degree returns the total degree, or -1 for the zero polynomial.
func (p Poly2) Degree() int {
	deg := -1
	for _, term := range p {
		if d := term.ExpX + term.ExpY; d > deg {
			deg = d
		}
	}
	return deg
}

func (p Poly2) String() string {
	if len(p) == 0 {
		return "0"
	}
	parts := make([]string, len(p))
	for i, term := range p {
		parts[i] = monomial(term.Coeff, []string{"x", "y"}, []int{term.ExpX, term.ExpY})
	}
	return joinTerms(parts)
}

func (p Poly3) Eval(r, theta float64) float64 {
	return p.EvalCS(r, math.Cos(theta), math.Sin(theta))
}

// EvalCS evaluates with precomputed cos(θ) and sin(θ).
func (p Poly3) EvalCS(r, c, s float64) float64 {
	sum := 0.0
	for _, term := range p {
		sum += term.Coeff * Pow(r, term.ExpR) * Pow(c, term.ExpCos) * Pow(s, term.ExpSin)
	}
	return sum
}

func (p Poly3) Clone() Poly3 {
	if p == nil {
		return nil
	}
	c := make(Poly3, len(p))
	copy(c, p)
	return c
}

func (p Poly3) Scale(factor float64) Poly3 {
	out := make(Poly3, len(p))
	for i, term := range p {
		out[i] = term
		out[i].Coeff *= factor
	}
	return out.Normalize()
}

func (p Poly3) Add(q Poly3) Poly3 {
	out := make(Poly3, 0, len(p)+len(q))
	out = append(out, p...)
	out = append(out, q...)
	return out.Normalize()
}

func (p Poly3) Sub(q Poly3) Poly3 {
	return p.Add(q.Scale(-1))
}

func (p Poly3) Normalize() Poly3 {
	sorted := p.Clone()
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.ExpR != b.ExpR {
			return a.ExpR > b.ExpR
		}
		if a.ExpCos != b.ExpCos {
			return a.ExpCos > b.ExpCos
		}
		return a.ExpSin > b.ExpSin
	})
	out := make(Poly3, 0, len(sorted))
	for _, term := range sorted {
		if n := len(out); n > 0 && out[n-1].ExpR == term.ExpR && out[n-1].ExpCos == term.ExpCos && out[n-1].ExpSin == term.ExpSin {
			out[n-1].Coeff += term.Coeff
			continue
		}
		out = append(out, term)
	}
	res := out[:0]
	for _, term := range out {
		if term.Coeff != 0 {
			res = append(res, term)
		}
	}
	return res
}

func (p Poly3) String() string {
	if len(p) == 0 {
		return "0"
	}
	parts := make([]string, len(p))
	for i, term := range p {
		parts[i] = monomial(term.Coeff, []string{"r", "Co", "Si"}, []int{term.ExpR, term.ExpCos, term.ExpSin})
	}
	return joinTerms(parts)
}

func monomial(coeff float64, vars []string, exps []int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%g", coeff))
	for i, v := range vars {
		switch exps[i] {
		case 0:
		case 1:
			sb.WriteString("*" + v)
		default:
			sb.WriteString(fmt.Sprintf("*%s^%d", v, exps[i]))
		}
	}
	return sb.String()
}

func joinTerms(parts []string) string {
	var sb strings.Builder
	for i, part := range parts {
		if i == 0 {
			sb.WriteString(part)
			continue
		}
		if strings.HasPrefix(part, "-") {
			sb.WriteString(" - " + part[1:])
		} else {
			sb.WriteString(" + " + part)
		}
	}
	return sb.String()
}
