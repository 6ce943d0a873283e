package portrait

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/poly"
)

// VectorField is (ẋ, ẏ) in one chart. Planar charts use P and Q; the
// cylinder chart of a weighted compactification uses PC for ṙ and QC for
// θ̇, both in (r, cos θ, sin θ).
type VectorField struct {
	Chart  chart.Chart
	P, Q   poly.Poly2
	PC, QC poly.Poly3
}

func NewVectorField(c chart.Chart, p, q poly.Poly2) *VectorField {
	return &VectorField{Chart: c, P: p.Normalize(), Q: q.Normalize()}
}

func NewCylinderField(p, q poly.Poly3) *VectorField {
	return &VectorField{Chart: chart.Cylinder, PC: p.Normalize(), QC: q.Normalize()}
}

func (f *VectorField) IsZero() bool {
	if f == nil {
		return true
	}
	return len(f.P) == 0 && len(f.Q) == 0 && len(f.PC) == 0 && len(f.QC) == 0
}

func (f *VectorField) Eval(x, y float64) (float64, float64) {
	if f.Chart == chart.Cylinder {
		c, s := math.Cos(y), math.Sin(y)
		return f.PC.EvalCS(x, c, s), f.QC.EvalCS(x, c, s)
	}
	return f.P.Eval(x, y), f.Q.Eval(x, y)
}

// Derive makes the field usable by the integrators.
func (f *VectorField) Derive(x dynamo.State) dynamo.State {
	dx, dy := f.Eval(x[0], x[1])
	return dynamo.State{dx, dy}
}

// Degree is the largest total degree of the planar components.
func (f *VectorField) Degree() int {
	d := f.P.Degree()
	if e := f.Q.Degree(); e > d {
		d = e
	}
	return d
}

func (f *VectorField) String() string {
	if f.Chart == chart.Cylinder {
		return "r' = " + f.PC.String() + "\nth' = " + f.QC.String()
	}
	return "x' = " + f.P.String() + "\ny' = " + f.Q.String()
}
