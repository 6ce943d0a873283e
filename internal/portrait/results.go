package portrait

import (
	"fmt"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/poly"
)

// Bounds is a finite view box (x0, y0, x1, y1).
type Bounds [4]float64

// Results is everything known about one vector field.
type Results struct {
	Weighted bool
	P, Q     int
	// DirVecField is +1 or -1: the factor relating the field on both
	// sides of the line at infinity.
	DirVecField int
	// SingInf is set when infinity is a line of singular points that was
	// divided out of the fields at infinity.
	SingInf bool
	Bounds  *Bounds

	GCF    [chart.Cylinder]poly.Poly2
	Fields [chart.Cylinder + 1]*VectorField

	Singularities []*Singularity
	Orbits        []*Orbit
	LimitCycles   []*LimitCycle
}

func NewResults() *Results {
	return &Results{P: 1, Q: 1, DirVecField: 1}
}

// Field returns the field of chart c, or nil.
func (r *Results) Field(c chart.Chart) *VectorField {
	if c < 0 || int(c) >= len(r.Fields) {
		return nil
	}
	return r.Fields[c]
}

func (r *Results) SetField(f *VectorField) {
	r.Fields[f.Chart] = f
}

// Atlas builds the chart maps matching the compactification.
func (r *Results) Atlas(view chart.View) chart.Atlas {
	return chart.New(r.Weighted, r.P, r.Q, view)
}

// AddSingularity appends s as an owning point and returns its index.
func (r *Results) AddSingularity(s *Singularity) int {
	s.NotADummy = true
	s.Owner = -1
	r.Singularities = append(r.Singularities, s)
	return len(r.Singularities) - 1
}

// Duplicate mirrors the point at index i into the antipodal chart at
// (-x0, 0). It is only meaningful for points on the line at infinity.
// Nodes, saddles and strong foci change stability when the field changes
// direction across infinity.
func (r *Results) Duplicate(i int) (int, error) {
	if i < 0 || i >= len(r.Singularities) {
		return -1, fmt.Errorf("duplicate: no singular point %d", i)
	}
	src := r.Singularities[i]
	if !src.NotADummy {
		return -1, fmt.Errorf("duplicate: point %d is itself a duplicate", i)
	}
	if src.Chart != chart.U1 && src.Chart != chart.U2 {
		return -1, fmt.Errorf("duplicate: point %d is in %v, want U1 or U2", i, src.Chart)
	}

	d := &Singularity{
		Kind:    src.Kind,
		Chart:   src.Chart.Antipodal(),
		X0:      -src.X0,
		Y0:      0,
		Stable:  src.Stable,
		Matrix:  src.Matrix,
		Field:   src.Field,
		Epsilon: src.Epsilon,
		Owner:   i,
	}
	if r.DirVecField == -1 {
		switch d.Kind {
		case Node, StrongFocus, Saddle:
			d.Stable = d.Stable.Flip()
		}
	}
	r.Singularities = append(r.Singularities, d)
	return len(r.Singularities) - 1, nil
}

// Owner resolves a duplicate to the point owning its lists.
func (r *Results) Owner(s *Singularity) *Singularity {
	if s.NotADummy || s.Owner < 0 || s.Owner >= len(r.Singularities) {
		return s
	}
	return r.Singularities[s.Owner]
}

func (r *Results) SeparatricesOf(s *Singularity) []*Separatrix {
	return r.Owner(s).Separatrices
}

func (r *Results) BlowUpsOf(s *Singularity) []*BlowUpPoint {
	return r.Owner(s).BlowUps
}

// ClearStats counts what Clear released.
type ClearStats struct {
	Singularities int
	Separatrices  int
	BlowUps       int
	Orbits        int
	LimitCycles   int
	Points        int
}

// Clear drops all singular points, orbits and limit cycles. Lists are
// released only through their owning point, so shared lists are counted
// once. Fields and GCF are kept.
func (r *Results) Clear() ClearStats {
	var st ClearStats
	for _, s := range r.Singularities {
		st.Singularities++
		if !s.NotADummy {
			continue
		}
		for _, sep := range s.Separatrices {
			st.Separatrices++
			st.Points += len(sep.Points)
			sep.Taylor = nil
			sep.Points = nil
		}
		for _, b := range s.BlowUps {
			st.BlowUps++
			st.Points += len(b.Points)
			b.Taylor = nil
			b.Points = nil
			b.Trans = nil
		}
		s.Separatrices = nil
		s.BlowUps = nil
	}
	r.Singularities = nil

	for _, o := range r.Orbits {
		st.Orbits++
		st.Points += o.Len()
	}
	r.Orbits = nil
	for _, lc := range r.LimitCycles {
		st.LimitCycles++
		st.Points += lc.Len()
	}
	r.LimitCycles = nil
	return st
}

// ClearPoints forgets all integrated points but keeps the singular points,
// so separatrices can be integrated again.
func (r *Results) ClearPoints() {
	for _, s := range r.Singularities {
		if !s.NotADummy {
			continue
		}
		for _, sep := range s.Separatrices {
			sep.Points = nil
			sep.Cursor = Cursor{}
		}
		for _, b := range s.BlowUps {
			b.Points = nil
			b.Cursor = Cursor{}
			b.BlowUpVecField = true
			b.Local = chart.Point{}
		}
	}
	r.Orbits = nil
	r.LimitCycles = nil
}
