package gcf

import (
	"math"
	"testing"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

func TestFindSepColorInvolution(t *testing.T) {
	for _, st := range []portrait.SepType{portrait.Stable, portrait.Unstable, portrait.CenterStable, portrait.CenterUnstable} {
		plain := FindSepColor(st, NonNegative)
		flipped := FindSepColor(st, Negative)
		if plain == flipped {
			t.Errorf("%v: negative sign did not change the color", st)
		}
		if back := FindSepColor(st.Swap(), Negative); back != plain {
			t.Errorf("%v: flipping twice gave %v, want %v", st, back, plain)
		}
	}
	if FindSepColor(portrait.Unstable, NonNegative) != portrait.ColorUnstable {
		t.Error("unstable separatrix must use ColorUnstable")
	}
}

func TestSignAt(t *testing.T) {
	r := portrait.NewResults()
	// GCF of R2 is x: negative on the left half plane.
	r.GCF[chart.R2] = poly.Poly2{{ExpX: 1, Coeff: 1}}
	r.GCF[chart.U1] = poly.Poly2{{Coeff: -3}}

	tests := []struct {
		c    chart.Chart
		pt   chart.Point
		want Sign
	}{
		{chart.R2, chart.Point{-1, 5}, Negative},
		{chart.R2, chart.Point{1, -5}, NonNegative},
		{chart.R2, chart.Point{0, 0}, NonNegative},
		{chart.U1, chart.Point{1, 1}, NonNegative},
		{chart.V2, chart.Point{1, 1}, NonNegative},
	}
	for _, tt := range tests {
		if got := SignAt(r, tt.c, tt.pt); got != tt.want {
			t.Errorf("SignAt(%v, %v) = %v, want %v", tt.c, tt.pt, got, tt.want)
		}
	}
}

func TestSector(t *testing.T) {
	tests := []struct {
		theta float64
		want  chart.Chart
	}{
		{0, chart.U1},
		{math.Pi / 2, chart.U2},
		{math.Pi, chart.V1},
		{-math.Pi, chart.V1},
		{-math.Pi / 2, chart.V2},
		{2*math.Pi + 0.1, chart.U1},
	}
	for _, tt := range tests {
		if got := Sector(tt.theta); got != tt.want {
			t.Errorf("Sector(%g) = %v, want %v", tt.theta, got, tt.want)
		}
	}
}

func TestSignAtCylinder(t *testing.T) {
	r := portrait.NewResults()
	r.Weighted = true
	// In U2 the GCF is z1, so it is negative where cos θ < 0.
	r.GCF[chart.U2] = poly.Poly2{{ExpX: 1, Coeff: 1}}

	if got := SignAt(r, chart.Cylinder, chart.Point{0.3, math.Pi/2 + 0.2}); got != Negative {
		t.Errorf("got %v, want Negative", got)
	}
	if got := SignAt(r, chart.Cylinder, chart.Point{0.3, math.Pi/2 - 0.2}); got != NonNegative {
		t.Errorf("got %v, want NonNegative", got)
	}
	// Angle 0 falls in U1, which has no GCF.
	if got := SignAt(r, chart.Cylinder, chart.Point{0.3, 0}); got != NonNegative {
		t.Errorf("got %v, want NonNegative", got)
	}
}

func TestApplyGCF(t *testing.T) {
	r := portrait.NewResults()
	r.GCF[chart.R2] = poly.Poly2{{ExpX: 1, Coeff: 1}}
	r.GCF[chart.U2] = poly.Poly2{{ExpX: 1, Coeff: 1}}
	left := r.AddSingularity(&portrait.Singularity{Kind: portrait.Node, Chart: chart.R2, X0: -1, Stable: portrait.StabilityStable})
	right := r.AddSingularity(&portrait.Singularity{Kind: portrait.StrongFocus, Chart: chart.R2, X0: 1, Stable: portrait.StabilityStable})
	saddle := r.AddSingularity(&portrait.Singularity{Kind: portrait.Saddle, Chart: chart.R2, X0: -2, Stable: portrait.StabilityStable})
	inf := r.AddSingularity(&portrait.Singularity{Kind: portrait.Node, Chart: chart.U2, X0: -0.5, Stable: portrait.StabilityUnstable})
	dup, err := r.Duplicate(inf)
	if err != nil {
		t.Fatal(err)
	}
	dupBefore := r.Singularities[dup].Stable

	if n := ApplyGCF(r); n != 2 {
		t.Errorf("flipped %d points, want 2", n)
	}
	if r.Singularities[left].Stable != portrait.StabilityUnstable {
		t.Error("node left of the GCF zero set should flip")
	}
	if r.Singularities[right].Stable != portrait.StabilityStable {
		t.Error("focus right of the GCF zero set should not flip")
	}
	if r.Singularities[saddle].Stable != portrait.StabilityStable {
		t.Error("saddles are not re-evaluated")
	}
	if r.Singularities[dup].Stable != dupBefore {
		t.Error("duplicates must not be re-evaluated")
	}
}
