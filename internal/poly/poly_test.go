package poly

import (
	"math"
	"testing"
)

func TestPow(t *testing.T) {
	tests := []struct {
		x    float64
		n    int
		want float64
	}{
		{2, 0, 1},
		{2, 10, 1024},
		{-2, 3, -8},
		{-2, 4, 16},
		{0.5, -2, 4},
	}
	for _, tt := range tests {
		if got := Pow(tt.x, tt.n); got != tt.want {
			t.Errorf("Pow(%v, %d) = %v, want %v", tt.x, tt.n, got, tt.want)
		}
	}
}

func TestPoly2_Normalize(t *testing.T) {
	p := Poly2{
		{ExpX: 0, ExpY: 1, Coeff: 1},
		{ExpX: 2, ExpY: 0, Coeff: 3},
		{ExpX: 0, ExpY: 1, Coeff: -1},
		{ExpX: 2, ExpY: 1, Coeff: 2},
		{ExpX: 1, ExpY: 1, Coeff: 0},
	}.Normalize()

	want := Poly2{{ExpX: 2, ExpY: 1, Coeff: 2}, {ExpX: 2, ExpY: 0, Coeff: 3}}
	if len(p) != len(want) {
		t.Fatalf("expected %d terms, got %d (%s)", len(want), len(p), p)
	}
	for i := range want {
		if p[i] != want[i] {
			t.Errorf("term %d: got %+v, want %+v", i, p[i], want[i])
		}
	}
}

func TestPoly2_AddSubEval(t *testing.T) {
	p := Poly2{{ExpX: 1, Coeff: 1}, {ExpY: 2, Coeff: -2}}
	q := Poly2{{ExpX: 1, Coeff: 3}, {Coeff: 5}}

	sum := p.Add(q)
	diff := p.Sub(q)
	x, y := 1.5, -0.5

	if got, want := sum.Eval(x, y), p.Eval(x, y)+q.Eval(x, y); math.Abs(got-want) > 1e-12 {
		t.Errorf("sum eval = %v, want %v", got, want)
	}
	if got, want := diff.Eval(x, y), p.Eval(x, y)-q.Eval(x, y); math.Abs(got-want) > 1e-12 {
		t.Errorf("diff eval = %v, want %v", got, want)
	}
	if d := p.Sub(p); len(d) != 0 {
		t.Errorf("p - p should be empty, got %s", d)
	}
}

func TestPoly2_CloneIsIndependent(t *testing.T) {
	p := Poly2{{ExpX: 1, Coeff: 1}}
	c := p.Clone()
	c[0].Coeff = 7
	if p[0].Coeff != 1 {
		t.Error("clone shares storage with original")
	}
	var empty Poly2
	if empty.Clone() != nil {
		t.Error("clone of nil should stay nil")
	}
}

func TestPoly2_MulMonomialAndDegree(t *testing.T) {
	p := Poly2{{ExpX: 1, ExpY: 1, Coeff: 2}, {Coeff: 1}}
	m := p.MulMonomial(0, 2, -1)
	if m.Degree() != 4 {
		t.Errorf("expected degree 4, got %d", m.Degree())
	}
	if got := m.Eval(2, 3); got != -(2*2*3+1)*9 {
		t.Errorf("unexpected value %v", got)
	}
	var zero Poly2
	if zero.Degree() != -1 {
		t.Errorf("zero polynomial degree should be -1")
	}
}

func TestPoly1_EvalDerivative(t *testing.T) {
	g := Poly1{{Exp: 3, Coeff: 1}, {Exp: 2, Coeff: -2}, {Exp: 0, Coeff: 4}}
	if got := g.Eval(2); got != 4 {
		t.Errorf("g(2) = %v, want 4", got)
	}
	dg := g.Derivative()
	if got := dg.Eval(2); got != 4 {
		t.Errorf("g'(2) = %v, want 4", got)
	}
}

func TestPoly3_Eval(t *testing.T) {
	p := Poly3{{ExpR: 1, ExpCos: 2, Coeff: 1}, {ExpSin: 2, Coeff: 1}}
	theta := 0.3
	want := 2*math.Cos(theta)*math.Cos(theta) + math.Sin(theta)*math.Sin(theta)
	if got := p.Eval(2, theta); math.Abs(got-want) > 1e-12 {
		t.Errorf("Eval = %v, want %v", got, want)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"zero", Poly2{}.String(), "0"},
		{"poly2", Poly2{{ExpX: 2, Coeff: 1}, {ExpY: 1, Coeff: -3}}.String(), "1*x^2 - 3*y"},
		{"poly1", Poly1{{Exp: 1, Coeff: 0.5}}.String(), "0.5*t"},
		{"poly3", Poly3{{ExpR: 1, ExpSin: 1, Coeff: 2}}.String(), "2*r*Si"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestParse2(t *testing.T) {
	tests := []struct {
		src  string
		want Poly2
	}{
		{"x", Poly2{{ExpX: 1, Coeff: 1}}},
		{"-y + x - x^3 - x*y^2", Poly2{
			{ExpX: 3, Coeff: -1},
			{ExpX: 1, ExpY: 2, Coeff: -1},
			{ExpX: 1, Coeff: 1},
			{ExpY: 1, Coeff: -1},
		}},
		{"2.5x^2y", Poly2{{ExpX: 2, ExpY: 1, Coeff: 2.5}}},
		{"3 * x * x - x^2 + 1e-1", Poly2{{ExpX: 2, Coeff: 2}, {Coeff: 0.1}}},
		{"x*y - y*x", Poly2{}},
	}
	for _, tt := range tests {
		got, err := Parse2(tt.src)
		if err != nil {
			t.Errorf("Parse2(%q): %v", tt.src, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("Parse2(%q) = %s, want %s", tt.src, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("Parse2(%q) term %d = %+v, want %+v", tt.src, i, got[i], tt.want[i])
			}
		}
	}
}

func TestParse2Errors(t *testing.T) {
	for _, src := range []string{"", "x +", "x*", "x^", "z", "x y2 ^", "1..2"} {
		if _, err := Parse2(src); err == nil {
			t.Errorf("Parse2(%q): expected an error", src)
		}
	}
}
