package portrait

import (
	"fmt"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/poly"
)

// SepType classifies a separatrix by the time direction it is traversed in.
type SepType int

const (
	Stable SepType = iota
	Unstable
	CenterStable
	CenterUnstable
)

var sepTypeNames = [...]string{"stable", "unstable", "center-stable", "center-unstable"}

func (t SepType) String() string {
	if t < 0 || int(t) >= len(sepTypeNames) {
		return fmt.Sprintf("SepType(%d)", int(t))
	}
	return sepTypeNames[t]
}

// Swap exchanges stable and unstable, keeping the center flavour.
func (t SepType) Swap() SepType {
	switch t {
	case Stable:
		return Unstable
	case Unstable:
		return Stable
	case CenterStable:
		return CenterUnstable
	case CenterUnstable:
		return CenterStable
	}
	return t
}

// TimeDirection is +1 for separatrices leaving the singular point and -1
// for those entering it.
func (t SepType) TimeDirection() int {
	if t == Unstable || t == CenterUnstable {
		return 1
	}
	return -1
}

type Color int

const (
	ColorStable Color = iota
	ColorUnstable
	ColorCenterStable
	ColorCenterUnstable
	ColorOrbit
	ColorLimitCycle
	ColorSingular
	ColorLineAtInfinity
)

var colorNames = [...]string{
	"stable", "unstable", "center-stable", "center-unstable",
	"orbit", "limit-cycle", "singular", "infinity",
}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// Kind is the singular point classification. The values match the type
// tags of the table format.
type Kind int

const (
	Saddle Kind = iota + 1
	Node
	WeakFocus
	StrongFocus
	SemiElementary
	Degenerate
)

var kindNames = map[Kind]string{
	Saddle:         "saddle",
	Node:           "node",
	WeakFocus:      "weak-focus",
	StrongFocus:    "strong-focus",
	SemiElementary: "semi-elementary",
	Degenerate:     "degenerate",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Stability of nodes, foci and the node part of semi-elementary points.
type Stability int

const (
	StabilityStable   Stability = -1
	StabilityCenter   Stability = 0
	StabilityUnstable Stability = 1
)

func (s Stability) Flip() Stability { return -s }

func (s Stability) String() string {
	switch s {
	case StabilityStable:
		return "stable"
	case StabilityUnstable:
		return "unstable"
	}
	return "center"
}

// Status is the integration state of a separatrix, orbit or blow-up node.
type Status int

const (
	NotStarted Status = iota
	Integrating
	Exhausted
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Integrating:
		return "integrating"
	}
	return "exhausted"
}

// OrbitPoint is one integrated point. Connected is false for a point that
// must not be joined to its predecessor, which marks a chart flip.
type OrbitPoint struct {
	Pos       chart.Sphere
	Color     Color
	Connected bool
	Dir       int
	Type      SepType
}

// Cursor is the resumable integration state carried between batches.
type Cursor struct {
	Status Status
	Chart  chart.Chart
	Last   chart.Point
	Dir    int
	Type   SepType
	Step   float64
	// Flipped is set right after an antipodal flip so that a step
	// straddling the seam does not flip back.
	Flipped bool
	// Dashes breaks the line at the next point.
	Dashes bool
}

// Separatrix is one branch leaving a saddle or semi-elementary point.
// Near the point it is approximated by y = g(x), or x = g(y) when
// FreeY is set, in the eigen coordinates of the point's matrix.
type Separatrix struct {
	Type      SepType
	Direction int
	FreeY     bool
	Taylor    poly.Poly1
	Points    []OrbitPoint
	Cursor    Cursor
}

// Local returns the eigen-coordinate point at Taylor parameter t.
func (s *Separatrix) Local(t float64) (float64, float64) {
	g := s.Taylor.Eval(t)
	if s.FreeY {
		return g, t
	}
	return t, g
}

// Transformation is one elementary blow-up (x, y) -> (x0 + c1·x^d1·y^d2,
// y0 + c2·x^d3·y^d4).
type Transformation struct {
	X0, Y0         float64
	C1, C2         float64
	D1, D2, D3, D4 int
}

func (t Transformation) Apply(x, y float64) (float64, float64) {
	return t.X0 + t.C1*poly.Pow(x, t.D1)*poly.Pow(y, t.D2),
		t.Y0 + t.C2*poly.Pow(x, t.D3)*poly.Pow(y, t.D4)
}

// BlowUpPoint is one separatrix of a desingularized degenerate point. It
// carries the chain mapping blow-up coordinates back to the ambient chart,
// the elementary point (X0, Y0) it leaves from in blow-up coordinates, and
// the local field there.
type BlowUpPoint struct {
	Trans          []Transformation
	X0, Y0         float64
	Matrix         [4]float64
	Field          *VectorField
	Taylor         poly.Poly1
	Type           SepType
	Direction      int
	BlowUpVecField bool
	// Local is the integrated point relative to (X0, Y0) while the
	// blow-up field is in use.
	Local  chart.Point
	Points []OrbitPoint
	Cursor Cursor
}

// MakeTransformations applies the chain left to right.
func (b *BlowUpPoint) MakeTransformations(x, y float64) (float64, float64) {
	for _, t := range b.Trans {
		x, y = t.Apply(x, y)
	}
	return x, y
}

// Ambient maps a point local to (X0, Y0) into the ambient chart.
func (b *BlowUpPoint) Ambient(l chart.Point) chart.Point {
	x, y := b.MakeTransformations(b.X0+l[0], b.Y0+l[1])
	return chart.Point{x, y}
}

// Start returns the local point at Taylor parameter t.
func (b *BlowUpPoint) Start(t float64) chart.Point {
	g := b.Taylor.Eval(t)
	m := b.Matrix
	return chart.Point{m[0]*t + m[1]*g, m[2]*t + m[3]*g}
}

// Singularity is a singular point of any kind. Matrix and Field are used by
// saddles and semi-elementary points. A point with NotADummy false is a
// mirrored copy across the line at infinity; it owns no lists and Owner is
// the index of the point it mirrors.
type Singularity struct {
	Kind      Kind
	Chart     chart.Chart
	X0, Y0    float64
	Stable    Stability
	Matrix    [4]float64
	Field     *VectorField
	Epsilon   float64
	NotADummy bool
	Owner     int

	Separatrices []*Separatrix
	BlowUps      []*BlowUpPoint
}

// ToAmbient maps eigen coordinates of the point into its chart.
func (s *Singularity) ToAmbient(u, v float64) chart.Point {
	m := s.Matrix
	return chart.Point{s.X0 + m[0]*u + m[1]*v, s.Y0 + m[2]*u + m[3]*v}
}

func (s *Singularity) HasSeparatrices() bool {
	return s.Kind == Saddle || s.Kind == SemiElementary
}

// Orbit holds the forward half in Points and the backward half in Past,
// each ordered away from Start.
type Orbit struct {
	Start  chart.Sphere
	Color  Color
	Points []OrbitPoint
	Past   []OrbitPoint

	Forward, Backward Cursor
}

// Len is the number of integrated points in both directions.
func (o *Orbit) Len() int {
	return len(o.Points) + len(o.Past)
}

// LimitCycle is an orbit that closes on itself.
type LimitCycle struct {
	Orbit
}
