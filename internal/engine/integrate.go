package engine

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/gcf"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

// place moves a freshly computed point of cur.Chart into the chart it
// belongs to and returns it on the sphere. A point crossing the line at
// infinity is flipped to the antipodal side when infinity is a line of
// singular points, and clamped onto it otherwise.
func (s *Session) place(cur *portrait.Cursor, pt chart.Point) chart.Sphere {
	res := s.Results
	flipped := false

	switch {
	case !res.Weighted && cur.Chart != chart.R2 && cur.Chart != chart.Cylinder:
		if pt[1] < 0 {
			if res.SingInf && !cur.Flipped {
				from := cur.Chart
				pt = chart.Point{-pt[0], -pt[1]}
				cur.Chart = cur.Chart.Antipodal()
				flipped = true
				s.log.Debug("antipodal flip", "from", from, "to", cur.Chart)
			} else {
				pt[1] = 0
			}
		}
	case res.Weighted && cur.Chart == chart.Cylinder:
		if pt[0] < 0 {
			if lyap, ok := s.Atlas.(*chart.Lyapunov); ok && res.SingInf && !cur.Flipped {
				r, th := lyap.Reflect(pt[0], pt[1])
				pt = chart.Point{r, th}
				flipped = true
				s.log.Debug("cylinder reflection", "theta", th)
			} else {
				pt[0] = 0
			}
		}
	}

	if flipped {
		if res.DirVecField == -1 {
			cur.Dir = -cur.Dir
			cur.Type = cur.Type.Swap()
		}
		cur.Dashes = true
	}
	cur.Flipped = flipped

	sp := s.Atlas.ChartToSphere(cur.Chart, pt)
	if c := s.Atlas.IntegrationChart(sp); c != cur.Chart {
		pt = s.Atlas.SphereToChart(c, sp)
		cur.Chart = c
	}
	cur.Last = pt
	return sp
}

// field returns the vector field orbits are integrated with in chart c.
func (s *Session) field(c chart.Chart) dynamo.System {
	f := s.Results.Field(c)
	if f == nil || f.IsZero() {
		return nil
	}
	return f
}

// advance takes one adaptive step of f from cur.Last. It reports false
// when the orbit cannot move any further.
func (s *Session) advance(cur *portrait.Cursor, f dynamo.System, x chart.Point) (chart.Point, bool) {
	if f == nil {
		return x, false
	}
	if cur.Step <= 0 {
		cur.Step = s.cfg.Integration.Step
	}
	h := cur.Step * float64(cur.Dir)
	next, used, suggested := s.integ.StepAdaptive(f, dynamo.State{x[0], x[1]}, h, s.ctl)
	if !next.IsValid() {
		return x, false
	}
	cur.Step = math.Abs(suggested)
	s.recordStep(math.Abs(used))

	pt := chart.Point{next[0], next[1]}
	if pt == x {
		return x, false
	}
	return pt, true
}

// Step advances an orbit cursor by one adaptive step of its chart field
// and returns the new sphere point.
func (s *Session) Step(cur *portrait.Cursor) (chart.Sphere, bool) {
	pt, ok := s.advance(cur, s.field(cur.Chart), cur.Last)
	if !ok {
		cur.Status = portrait.Exhausted
		return chart.Sphere{}, false
	}
	return s.place(cur, pt), true
}

// StepFixed advances cur by exactly h in its time direction, ignoring
// the error estimate.
func (s *Session) StepFixed(cur *portrait.Cursor, h float64) (chart.Sphere, bool) {
	f := s.field(cur.Chart)
	if f == nil {
		return chart.Sphere{}, false
	}
	next := s.integ.Step(f, dynamo.State{cur.Last[0], cur.Last[1]}, h*float64(cur.Dir))
	if !next.IsValid() {
		return chart.Sphere{}, false
	}
	return s.place(cur, chart.Point{next[0], next[1]}), true
}

// CursorAt starts an orbit cursor at a sphere point.
func (s *Session) CursorAt(sp chart.Sphere, dir int) portrait.Cursor {
	c := s.Atlas.IntegrationChart(sp)
	return portrait.Cursor{
		Status: portrait.Integrating,
		Chart:  c,
		Last:   s.Atlas.SphereToChart(c, sp),
		Dir:    dir,
		Step:   s.cfg.Integration.Step,
	}
}

// emit appends a point to list and forwards it to the drawer. prev is the
// point the new one connects to, if any.
func (s *Session) emit(list *[]portrait.OrbitPoint, cur *portrait.Cursor, sp chart.Sphere, color portrait.Color, prev *chart.Sphere) {
	connected := prev != nil && !cur.Dashes
	cur.Dashes = false
	*list = append(*list, portrait.OrbitPoint{
		Pos:       sp,
		Color:     color,
		Connected: connected,
		Dir:       cur.Dir,
		Type:      cur.Type,
	})
	if s.drawer == nil {
		return
	}
	if connected {
		s.drawer.DrawLine(*prev, sp, color)
	} else {
		s.drawer.DrawPoint(sp, color)
	}
}

func lastPos(list []portrait.OrbitPoint) *chart.Sphere {
	if len(list) == 0 {
		return nil
	}
	p := list[len(list)-1].Pos
	return &p
}

func (s *Session) sepColor(cur *portrait.Cursor) portrait.Color {
	return gcf.ColorAt(s.Results, cur.Chart, cur.Last, cur.Type)
}

// findStep returns t > 0 with t² + g(t)² within one percent of eps².
func findStep(g poly.Poly1, eps float64) float64 {
	lo2 := (eps - eps/100) * (eps - eps/100)
	hi2 := (eps + eps/100) * (eps + eps/100)
	dist := func(t float64) float64 {
		v := g.Eval(t)
		return t*t + v*v
	}

	lo, hi := 0.0, eps
	t := eps
	for i := 0; i < 100; i++ {
		d := dist(t)
		switch {
		case d < lo2:
			lo = t
		case d > hi2:
			hi = t
		default:
			return t
		}
		t = 0.5 * (lo + hi)
	}
	return t
}

// Emit records a point integrated outside the session, such as a limit
// cycle, exactly like the session records its own.
func (s *Session) Emit(list *[]portrait.OrbitPoint, cur *portrait.Cursor, sp chart.Sphere, color portrait.Color) {
	s.emit(list, cur, sp, color, lastPos(*list))
}
