// Package limitcycle scans a transverse section for closed orbits.
//
// Each grid point of the section is followed forward (or, failing that,
// backward) until it returns to the section line. A sign change of the
// displacement between neighbouring grid points brackets a limit cycle,
// which is bisected and then traced for one full period. Cycles are only
// committed to the results once the whole scan has finished.
package limitcycle

import (
	"context"
	"log/slog"
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/portrait"
)

const (
	maxRefine = 200
	maxBisect = 100
)

type Search struct {
	session *engine.Session
	section *Section
	cfg     config.LimitCycleConfig
	hmin    float64
	stop    func() bool
	log     *slog.Logger
}

type Option func(*Search)

// WithStop installs a cancellation predicate. It is polled every
// lc_check_every grid points.
func WithStop(stop func() bool) Option {
	return func(x *Search) { x.stop = stop }
}

// StopOnContext adapts a context to a cancellation predicate.
func StopOnContext(ctx context.Context) func() bool {
	return func() bool { return ctx.Err() != nil }
}

// New prepares a search on the section from a to b using the session's
// limit cycle settings.
func New(s *engine.Session, a, b chart.Sphere, opts ...Option) (*Search, error) {
	sec, err := NewSection(s.Atlas, a, b)
	if err != nil {
		return nil, err
	}
	cfg := s.Config()
	x := &Search{
		session: s,
		section: sec,
		cfg:     cfg.LimitCycle,
		hmin:    cfg.Integration.HMin,
		log:     s.Logger(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

func (x *Search) Section() *Section { return x.section }

// Run scans the section and commits every limit cycle found. On
// cancellation nothing is committed and dynamo.ErrCanceled is returned.
func (x *Search) Run() ([]*portrait.LimitCycle, error) {
	sec := x.section
	n := int(math.Floor(sec.Length()/x.cfg.Grid + 1e-9))
	x.log.Info("scanning for limit cycles", "length", sec.Length(), "grid_points", n+1)

	var (
		roots  []float64
		prevS  float64
		prevD  float64
		prevOK bool
	)
	for k := 0; k <= n; k++ {
		if k%x.cfg.CheckEvery == 0 && x.stop != nil && x.stop() {
			x.log.Info("limit cycle search canceled", "scanned", k)
			return nil, dynamo.ErrCanceled
		}

		s := float64(k) * x.cfg.Grid
		d, ok := x.displacement(s)
		switch {
		case !ok:
		case d == 0:
			roots = append(roots, s)
		case prevOK && prevD != 0 && (d < 0) != (prevD < 0):
			roots = append(roots, x.bisect(prevS, s, prevD))
		}
		prevS, prevD, prevOK = s, d, ok
	}

	cycles := make([]*portrait.LimitCycle, 0, len(roots))
	for _, s := range roots {
		lc, ok := x.trace(s)
		if !ok {
			x.log.Warn("limit cycle did not close", "position", s)
			continue
		}
		cycles = append(cycles, lc)
	}
	res := x.session.Results
	res.LimitCycles = append(res.LimitCycles, cycles...)
	x.log.Info("limit cycle search finished", "found", len(cycles))
	return cycles, nil
}

// displacement is the signed distance along the section from s to the
// point where the orbit through s returns. Backward returns are negated so
// both directions agree on the side an attracting cycle lies.
func (x *Search) displacement(s float64) (float64, bool) {
	start := x.section.At(s)
	if ret, ok := x.orbitReturn(start, 1, nil); ok {
		return x.section.Position(ret) - s, true
	}
	if ret, ok := x.orbitReturn(start, -1, nil); ok {
		return s - x.section.Position(ret), true
	}
	return 0, false
}

func (x *Search) bisect(lo, hi, dlo float64) float64 {
	eps := x.cfg.Tolerance * 1e-3
	for i := 0; i < maxBisect && hi-lo > eps; i++ {
		mid := 0.5 * (lo + hi)
		d, ok := x.displacement(mid)
		if !ok {
			break
		}
		if d == 0 {
			return mid
		}
		if (d < 0) == (dlo < 0) {
			lo, dlo = mid, d
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}

// trace integrates the cycle through section position s for one period.
func (x *Search) trace(s float64) (*portrait.LimitCycle, bool) {
	ses := x.session
	start := x.section.At(s)
	for _, dir := range []int{1, -1} {
		cur := ses.CursorAt(start, dir)
		lc := &portrait.LimitCycle{Orbit: portrait.Orbit{
			Start: ses.Atlas.ChartToSphere(cur.Chart, cur.Last),
			Color: portrait.ColorLimitCycle,
		}}
		ses.Emit(&lc.Points, &cur, lc.Start, portrait.ColorLimitCycle)
		_, ok := x.orbitReturn(start, dir, func(c *portrait.Cursor, sp chart.Sphere) {
			ses.Emit(&lc.Points, c, sp, portrait.ColorLimitCycle)
			lc.Forward = *c
		})
		if ok {
			return lc, true
		}
	}
	return nil, false
}

// orbitReturn follows the orbit through start until it crosses the section
// line for the second time, which is one revolution for an orbit winding
// around a cycle. The crossing is refined onto the line. visit sees every
// accepted point, the refined crossing last.
func (x *Search) orbitReturn(start chart.Sphere, dir int, visit func(*portrait.Cursor, chart.Sphere)) (chart.Sphere, bool) {
	ses := x.session
	cur := ses.CursorAt(start, dir)
	prev := start
	side := 0.0
	crossings := 0

	for i := 0; i < x.cfg.Points; i++ {
		before, from := cur, prev
		sp, ok := ses.Step(&cur)
		if !ok {
			return chart.Sphere{}, false
		}
		aligned := x.align(from, sp)
		v := x.section.Eval(aligned)

		switch {
		case side == 0:
			side = v
		case (v < 0) != (side < 0):
			crossings++
			if crossings == 2 {
				c, hit := x.refine(before, from, side)
				if visit != nil {
					visit(&c, hit)
				}
				return hit, true
			}
			side = v
		}
		if visit != nil {
			visit(&cur, sp)
		}
		prev = aligned
	}
	return chart.Sphere{}, false
}

// refine halves the step from cur, which lies on the side given by side,
// until a step lands within lc_tolerance of the section line or the step
// drops below h_min.
func (x *Search) refine(cur portrait.Cursor, from chart.Sphere, side float64) (portrait.Cursor, chart.Sphere) {
	ses := x.session
	h := ses.CurrentStep()
	best := ses.Atlas.ChartToSphere(cur.Chart, cur.Last)

	for i := 0; i < maxRefine && h >= x.hmin; i++ {
		trial := cur
		sp, ok := ses.StepFixed(&trial, h)
		if !ok {
			break
		}
		aligned := x.align(from, sp)
		v := x.section.Eval(aligned)
		if math.Abs(v) < x.cfg.Tolerance {
			return trial, sp
		}
		if (v < 0) == (side < 0) {
			cur, from, best = trial, aligned, sp
		} else {
			h /= 2
		}
	}
	return cur, best
}

// align picks the antipodal representative of sp closest to ref, so the
// section function does not change sign across the equator.
func (x *Search) align(ref, sp chart.Sphere) chart.Sphere {
	if x.section.weighted || dot(ref, sp) >= 0 {
		return sp
	}
	return scale(sp, -1)
}
