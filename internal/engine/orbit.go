package engine

import (
	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/portrait"
)

// StartOrbit begins an orbit through sp and makes it current.
func (s *Session) StartOrbit(sp chart.Sphere) *portrait.Orbit {
	o := &portrait.Orbit{
		Start:    sp,
		Color:    portrait.ColorOrbit,
		Forward:  s.CursorAt(sp, 1),
		Backward: s.CursorAt(sp, -1),
	}
	s.Results.Orbits = append(s.Results.Orbits, o)
	s.orbit = len(s.Results.Orbits) - 1
	if s.drawer != nil {
		s.drawer.DrawPoint(sp, o.Color)
	}
	return o
}

// CurrentOrbit returns the orbit last started, or nil.
func (s *Session) CurrentOrbit() *portrait.Orbit {
	if s.orbit < 0 || s.orbit >= len(s.Results.Orbits) {
		return nil
	}
	return s.Results.Orbits[s.orbit]
}

// ContinueOrbit integrates o forward (dir > 0) or backward (dir < 0) for
// up to n steps and returns the number of points added.
func (s *Session) ContinueOrbit(o *portrait.Orbit, dir, n int) int {
	cur, list := &o.Forward, &o.Points
	if dir < 0 {
		cur, list = &o.Backward, &o.Past
	}
	added := 0
	for ; added < n && cur.Status == portrait.Integrating; added++ {
		sp, ok := s.Step(cur)
		if !ok {
			break
		}
		prev := lastPos(*list)
		if prev == nil {
			prev = &o.Start
		}
		s.emit(list, cur, sp, o.Color, prev)
	}
	return added
}

// ContinueCurrentOrbit continues the current orbit by one batch.
func (s *Session) ContinueCurrentOrbit(dir int) (int, error) {
	o := s.CurrentOrbit()
	if o == nil {
		return 0, dynamo.ErrNoSelection
	}
	return s.ContinueOrbit(o, dir, s.cfg.Integration.IntPoints), nil
}

// DeleteLastOrbit removes the most recently started orbit.
func (s *Session) DeleteLastOrbit() error {
	n := len(s.Results.Orbits)
	if n == 0 {
		return dynamo.ErrNoSelection
	}
	s.Results.Orbits[n-1] = nil
	s.Results.Orbits = s.Results.Orbits[:n-1]
	s.orbit = len(s.Results.Orbits) - 1
	return nil
}
