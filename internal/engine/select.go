package engine

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/portrait"
)

// SelectNearestSingularity selects the singular point closest to sp in
// view coordinates. Points whose position is not visible in the current
// view are skipped.
func (s *Session) SelectNearestSingularity(sp chart.Sphere) (*portrait.Singularity, error) {
	target := s.Atlas.SphereToView(sp)
	best, bestDist := -1, math.Inf(1)
	for i, sing := range s.Results.Singularities {
		v := s.Atlas.SphereToView(s.Atlas.ChartToSphere(sing.Chart, chart.Point{sing.X0, sing.Y0}))
		if !s.Atlas.IsValidView(v) {
			continue
		}
		if d := math.Hypot(v[0]-target[0], v[1]-target[1]); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil, dynamo.ErrNoSelection
	}
	s.Select(best)
	return s.Results.Singularities[best], nil
}

// Select makes singular point i current and resets the separatrix and
// blow-up cursors.
func (s *Session) Select(i int) {
	s.selected = i
	s.sepIndex = 0
	s.blowIndex = 0
}

func (s *Session) Selected() *portrait.Singularity {
	if s.selected < 0 || s.selected >= len(s.Results.Singularities) {
		return nil
	}
	return s.Results.Singularities[s.selected]
}

// SelectedSeparatrix returns the current separatrix of the selected point.
func (s *Session) SelectedSeparatrix() (*portrait.Singularity, *portrait.Separatrix, error) {
	sing := s.Selected()
	if sing == nil {
		return nil, nil, dynamo.ErrNoSelection
	}
	seps := s.Results.SeparatricesOf(sing)
	if len(seps) == 0 {
		return sing, nil, dynamo.ErrNoSelection
	}
	return sing, seps[s.sepIndex%len(seps)], nil
}

// SelectedBlowUp returns the current blow-up node of the selected point.
func (s *Session) SelectedBlowUp() (*portrait.Singularity, *portrait.BlowUpPoint, error) {
	sing := s.Selected()
	if sing == nil {
		return nil, nil, dynamo.ErrNoSelection
	}
	nodes := s.Results.BlowUpsOf(sing)
	if len(nodes) == 0 {
		return sing, nil, dynamo.ErrNoSelection
	}
	return sing, nodes[s.blowIndex%len(nodes)], nil
}

// NextSeparatrix moves to the next separatrix of the selected point,
// wrapping to the first, and starts it.
func (s *Session) NextSeparatrix() (*portrait.Separatrix, error) {
	sing := s.Selected()
	if sing == nil {
		return nil, dynamo.ErrNoSelection
	}
	seps := s.Results.SeparatricesOf(sing)
	if len(seps) == 0 {
		return nil, dynamo.ErrNoSelection
	}
	s.sepIndex = (s.sepIndex + 1) % len(seps)
	sep := seps[s.sepIndex]
	s.StartSeparatrix(sing, sep)
	return sep, nil
}

// NextBlowUp moves to the next node of the selected point's blow-up
// chain, wrapping to the first, and starts it.
func (s *Session) NextBlowUp() (*portrait.BlowUpPoint, error) {
	sing := s.Selected()
	if sing == nil {
		return nil, dynamo.ErrNoSelection
	}
	nodes := s.Results.BlowUpsOf(sing)
	if len(nodes) == 0 {
		return nil, dynamo.ErrNoSelection
	}
	s.blowIndex = (s.blowIndex + 1) % len(nodes)
	b := nodes[s.blowIndex]
	s.StartBlowUp(sing, b)
	return b, nil
}

// StartSelected starts the current separatrix or blow-up node of the
// selected point.
func (s *Session) StartSelected() error {
	sing := s.Selected()
	if sing == nil {
		return dynamo.ErrNoSelection
	}
	switch {
	case sing.HasSeparatrices():
		_, sep, err := s.SelectedSeparatrix()
		if err != nil {
			return err
		}
		s.StartSeparatrix(sing, sep)
		return nil
	case sing.Kind == portrait.Degenerate:
		_, b, err := s.SelectedBlowUp()
		if err != nil {
			return err
		}
		s.StartBlowUp(sing, b)
		return nil
	}
	return dynamo.ErrNoSelection
}

// ContinueSelected continues the current separatrix or blow-up node by n
// steps, starting it first if needed.
func (s *Session) ContinueSelected(n int) (int, error) {
	sing := s.Selected()
	if sing == nil {
		return 0, dynamo.ErrNoSelection
	}
	switch {
	case sing.HasSeparatrices():
		_, sep, err := s.SelectedSeparatrix()
		if err != nil {
			return 0, err
		}
		if sep.Cursor.Status == portrait.NotStarted {
			s.StartSeparatrix(sing, sep)
		}
		return s.ContinueSeparatrix(sep, n), nil
	case sing.Kind == portrait.Degenerate:
		_, b, err := s.SelectedBlowUp()
		if err != nil {
			return 0, err
		}
		if b.Cursor.Status == portrait.NotStarted {
			s.StartBlowUp(sing, b)
		}
		return s.ContinueBlowUp(sing, b, n), nil
	}
	return 0, dynamo.ErrNoSelection
}

// ChangeEpsilon sets the start radius of the selected point and restarts
// its current separatrix or blow-up node.
func (s *Session) ChangeEpsilon(eps float64) error {
	sing := s.Selected()
	if sing == nil {
		return dynamo.ErrNoSelection
	}
	if eps <= 0 {
		return dynamo.ErrInvalidConfig
	}
	s.Results.Owner(sing).Epsilon = eps
	return s.StartSelected()
}

// PlotAllSeparatrices starts every separatrix and blow-up node of every
// owning singular point and continues each by n steps. It returns the
// number of curves integrated.
func (s *Session) PlotAllSeparatrices(n int) int {
	count := 0
	for _, sing := range s.Results.Singularities {
		if !sing.NotADummy {
			continue
		}
		for _, sep := range sing.Separatrices {
			s.StartSeparatrix(sing, sep)
			s.ContinueSeparatrix(sep, n)
			count++
		}
		for _, b := range sing.BlowUps {
			s.StartBlowUp(sing, b)
			s.ContinueBlowUp(sing, b, n)
			count++
		}
	}
	s.log.Debug("separatrices plotted", "curves", count, "steps", n)
	return count
}
