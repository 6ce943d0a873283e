package engine

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/portrait"
)

func (s *Session) epsilon(sing *portrait.Singularity) float64 {
	if sing.Epsilon > 0 {
		return sing.Epsilon
	}
	return s.cfg.Integration.Epsilon
}

// placeFrom places a point given in the base cursor's chart. Each point
// starts over from base, so the line is broken only where the flip state
// changes with respect to prev.
func (s *Session) placeFrom(base, prev portrait.Cursor, pt chart.Point) (portrait.Cursor, chart.Sphere) {
	cur := base
	sp := s.place(&cur, pt)
	cur.Dashes = cur.Flipped != prev.Flipped
	cur.Step = prev.Step
	return cur, sp
}

// StartSeparatrix discards the points of sep and lays Substeps+1 points
// along its Taylor approximation, from the singular point out to the
// epsilon circle.
func (s *Session) StartSeparatrix(sing *portrait.Singularity, sep *portrait.Separatrix) {
	sing = s.Results.Owner(sing)
	t := findStep(sep.Taylor, s.epsilon(sing)) * float64(sep.Direction)

	base := portrait.Cursor{
		Status: portrait.Integrating,
		Chart:  sing.Chart,
		Dir:    sep.Type.TimeDirection(),
		Type:   sep.Type,
		Step:   s.cfg.Integration.Step,
	}
	prev := base
	sep.Points = nil
	for i := 0; i <= Substeps; i++ {
		u, v := sep.Local(t * float64(i) / Substeps)
		cur, sp := s.placeFrom(base, prev, sing.ToAmbient(u, v))
		s.emit(&sep.Points, &cur, sp, s.sepColor(&cur), lastPos(sep.Points))
		prev = cur
	}
	sep.Cursor = prev
	s.log.Debug("separatrix started", "kind", sing.Kind, "chart", sing.Chart, "type", sep.Type, "t", t)
}

// ContinueSeparatrix appends up to n adaptive steps to sep and returns the
// number of points added.
func (s *Session) ContinueSeparatrix(sep *portrait.Separatrix, n int) int {
	added := 0
	for ; added < n && sep.Cursor.Status == portrait.Integrating; added++ {
		sp, ok := s.Step(&sep.Cursor)
		if !ok {
			s.log.Debug("separatrix exhausted", "chart", sep.Cursor.Chart, "points", len(sep.Points))
			break
		}
		s.emit(&sep.Points, &sep.Cursor, sp, s.sepColor(&sep.Cursor), lastPos(sep.Points))
	}
	return added
}

// StartBlowUp lays the first points of a blow-up separatrix along its
// Taylor approximation in blow-up coordinates.
func (s *Session) StartBlowUp(sing *portrait.Singularity, b *portrait.BlowUpPoint) {
	sing = s.Results.Owner(sing)
	t := findStep(b.Taylor, s.epsilon(sing)) * float64(b.Direction)

	b.Points = nil
	b.BlowUpVecField = true
	b.Cursor = portrait.Cursor{Status: portrait.Integrating, Step: s.cfg.Integration.Step}
	for i := 0; i <= Substeps; i++ {
		b.Local = b.Start(t * float64(i) / Substeps)
		s.emitBlowUp(sing, b)
	}
	s.log.Debug("blow-up started", "chart", sing.Chart, "transformations", len(b.Trans), "type", b.Type)
}

func (s *Session) emitBlowUp(sing *portrait.Singularity, b *portrait.BlowUpPoint) {
	base := portrait.Cursor{
		Status: portrait.Integrating,
		Chart:  sing.Chart,
		Dir:    b.Type.TimeDirection(),
		Type:   b.Type,
	}
	cur, sp := s.placeFrom(base, b.Cursor, b.Ambient(b.Local))
	s.emit(&b.Points, &cur, sp, s.sepColor(&cur), lastPos(b.Points))
	b.Cursor = cur
}

// ContinueBlowUp takes up to n steps. While the point is inside the
// blow-up disk the local field is integrated and mapped back through the
// transformation chain; once the local point reaches norm 1 the chain
// hands off to the chart fields, continuing from the last point.
func (s *Session) ContinueBlowUp(sing *portrait.Singularity, b *portrait.BlowUpPoint, n int) int {
	sing = s.Results.Owner(sing)
	added := 0
	for ; added < n && b.Cursor.Status == portrait.Integrating; added++ {
		if !b.BlowUpVecField {
			sp, ok := s.Step(&b.Cursor)
			if !ok {
				break
			}
			s.emit(&b.Points, &b.Cursor, sp, s.sepColor(&b.Cursor), lastPos(b.Points))
			continue
		}

		var f dynamo.System
		if !b.Field.IsZero() {
			f = b.Field
		}
		local := portrait.Cursor{Dir: b.Type.TimeDirection(), Step: b.Cursor.Step}
		l, ok := s.advance(&local, f, b.Local)
		if !ok {
			b.Cursor.Status = portrait.Exhausted
			break
		}
		b.Local = l
		b.Cursor.Step = local.Step
		s.emitBlowUp(sing, b)

		if math.Hypot(l[0], l[1]) >= 1 {
			b.BlowUpVecField = false
			b.Cursor.Step = s.cfg.Integration.Step
			s.handOffs++
			s.log.Debug("blow-up hand-off", "chart", b.Cursor.Chart, "points", len(b.Points))
		}
	}
	return added
}
