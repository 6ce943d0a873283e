package render

import (
	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/portrait"
)

// Replay draws everything stored in res: singular points, separatrices,
// blow-up chains, orbits and limit cycles. Breaks recorded in the point
// lists are kept.
func Replay(res *portrait.Results, atlas chart.Atlas, d engine.Drawer) {
	for _, sing := range res.Singularities {
		d.DrawPoint(atlas.ChartToSphere(sing.Chart, chart.Point{sing.X0, sing.Y0}), portrait.ColorSingular)
		if !sing.NotADummy {
			continue
		}
		for _, sep := range sing.Separatrices {
			polyline(d, nil, sep.Points)
		}
		for _, b := range sing.BlowUps {
			polyline(d, nil, b.Points)
		}
	}
	for _, o := range res.Orbits {
		start := o.Start
		d.DrawPoint(start, o.Color)
		polyline(d, &start, o.Points)
		polyline(d, &start, o.Past)
	}
	for _, lc := range res.LimitCycles {
		polyline(d, nil, lc.Points)
	}
}

func polyline(d engine.Drawer, prev *chart.Sphere, pts []portrait.OrbitPoint) {
	for _, p := range pts {
		if p.Connected && prev != nil {
			d.DrawLine(*prev, p.Pos, p.Color)
		} else {
			d.DrawPoint(p.Pos, p.Color)
		}
		pos := p.Pos
		prev = &pos
	}
}
