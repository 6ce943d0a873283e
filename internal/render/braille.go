package render

import (
	"math"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
)

// Braille draws into a terminal canvas of w x h cells.
type Braille struct {
	projector
	Frame  Frame
	Canvas *Canvas
}

func NewBraille(atlas chart.Atlas, bounds []float64, w, h int) *Braille {
	b := &Braille{
		Frame:  NewFrame(atlas, bounds, float64(2*w-1), float64(4*h-1)),
		Canvas: NewCanvas(w, h),
	}
	b.projector = projector{atlas: atlas, surf: b}
	return b
}

// SetAtlas switches the view; the canvas is cleared.
func (b *Braille) SetAtlas(atlas chart.Atlas, bounds []float64) {
	b.atlas = atlas
	b.Frame = NewFrame(atlas, bounds, b.Frame.Width, b.Frame.Height)
	b.Canvas.Clear()
}

func (b *Braille) Boundary() { b.DrawBoundary(b.Frame) }

func (b *Braille) String() string { return b.Canvas.String() }

func (b *Braille) Render() string { return b.Canvas.Render() }

func (b *Braille) dot(v chart.Point, c portrait.Color) {
	x, y := b.Frame.Map(v)
	if b.Frame.Inside(x, y) {
		b.Canvas.Set(int(math.Round(x)), int(math.Round(y)), c)
	}
}

func (b *Braille) segment(p, q chart.Point, c portrait.Color) {
	ax, ay := b.Frame.Map(p)
	bx, by := b.Frame.Map(q)
	x0, y0, x1, y1, ok := b.Frame.Clip(ax, ay, bx, by)
	if !ok {
		return
	}
	b.Canvas.DrawLine(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)), c)
}
