package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/portrait"
)

// SVG collects dots and segments for an SVG document.
type SVG struct {
	projector
	Frame Frame
	elems []string
}

func NewSVG(atlas chart.Atlas, bounds []float64, width, height int) *SVG {
	s := &SVG{Frame: NewFrame(atlas, bounds, float64(width), float64(height))}
	s.projector = projector{atlas: atlas, surf: s}
	return s
}

func (s *SVG) Boundary() { s.DrawBoundary(s.Frame) }

// Len is the number of elements drawn so far.
func (s *SVG) Len() int { return len(s.elems) }

func (s *SVG) dot(v chart.Point, c portrait.Color) {
	x, y := s.Frame.Map(v)
	if !s.Frame.Inside(x, y) {
		return
	}
	s.elems = append(s.elems, fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="1.5" fill="%s"/>`, x, y, Hex(c)))
}

func (s *SVG) segment(p, q chart.Point, c portrait.Color) {
	ax, ay := s.Frame.Map(p)
	bx, by := s.Frame.Map(q)
	x0, y0, x1, y1, ok := s.Frame.Clip(ax, ay, bx, by)
	if !ok {
		return
	}
	s.elems = append(s.elems, fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/>`,
		x0, y0, x1, y1, Hex(c)))
}

// WriteTo writes the complete document.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g stroke-width="1" fill="none">
`, s.Frame.Width, s.Frame.Height, s.Frame.Width, s.Frame.Height, Background)
	for _, e := range s.elems {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	sb.WriteString("</g>\n</svg>\n")
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
