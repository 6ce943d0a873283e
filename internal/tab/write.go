package tab

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

type writer struct {
	w   *bufio.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (w *writer) poly1(p poly.Poly1) {
	w.printf("%d", len(p))
	for _, t := range p {
		w.printf("  %d %s", t.Exp, num(t.Coeff))
	}
	w.printf("\n")
}

func (w *writer) poly2(p poly.Poly2) {
	w.printf("%d", len(p))
	for _, t := range p {
		w.printf("  %d %d %s", t.ExpX, t.ExpY, num(t.Coeff))
	}
	w.printf("\n")
}

func (w *writer) poly3(p poly.Poly3) {
	w.printf("%d", len(p))
	for _, t := range p {
		w.printf("  %d %d %d %s", t.ExpR, t.ExpCos, t.ExpSin, num(t.Coeff))
	}
	w.printf("\n")
}

func (w *writer) field(f *portrait.VectorField) {
	if f == nil {
		f = &portrait.VectorField{}
	}
	w.poly2(f.P)
	w.poly2(f.Q)
}

func (w *writer) matrix(m [4]float64) {
	w.printf("%s %s %s %s\n", num(m[0]), num(m[1]), num(m[2]), num(m[3]))
}

// Write emits res in the format accepted by Read. Duplicated points are
// written once, as a dup flag on their owner.
func Write(out io.Writer, res *portrait.Results) error {
	w := &writer{w: bufio.NewWriter(out)}

	w.printf("# weighted p q\n%d %d %d\n", boolInt(res.Weighted), res.P, res.Q)
	if res.Bounds != nil {
		b := res.Bounds
		w.printf("1 %s %s %s %s\n", num(b[0]), num(b[1]), num(b[2]), num(b[3]))
	} else {
		w.printf("0\n")
	}
	w.printf("%d %d\n", res.DirVecField, boolInt(res.SingInf))

	w.printf("# gcf\n")
	for _, c := range infiniteCharts {
		w.poly2(res.GCF[c])
	}
	w.printf("# vector fields\n")
	for _, c := range infiniteCharts {
		w.field(res.Field(c))
	}
	if res.Weighted {
		f := res.Field(chart.Cylinder)
		if f == nil {
			f = &portrait.VectorField{}
		}
		w.poly3(f.PC)
		w.poly3(f.QC)
	}

	duplicated := make(map[int]bool)
	owners := 0
	for _, s := range res.Singularities {
		if s.NotADummy {
			owners++
		} else {
			duplicated[s.Owner] = true
		}
	}

	w.printf("# singular points\n%d\n", owners)
	for i, s := range res.Singularities {
		if !s.NotADummy {
			continue
		}
		w.singularity(s, duplicated[i])
	}

	if w.err != nil {
		return w.err
	}
	return w.w.Flush()
}

func (w *writer) singularity(s *portrait.Singularity, dup bool) {
	w.printf("%d %v %s %s %d\n", int(s.Kind), s.Chart, num(s.X0), num(s.Y0), boolInt(dup))
	switch s.Kind {
	case portrait.Node, portrait.WeakFocus, portrait.StrongFocus:
		w.printf("%d\n", int(s.Stable))
	case portrait.SemiElementary:
		w.printf("%d\n", int(s.Stable))
		w.elementary(s)
	case portrait.Saddle:
		w.elementary(s)
	case portrait.Degenerate:
		w.printf("%s %d\n", num(s.Epsilon), len(s.BlowUps))
		for _, b := range s.BlowUps {
			w.blowUp(b)
		}
	}
}

func (w *writer) elementary(s *portrait.Singularity) {
	w.printf("%s\n", num(s.Epsilon))
	w.matrix(s.Matrix)
	w.field(s.Field)
	w.printf("%d\n", len(s.Separatrices))
	for _, sep := range s.Separatrices {
		w.printf("%d %d %d ", int(sep.Type), sep.Direction, boolInt(sep.FreeY))
		w.poly1(sep.Taylor)
	}
}

func (w *writer) blowUp(b *portrait.BlowUpPoint) {
	w.printf("%d\n", len(b.Trans))
	for _, t := range b.Trans {
		w.printf("%s %s %s %s %d %d %d %d\n", num(t.X0), num(t.Y0), num(t.C1), num(t.C2), t.D1, t.D2, t.D3, t.D4)
	}
	w.printf("%s %s\n", num(b.X0), num(b.Y0))
	w.matrix(b.Matrix)
	w.field(b.Field)
	w.printf("%d %d ", int(b.Type), b.Direction)
	w.poly1(b.Taylor)
}
