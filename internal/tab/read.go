// Package tab reads and writes the table files describing a vector field:
// its compactification, GCF and fields per chart, and its singular points.
//
// The format is whitespace separated; '#' starts a comment running to the
// end of the line. In order:
//
//	weighted p q
//	has_bounds [x0 y0 x1 y1]
//	dir_vec_field singinf
//	GCF of R2 U1 U2 V1 V2                   (poly2 each)
//	field of R2 U1 U2 V1 V2                 (poly2 poly2 each)
//	field of the cylinder when weighted     (poly3 poly3)
//	n, then n singular points
//
// A poly1 is a count followed by (exp coeff) pairs, a poly2 by
// (exp_x exp_y coeff) and a poly3 by (exp_r exp_cos exp_sin coeff).
// A singular point starts with "tag chart x0 y0 dup" where tag is 1 saddle,
// 2 node, 3 weak focus, 4 strong focus, 5 semi-elementary, 6 degenerate,
// and dup asks for a mirrored copy across the line at infinity.
package tab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/poly"
	"github.com/san-kum/polyphase/internal/portrait"
)

var infiniteCharts = []chart.Chart{chart.R2, chart.U1, chart.U2, chart.V1, chart.V2}

type reader struct {
	sc      *bufio.Scanner
	tokens  []string
	section string
	sing    int
}

func (r *reader) fail(field string, err error) error {
	return &dynamo.ParseError{Section: r.section, Singularity: r.sing, Field: field, Wrapped: err}
}

func (r *reader) next(field string) (string, error) {
	for len(r.tokens) == 0 {
		if !r.sc.Scan() {
			if err := r.sc.Err(); err != nil {
				return "", r.fail(field, err)
			}
			return "", r.fail(field, dynamo.ErrShortRead)
		}
		line := r.sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		r.tokens = strings.Fields(line)
	}
	tok := r.tokens[0]
	r.tokens = r.tokens[1:]
	return tok, nil
}

func (r *reader) int(field string) (int, error) {
	tok, err := r.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, r.fail(field, fmt.Errorf("%w: %q is not an integer", dynamo.ErrBadRecord, tok))
	}
	return v, nil
}

func (r *reader) count(field string) (int, error) {
	n, err := r.int(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, r.fail(field, fmt.Errorf("%w: negative count %d", dynamo.ErrBadRecord, n))
	}
	return n, nil
}

func (r *reader) float(field string) (float64, error) {
	tok, err := r.next(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, r.fail(field, fmt.Errorf("%w: %q is not a number", dynamo.ErrBadRecord, tok))
	}
	return v, nil
}

func (r *reader) floats(field string, out []float64) error {
	for i := range out {
		v, err := r.float(fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

func (r *reader) flag(field string) (bool, error) {
	v, err := r.int(field)
	if err != nil {
		return false, err
	}
	if v != 0 && v != 1 {
		return false, r.fail(field, fmt.Errorf("%w: flag must be 0 or 1, got %d", dynamo.ErrBadRecord, v))
	}
	return v == 1, nil
}

func (r *reader) poly1(field string) (poly.Poly1, error) {
	n, err := r.count(field + ".terms")
	if err != nil {
		return nil, err
	}
	p := make(poly.Poly1, n)
	for i := range p {
		if p[i].Exp, err = r.int(field + ".exp"); err != nil {
			return nil, err
		}
		if p[i].Coeff, err = r.float(field + ".coeff"); err != nil {
			return nil, err
		}
	}
	return p.Normalize(), nil
}

func (r *reader) poly2(field string) (poly.Poly2, error) {
	n, err := r.count(field + ".terms")
	if err != nil {
		return nil, err
	}
	p := make(poly.Poly2, n)
	for i := range p {
		if p[i].ExpX, err = r.int(field + ".exp_x"); err != nil {
			return nil, err
		}
		if p[i].ExpY, err = r.int(field + ".exp_y"); err != nil {
			return nil, err
		}
		if p[i].Coeff, err = r.float(field + ".coeff"); err != nil {
			return nil, err
		}
	}
	return p.Normalize(), nil
}

func (r *reader) poly3(field string) (poly.Poly3, error) {
	n, err := r.count(field + ".terms")
	if err != nil {
		return nil, err
	}
	p := make(poly.Poly3, n)
	for i := range p {
		if p[i].ExpR, err = r.int(field + ".exp_r"); err != nil {
			return nil, err
		}
		if p[i].ExpCos, err = r.int(field + ".exp_cos"); err != nil {
			return nil, err
		}
		if p[i].ExpSin, err = r.int(field + ".exp_sin"); err != nil {
			return nil, err
		}
		if p[i].Coeff, err = r.float(field + ".coeff"); err != nil {
			return nil, err
		}
	}
	return p.Normalize(), nil
}

func (r *reader) field(c chart.Chart, name string) (*portrait.VectorField, error) {
	p, err := r.poly2(name + ".P")
	if err != nil {
		return nil, err
	}
	q, err := r.poly2(name + ".Q")
	if err != nil {
		return nil, err
	}
	return portrait.NewVectorField(c, p, q), nil
}

func (r *reader) matrix(field string) ([4]float64, error) {
	var m [4]float64
	err := r.floats(field, m[:])
	return m, err
}

func (r *reader) sepType(field string) (portrait.SepType, error) {
	v, err := r.int(field)
	if err != nil {
		return 0, err
	}
	if v < int(portrait.Stable) || v > int(portrait.CenterUnstable) {
		return 0, r.fail(field, fmt.Errorf("%w: separatrix type %d", dynamo.ErrBadRecord, v))
	}
	return portrait.SepType(v), nil
}

func (r *reader) direction(field string) (int, error) {
	v, err := r.int(field)
	if err != nil {
		return 0, err
	}
	if v != 1 && v != -1 {
		return 0, r.fail(field, fmt.Errorf("%w: direction must be 1 or -1, got %d", dynamo.ErrBadRecord, v))
	}
	return v, nil
}

func (r *reader) stability(field string) (portrait.Stability, error) {
	v, err := r.int(field)
	if err != nil {
		return 0, err
	}
	if v < -1 || v > 1 {
		return 0, r.fail(field, fmt.Errorf("%w: stability %d", dynamo.ErrBadRecord, v))
	}
	return portrait.Stability(v), nil
}

// Read parses a complete table. Nothing is returned unless every record
// was read.
func Read(in io.Reader) (*portrait.Results, error) {
	r := &reader{sc: bufio.NewScanner(in), section: "header", sing: -1}
	r.sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	res := portrait.NewResults()

	if err := r.header(res); err != nil {
		return nil, err
	}
	if err := r.fields(res); err != nil {
		return nil, err
	}
	if err := r.singularities(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *reader) header(res *portrait.Results) error {
	var err error
	if res.Weighted, err = r.flag("weighted"); err != nil {
		return err
	}
	if res.P, err = r.int("p"); err != nil {
		return err
	}
	if res.Q, err = r.int("q"); err != nil {
		return err
	}
	if res.P < 1 || res.Q < 1 {
		return r.fail("weights", fmt.Errorf("%w: weights must be positive, got (%d, %d)", dynamo.ErrBadRecord, res.P, res.Q))
	}

	hasBounds, err := r.flag("has_bounds")
	if err != nil {
		return err
	}
	if hasBounds {
		var b portrait.Bounds
		if err := r.floats("bounds", b[:]); err != nil {
			return err
		}
		res.Bounds = &b
	}

	if res.DirVecField, err = r.int("dir_vec_field"); err != nil {
		return err
	}
	if res.DirVecField != 1 && res.DirVecField != -1 {
		return r.fail("dir_vec_field", fmt.Errorf("%w: must be 1 or -1, got %d", dynamo.ErrBadRecord, res.DirVecField))
	}
	res.SingInf, err = r.flag("singinf")
	return err
}

func (r *reader) fields(res *portrait.Results) error {
	r.section = "gcf"
	for _, c := range infiniteCharts {
		g, err := r.poly2(c.String())
		if err != nil {
			return err
		}
		res.GCF[c] = g
	}

	r.section = "vector field"
	for _, c := range infiniteCharts {
		f, err := r.field(c, c.String())
		if err != nil {
			return err
		}
		res.SetField(f)
	}
	if res.Weighted {
		p, err := r.poly3("C.P")
		if err != nil {
			return err
		}
		q, err := r.poly3("C.Q")
		if err != nil {
			return err
		}
		res.SetField(portrait.NewCylinderField(p, q))
	}
	return nil
}

func (r *reader) singularities(res *portrait.Results) error {
	r.section = "singular points"
	n, err := r.count("count")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		r.sing = i
		s, dup, err := r.singularity()
		if err != nil {
			return err
		}
		idx := res.AddSingularity(s)
		if dup {
			if _, err := res.Duplicate(idx); err != nil {
				return r.fail("dup", fmt.Errorf("%w: %v", dynamo.ErrBadRecord, err))
			}
		}
	}
	return nil
}

func (r *reader) singularity() (*portrait.Singularity, bool, error) {
	tag, err := r.int("tag")
	if err != nil {
		return nil, false, err
	}
	kind := portrait.Kind(tag)
	if !kind.Valid() {
		return nil, false, r.fail("tag", fmt.Errorf("%w: unknown type tag %d", dynamo.ErrBadRecord, tag))
	}

	name, err := r.next("chart")
	if err != nil {
		return nil, false, err
	}
	c, err := chart.ParseChart(name)
	if err != nil || c == chart.Cylinder {
		return nil, false, r.fail("chart", fmt.Errorf("%w: chart %q", dynamo.ErrBadRecord, name))
	}

	s := &portrait.Singularity{Kind: kind, Chart: c}
	if s.X0, err = r.float("x0"); err != nil {
		return nil, false, err
	}
	if s.Y0, err = r.float("y0"); err != nil {
		return nil, false, err
	}
	dup, err := r.flag("dup")
	if err != nil {
		return nil, false, err
	}

	switch kind {
	case portrait.Node, portrait.WeakFocus, portrait.StrongFocus:
		s.Stable, err = r.stability("stable")
	case portrait.Saddle:
		err = r.elementary(s)
	case portrait.SemiElementary:
		if s.Stable, err = r.stability("stable"); err == nil {
			err = r.elementary(s)
		}
	case portrait.Degenerate:
		err = r.degenerate(s)
	}
	if err != nil {
		return nil, false, err
	}
	return s, dup, nil
}

func (r *reader) elementary(s *portrait.Singularity) error {
	var err error
	if s.Epsilon, err = r.float("epsilon"); err != nil {
		return err
	}
	if s.Matrix, err = r.matrix("matrix"); err != nil {
		return err
	}
	if s.Field, err = r.field(s.Chart, "local"); err != nil {
		return err
	}

	n, err := r.count("separatrices")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		sep := &portrait.Separatrix{}
		field := fmt.Sprintf("separatrix[%d]", i)
		if sep.Type, err = r.sepType(field + ".type"); err != nil {
			return err
		}
		if sep.Direction, err = r.direction(field + ".direction"); err != nil {
			return err
		}
		if sep.FreeY, err = r.flag(field + ".free_y"); err != nil {
			return err
		}
		if sep.Taylor, err = r.poly1(field + ".taylor"); err != nil {
			return err
		}
		s.Separatrices = append(s.Separatrices, sep)
	}
	return nil
}

func (r *reader) degenerate(s *portrait.Singularity) error {
	var err error
	if s.Epsilon, err = r.float("epsilon"); err != nil {
		return err
	}
	n, err := r.count("blow_ups")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		b, err := r.blowUp(fmt.Sprintf("blow_up[%d]", i), s.Chart)
		if err != nil {
			return err
		}
		s.BlowUps = append(s.BlowUps, b)
	}
	return nil
}

func (r *reader) blowUp(field string, c chart.Chart) (*portrait.BlowUpPoint, error) {
	n, err := r.count(field + ".transformations")
	if err != nil {
		return nil, err
	}
	b := &portrait.BlowUpPoint{BlowUpVecField: true}
	for i := 0; i < n; i++ {
		var t portrait.Transformation
		f := fmt.Sprintf("%s.trans[%d]", field, i)
		var v [4]float64
		if err := r.floats(f, v[:]); err != nil {
			return nil, err
		}
		t.X0, t.Y0, t.C1, t.C2 = v[0], v[1], v[2], v[3]
		for _, d := range []*int{&t.D1, &t.D2, &t.D3, &t.D4} {
			if *d, err = r.int(f + ".exp"); err != nil {
				return nil, err
			}
		}
		b.Trans = append(b.Trans, t)
	}
	if b.X0, err = r.float(field + ".x0"); err != nil {
		return nil, err
	}
	if b.Y0, err = r.float(field + ".y0"); err != nil {
		return nil, err
	}
	if b.Matrix, err = r.matrix(field + ".matrix"); err != nil {
		return nil, err
	}
	if b.Field, err = r.field(c, field+".local"); err != nil {
		return nil, err
	}
	if b.Type, err = r.sepType(field + ".type"); err != nil {
		return nil, err
	}
	if b.Direction, err = r.direction(field + ".direction"); err != nil {
		return nil, err
	}
	if b.Taylor, err = r.poly1(field + ".taylor"); err != nil {
		return nil, err
	}
	return b, nil
}

// IsShortRead reports whether err comes from a truncated table.
func IsShortRead(err error) bool {
	return errors.Is(err, dynamo.ErrShortRead)
}
