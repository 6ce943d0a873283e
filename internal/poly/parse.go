package poly

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse2 reads a polynomial in x and y written as a sum of monomials,
// such as "-y + x - x^3 - x*y^2" or "2.5x^2y". Like terms are merged.
func Parse2(src string) (Poly2, error) {
	p := &parser{src: strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, src)}
	if p.src == "" {
		return nil, fmt.Errorf("empty polynomial")
	}

	var out Poly2
	for first := true; p.pos < len(p.src); first = false {
		sign := 1.0
		switch p.peek() {
		case '+':
			p.pos++
		case '-':
			sign = -1
			p.pos++
		default:
			if !first {
				return nil, p.errorf("expected + or -")
			}
		}
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		t.Coeff *= sign
		out = append(out, t)
	}
	return out.Normalize(), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("polynomial %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

// term reads factors joined by optional '*' up to the next sign.
func (p *parser) term() (Term2, error) {
	t := Term2{Coeff: 1}
	factors := 0
	for {
		c := p.peek()
		switch {
		case c == '*' && factors > 0:
			p.pos++
			continue
		case isDigit(c) || c == '.':
			v, err := p.number()
			if err != nil {
				return t, err
			}
			t.Coeff *= v
		case c == 'x' || c == 'y':
			p.pos++
			e, err := p.exponent()
			if err != nil {
				return t, err
			}
			if c == 'x' {
				t.ExpX += e
			} else {
				t.ExpY += e
			}
		default:
			if factors == 0 {
				return t, p.errorf("expected a number, x or y")
			}
			if p.src[p.pos-1] == '*' {
				return t, p.errorf("dangling *")
			}
			return t, nil
		}
		factors++
	}
}

func (p *parser) number() (float64, error) {
	start := p.pos
	for isDigit(p.peek()) || p.peek() == '.' {
		p.pos++
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return v, nil
}

func (p *parser) exponent() (int, error) {
	if p.peek() != '^' {
		return 1, nil
	}
	p.pos++
	start := p.pos
	for isDigit(p.peek()) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("missing exponent")
	}
	return strconv.Atoi(p.src[start:p.pos])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
