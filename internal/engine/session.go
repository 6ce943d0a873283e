// Package engine integrates separatrices, orbits and blow-up chains of a
// phase portrait across the charts of its compactification.
//
// All state lives in a [Session]. Work is done in caller-sized batches:
// every Continue call takes a bounded number of steps and returns, so a
// host can redraw or cancel between batches. A Session is not safe for
// concurrent use.
package engine

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/dynamo"
	"github.com/san-kum/polyphase/internal/gcf"
	"github.com/san-kum/polyphase/internal/integrators"
	"github.com/san-kum/polyphase/internal/portrait"
	"github.com/san-kum/polyphase/internal/tab"
)

// Drawer receives every point as it is integrated, in sphere coordinates.
type Drawer interface {
	DrawPoint(s chart.Sphere, c portrait.Color)
	DrawLine(a, b chart.Sphere, c portrait.Color)
}

// Substeps is the number of points laid along the Taylor approximation
// inside the epsilon ball.
const Substeps = 100

const historySize = 512

type Session struct {
	Results *portrait.Results
	Atlas   chart.Atlas

	cfg    *config.Config
	ctl    dynamo.StepControl
	integ  dynamo.AdaptiveIntegrator
	log    *slog.Logger
	drawer Drawer

	selected  int
	sepIndex  int
	blowIndex int
	orbit     int

	currentStep float64
	history     []float64
	handOffs    int
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithDrawer(d Drawer) Option {
	return func(s *Session) { s.drawer = d }
}

// New creates a session over res. A nil res starts empty.
func New(res *portrait.Results, cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	view, err := chart.ParseView(cfg.View)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if res == nil {
		res = portrait.NewResults()
	}

	s := &Session{
		Results:  res,
		Atlas:    res.Atlas(view),
		cfg:      cfg,
		ctl:      cfg.StepControl(),
		integ:    integ,
		log:      slog.Default(),
		selected: -1,
		orbit:    -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Config() *config.Config { return s.cfg }

func (s *Session) SetDrawer(d Drawer) { s.drawer = d }

func (s *Session) Logger() *slog.Logger { return s.log }

// LoadTables replaces the results with a parsed table and re-derives the
// stability of points where the GCF is negative. On failure the current
// results and selection are kept and the error is returned.
func (s *Session) LoadTables(r io.Reader) error {
	res, err := tab.Read(r)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	if n := gcf.ApplyGCF(res); n > 0 {
		s.log.Debug("stability flipped by gcf", "points", n)
	}
	s.SetResults(res)
	return nil
}

func (s *Session) SetResults(res *portrait.Results) {
	s.Results = res
	s.Atlas = res.Atlas(s.Atlas.View())
	s.resetCursors()
}

// SetView switches the display view keeping all results.
func (s *Session) SetView(v chart.View) {
	s.Atlas = s.Results.Atlas(v)
}

func (s *Session) resetCursors() {
	s.selected = -1
	s.sepIndex = 0
	s.blowIndex = 0
	s.orbit = -1
}

// ClearResults drops singular points, orbits and limit cycles and resets
// every cursor.
func (s *Session) ClearResults() portrait.ClearStats {
	st := s.Results.Clear()
	s.resetCursors()
	s.history = s.history[:0]
	s.currentStep = 0
	s.handOffs = 0
	s.log.Debug("results cleared", "singularities", st.Singularities, "separatrices", st.Separatrices, "points", st.Points)
	return st
}

// ClearPoints drops every integrated curve but keeps the singular points
// and the selection, so separatrices can be integrated again.
func (s *Session) ClearPoints() {
	s.Results.ClearPoints()
	s.orbit = -1
	s.history = s.history[:0]
	s.currentStep = 0
	s.handOffs = 0
	s.log.Debug("integrated points cleared")
}

// CurrentStep is the size of the last accepted step.
func (s *Session) CurrentStep() float64 { return s.currentStep }

// StepHistory returns the most recent accepted step sizes, oldest first.
func (s *Session) StepHistory() []float64 {
	out := make([]float64, len(s.history))
	copy(out, s.history)
	return out
}

// HandOffs counts blow-up chains that left their blow-up disk.
func (s *Session) HandOffs() int { return s.handOffs }

func (s *Session) recordStep(h float64) {
	s.currentStep = h
	if len(s.history) == historySize {
		copy(s.history, s.history[1:])
		s.history = s.history[:historySize-1]
	}
	s.history = append(s.history, h)
}
