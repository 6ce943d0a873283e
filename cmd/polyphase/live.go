package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/render"
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

const tickRate = time.Second / 20

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// liveModel drives a session one batch per key press, or one batch per
// tick while running.
type liveModel struct {
	session *engine.Session
	canvas  *render.Braille
	bounds  []float64
	batch   int
	sel     int
	running bool
	added   int
	status  string
}

func newLiveModel(s *engine.Session, cfg *config.Config, bounds []float64) liveModel {
	m := liveModel{
		session: s,
		canvas:  render.NewBraille(s.Atlas, bounds, cfg.Output.Width, cfg.Output.Height),
		bounds:  bounds,
		batch:   cfg.Integration.IntPoints,
		status:  "ready",
	}
	m.canvas.Boundary()
	render.Replay(s.Results, s.Atlas, m.canvas)
	s.SetDrawer(m.canvas)
	if len(s.Results.Singularities) > 0 {
		s.Select(0)
	}
	return m
}

func (m liveModel) Init() tea.Cmd { return tick() }

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			if n := len(m.session.Results.Singularities); n > 0 {
				m.sel = (m.sel + 1) % n
				m.session.Select(m.sel)
				m.status = "selected point " + fmt.Sprint(m.sel)
			}
		case "s":
			m.report(m.session.StartSelected(), "started")
		case "c":
			m.continueSelected()
		case "n":
			_, err := m.session.NextSeparatrix()
			m.report(err, "next separatrix")
		case "b":
			_, err := m.session.NextBlowUp()
			m.report(err, "next blow-up node")
		case "a":
			curves := m.session.PlotAllSeparatrices(m.batch)
			m.status = fmt.Sprintf("plotted %d curves", curves)
		case "+", "=":
			m.scaleEpsilon(2)
		case "-", "_":
			m.scaleEpsilon(0.5)
		case "o", "O":
			dir := 1
			if msg.String() == "O" {
				dir = -1
			}
			n, err := m.session.ContinueCurrentOrbit(dir)
			m.report(err, fmt.Sprintf("orbit +%d points", n))
		case "v":
			v := (m.session.Atlas.View() + 1) % (chart.ViewV2 + 1)
			m.session.SetView(v)
			m.canvas.SetAtlas(m.session.Atlas, m.bounds)
			m.redraw()
			m.status = "view " + v.String()
		case "r":
			m.redraw()
			m.status = "redrawn"
		case "x":
			m.session.ClearPoints()
			m.added = 0
			m.redraw()
			m.status = "curves cleared"
		case "X":
			stats := m.session.ClearResults()
			m.added = 0
			m.sel = 0
			m.redraw()
			m.status = fmt.Sprintf("cleared %d points", stats.Points)
		}
	case tickMsg:
		if m.running {
			m.continueSelected()
		}
		return m, tick()
	}
	return m, nil
}

func (m *liveModel) redraw() {
	m.canvas.Canvas.Clear()
	m.canvas.Boundary()
	render.Replay(m.session.Results, m.session.Atlas, m.canvas)
}

func (m *liveModel) continueSelected() {
	n, err := m.session.ContinueSelected(m.batch)
	if err != nil {
		m.running = false
		m.report(err, "")
		return
	}
	m.added += n
	m.status = fmt.Sprintf("+%d points", n)
	if n == 0 {
		m.running = false
		m.status = "curve exhausted"
	}
}

func (m *liveModel) scaleEpsilon(f float64) {
	sing := m.session.Selected()
	if sing == nil {
		m.status = "no selection"
		return
	}
	eps := m.session.Results.Owner(sing).Epsilon
	if eps <= 0 {
		eps = m.session.Config().Integration.Epsilon
	}
	m.report(m.session.ChangeEpsilon(eps*f), fmt.Sprintf("epsilon %.3g", eps*f))
}

func (m *liveModel) report(err error, ok string) {
	if err != nil {
		m.status = "error: " + err.Error()
		return
	}
	m.status = ok
}

func (m liveModel) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render())

	var s strings.Builder
	s.WriteString(render.Title.Render("POLYPHASE") + "\n")
	if m.running {
		s.WriteString(render.StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(render.StatusPaused.Render("PAUSED") + "\n\n")
	}

	if hist := m.session.StepHistory(); len(hist) > 1 {
		graph := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("step size"))
		s.WriteString(graphStyle.Render(graph) + "\n\n")
	}

	res := m.session.Results
	sel := "none"
	if sing := m.session.Selected(); sing != nil {
		sel = fmt.Sprintf("%d %v %v", m.sel, sing.Kind, sing.Chart)
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("View", m.session.Atlas.View().String())
	row("Selected", sel)
	row("Step", fmt.Sprintf("%.3g", m.session.CurrentStep()))
	row("Hand-offs", fmt.Sprint(m.session.HandOffs()))
	row("Points", fmt.Sprint(m.added))
	row("Singular", fmt.Sprint(len(res.Singularities)))
	row("Orbits", fmt.Sprint(len(res.Orbits)))
	row("Status", m.status)

	s.WriteString(render.KeyHint.Render("\n─────────────────────\nSP:Run C:Continue S:Start A:All\nTAB:Point N:Sep B:Blow-up\nO/shift+O:Orbit V:View +/-:Epsilon\nR:Redraw X:Clear shift+X:Reset Q:Quit"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView) + "\n" + render.Legend()
}
