package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/polyphase/internal/portrait"
)

const Background = "#0a0a0a"

var palette = map[portrait.Color]string{
	portrait.ColorStable:         "#3377ff",
	portrait.ColorUnstable:       "#ff4444",
	portrait.ColorCenterStable:   "#00cccc",
	portrait.ColorCenterUnstable: "#ff66cc",
	portrait.ColorOrbit:          "#ffcc00",
	portrait.ColorLimitCycle:     "#00ff88",
	portrait.ColorSingular:       "#ffffff",
	portrait.ColorLineAtInfinity: "#666688",
}

// Hex returns the RGB color c is drawn with.
func Hex(c portrait.Color) string {
	if h, ok := palette[c]; ok {
		return h
	}
	return "#cccccc"
}

func StyleOf(c portrait.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c)))
}

// Terminal UI styles.
var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466"))

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

// Legend lists the colors of a portrait.
func Legend() string {
	items := []portrait.Color{
		portrait.ColorStable, portrait.ColorUnstable,
		portrait.ColorCenterStable, portrait.ColorCenterUnstable,
		portrait.ColorOrbit, portrait.ColorLimitCycle,
	}
	var out string
	for i, c := range items {
		if i > 0 {
			out += "  "
		}
		out += StyleOf(c).Render("●") + " " + Subtle.Render(c.String())
	}
	return out
}
