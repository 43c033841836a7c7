package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a color scheme for the live view.
type Theme struct {
	Name    string
	Canvas  lipgloss.Color
	Header  lipgloss.Color
	Label   lipgloss.Color
	Value   lipgloss.Color
	Graph   lipgloss.Color
	Muted   lipgloss.Color
	Running lipgloss.Color
	Paused  lipgloss.Color
	Settled lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeTerminal = Theme{
		Name:    "terminal",
		Canvas:  lipgloss.Color("#00ff88"),
		Header:  lipgloss.Color("86"),
		Label:   lipgloss.Color("245"),
		Value:   lipgloss.Color("252"),
		Graph:   lipgloss.Color("49"),
		Muted:   lipgloss.Color("240"),
		Running: lipgloss.Color("#00ff88"),
		Paused:  lipgloss.Color("#ffaa00"),
		Settled: lipgloss.Color("#00ccff"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Canvas:  lipgloss.Color("#00ff00"),
		Header:  lipgloss.Color("#88ff88"),
		Label:   lipgloss.Color("#00cc00"),
		Value:   lipgloss.Color("#00ff00"),
		Graph:   lipgloss.Color("#00cc00"),
		Muted:   lipgloss.Color("#005500"),
		Running: lipgloss.Color("#88ff88"),
		Paused:  lipgloss.Color("#ffff00"),
		Settled: lipgloss.Color("#00ff00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Canvas:  lipgloss.Color("#ffffff"),
		Header:  lipgloss.Color("#ffffff"),
		Label:   lipgloss.Color("#888888"),
		Value:   lipgloss.Color("#cccccc"),
		Graph:   lipgloss.Color("#0088ff"),
		Muted:   lipgloss.Color("#888888"),
		Running: lipgloss.Color("#00ff00"),
		Paused:  lipgloss.Color("#ffaa00"),
		Settled: lipgloss.Color("#0088ff"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Canvas:  lipgloss.Color("#00a8cc"),
		Header:  lipgloss.Color("#ffd700"),
		Label:   lipgloss.Color("#4488aa"),
		Value:   lipgloss.Color("#e0f0ff"),
		Graph:   lipgloss.Color("#0077be"),
		Muted:   lipgloss.Color("#4488aa"),
		Running: lipgloss.Color("#00ff88"),
		Paused:  lipgloss.Color("#ffcc00"),
		Settled: lipgloss.Color("#00a8cc"),
		Error:   lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{ThemeTerminal, ThemeRetro, ThemeMinimal, ThemeOcean}
)

// ThemeByName looks a theme up by name.
func ThemeByName(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	canvas, stats, header, label, value, graph, help, err lipgloss.Style
	running, paused, settled                              lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Canvas),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(44),
		header:  lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Label).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Value),
		graph:   lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		err:     lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
		paused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
		settled: lipgloss.NewStyle().Bold(true).Foreground(t.Settled),
	}
}

func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value)
}

// progressBar renders percent, clamped to [0, 1], as a bar of width cells.
func (s styles) progressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return s.settled.Render(strings.Repeat("█", filled)) + strings.Repeat("░", width-filled)
}
