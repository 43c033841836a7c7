package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 120
	frameRate       = 30
)

type TickMsg time.Time

// Builder creates a fresh layout. The model calls it at start and on
// restart.
type Builder func() (*layout.ForceLayout, error)

// Model steps a layout on every tick and renders it.
type Model struct {
	build        Builder
	layout       *layout.ForceLayout
	links        []graph.Link
	name         string
	threshold    float64
	stepsPerTick int

	canvas  *Canvas
	camera  *Camera
	styles  styles
	running bool
	settled bool

	movements []float64
	first     float64
	err       error
}

// NewModel builds the first layout immediately; a build error is shown in
// the view instead of the canvas.
func NewModel(build Builder, name string, stepsPerTick int) Model {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	m := Model{
		build:        build,
		name:         name,
		stepsPerTick: stepsPerTick,
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(),
		styles:       newStyles(ThemeTerminal),
	}
	m.restart()
	return m
}

// WithTheme returns m rendered in t.
func (m Model) WithTheme(t Theme) Model {
	m.styles = newStyles(t)
	return m
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.settled {
				m.running = !m.running
			}
		case ".":
			if !m.running {
				m.step()
			}
		case "r":
			m.restart()
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "x":
			m.camera.NextX(m.dims())
		case "y":
			m.camera.NextY(m.dims())
		case "0":
			m.camera.Reset()
		}
		m.draw()
	case TickMsg:
		m.camera.Animate()
		if m.running {
			for i := 0; i < m.stepsPerTick && m.running; i++ {
				m.step()
			}
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) restart() {
	m.movements = make([]float64, 0, historyCapacity)
	m.first = 0
	m.settled = false
	m.running = false

	l, err := m.build()
	if err != nil {
		m.layout, m.err = nil, err
		return
	}
	m.layout, m.err = l, nil
	m.links = l.Springs()
	m.threshold = l.Settings().StableThreshold
	m.running = true
	m.draw()
}

func (m Model) dims() int {
	if m.layout == nil {
		return 0
	}
	return m.layout.Settings().Dimensions
}

func (m *Model) step() {
	if m.layout == nil || m.settled {
		return
	}
	movement := m.layout.Step()
	if len(m.movements) == 0 {
		m.first = movement
	}
	if len(m.movements) == historyCapacity {
		copy(m.movements, m.movements[1:])
		m.movements = m.movements[:historyCapacity-1]
	}
	m.movements = append(m.movements, movement)

	if movement < m.threshold {
		m.settled = true
		m.running = false
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.layout == nil {
		return
	}

	snaps := m.layout.Snapshots()
	w, h := m.canvas.Dots()
	vp := fit(snaps, m.camera, w, h)

	at := make(map[graph.NodeID]int, len(snaps))
	for i, s := range snaps {
		at[graph.NodeID(s.ID)] = i
	}
	for _, l := range m.links {
		i, j := at[l.From], at[l.To]
		x0, y0 := vp.project(m.camera, snaps[i].Pos)
		x1, y1 := vp.project(m.camera, snaps[j].Pos)
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, s := range snaps {
		x, y := vp.project(m.camera, s.Pos)
		m.canvas.Blob(x, y)
	}
}

// progress places the last movement between the first one and the
// threshold on a log scale.
func (m Model) progress() float64 {
	if len(m.movements) == 0 {
		return 0
	}
	last := m.movements[len(m.movements)-1]
	if last < m.threshold || m.settled {
		return 1
	}
	if m.first <= 0 || m.threshold <= 0 {
		return 0
	}
	span := math.Log(m.first / m.threshold)
	if span <= 0 {
		return 1
	}
	return math.Log(m.first/last) / span
}

func (m Model) View() string {
	if m.err != nil {
		return m.styles.err.Render("layout failed: "+m.err.Error()) + "\n" + m.styles.help.Render("r retry • q quit") + "\n"
	}

	var status string
	switch {
	case m.settled:
		status = m.styles.settled.Render("SETTLED")
	case m.running:
		status = m.styles.running.Render("RUNNING")
	default:
		status = m.styles.paused.Render("PAUSED")
	}

	s := m.layout.Settings()
	tree := m.layout.Tree()
	movement := 0.0
	if len(m.movements) > 0 {
		movement = m.movements[len(m.movements)-1]
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render("forcelayout "+m.name) + "\n")
	b.WriteString(m.styles.row("status", status) + "\n")
	b.WriteString(m.styles.row("bodies", fmt.Sprintf("%d", m.layout.Len())) + "\n")
	b.WriteString(m.styles.row("springs", fmt.Sprintf("%d", m.layout.SpringCount())) + "\n")
	b.WriteString(m.styles.row("dimensions", fmt.Sprintf("%d", s.Dimensions)) + "\n")
	b.WriteString(m.styles.row("step", fmt.Sprintf("%d", m.layout.Steps())) + "\n")
	b.WriteString(m.styles.row("movement", fmt.Sprintf("%.5f", movement)) + "\n")
	b.WriteString(m.styles.row("threshold", fmt.Sprintf("%.5f", m.threshold)) + "\n")
	b.WriteString(m.styles.row("tree", fmt.Sprintf("%d nodes, depth %d", tree.NodeCount(), tree.Depth())) + "\n")
	b.WriteString(m.styles.row("axes", fmt.Sprintf("x%d, x%d", m.camera.XAxis, m.camera.YAxis)) + "\n")
	b.WriteString(m.styles.row("zoom", fmt.Sprintf("%.2fx", m.camera.Target())) + "\n")
	b.WriteString("\n" + m.styles.progressBar(m.progress(), 28) + "\n")

	if len(m.movements) > 1 {
		chart := asciigraph.Plot(m.movements,
			asciigraph.Height(6),
			asciigraph.Width(30),
			asciigraph.Precision(3),
			asciigraph.Caption("movement"),
		)
		b.WriteString(m.styles.graph.Render(chart) + "\n")
	}

	help := "space pause • . step • r restart • +/- zoom • q quit"
	if s.Dimensions >= 3 {
		help += "\nx/y change axis • 0 reset view"
	}
	b.WriteString(m.styles.help.Render(help))

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.canvas.Render(m.canvas.String()),
		m.styles.stats.Render(b.String()),
	)
}

// Run shows the model full screen until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
