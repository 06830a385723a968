package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/granule/internal/record"
	"github.com/san-kum/granule/internal/sim"
)

const (
	canvasWidth     = 72
	canvasHeight    = 24
	historyCapacity = 240
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(40)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

type TickMsg time.Time

// Model drives a prepared engine a slice of simulated time per frame and
// renders a particle scatter with live statistics.
type Model struct {
	eng       *sim.Engine
	stepsPerF int
	running   bool
	done      bool
	err       error

	keHistory []float64
	glyphs    []string
}

// NewModel wraps a prepared engine. stepsPerFrame controls how much
// simulation happens between frames.
func NewModel(eng *sim.Engine, stepsPerFrame int) Model {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	return Model{
		eng:       eng,
		stepsPerF: stepsPerFrame,
		running:   true,
		keHistory: make([]float64, 0, historyCapacity),
		glyphs:    []string{"o", "*", "+", "x"},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.err = m.eng.Finish()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.done {
			if !m.eng.StepN(m.stepsPerF) {
				m.done = true
				m.err = m.eng.Finish()
			}
			c := m.eng.Ctx()
			m.keHistory = append(m.keHistory, record.KineticEnergy(c))
			if len(m.keHistory) > historyCapacity {
				m.keHistory = m.keHistory[1:]
			}
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	c := m.eng.Ctx()
	canvasView := canvasStyle.Render(m.renderCanvas(c))
	statsView := statsStyle.Render(m.renderStats(c))
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	help := helpStyle.Render("space pause · q quit")
	return main + "\n" + help
}

// renderCanvas projects particle positions onto a character grid.
func (m Model) renderCanvas(c *sim.Ctx) string {
	grid := make([][]string, canvasHeight)
	for y := range grid {
		grid[y] = make([]string, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}
	s := c.Store
	for n := 0; n < s.Size(); n++ {
		if !s.Alive(n) {
			continue
		}
		x := s.X(n)
		px := int(float64(canvasWidth-1) * (x[0] - c.Bounds.Min[0]) / c.Bounds.Wd(0))
		py := 0
		if c.Dim > 1 {
			py = int(float64(canvasHeight-1) * (x[1] - c.Bounds.Min[1]) / c.Bounds.Wd(1))
		}
		if px < 0 || px >= canvasWidth || py < 0 || py >= canvasHeight {
			continue
		}
		g := m.glyphs[s.Type(n)%len(m.glyphs)]
		grid[canvasHeight-1-py][px] = g
	}
	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderStats(c *sim.Ctx) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("granule live"))
	b.WriteString("\n")

	line := func(label string, format string, args ...any) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(fmt.Sprintf(format, args...)))
		b.WriteString("\n")
	}
	line("time", "%.4f", c.Elapsed)
	line("dt", "%.2e", c.DT())
	line("particles", "%d", c.Store.Number())
	line("iterations", "%d", c.Iter)
	if c.Forces != nil {
		line("potential", "%.4g", c.Forces.Potential())
	}
	line("boundary E", "%.4g", c.BoundaryEnergy)

	if len(m.keHistory) > 2 {
		chart := asciigraph.Plot(m.keHistory,
			asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("kinetic energy"))
		b.WriteString(graphStyle.Render(chart))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.done {
		b.WriteString(headerStyle.Render("run complete"))
		b.WriteString("\n")
	}
	return b.String()
}

// RunLive blocks until the user quits the live view.
func RunLive(eng *sim.Engine, stepsPerFrame int) error {
	p := tea.NewProgram(NewModel(eng, stepsPerFrame))
	_, err := p.Run()
	return err
}
