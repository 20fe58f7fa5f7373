package report

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SweepPoint is the outcome of one step of a box sweep.
type SweepPoint struct {
	Scale   float64
	Volume  float64
	Energy  float64
	Virial  float64
	Rebuilt bool
}

// StepFunc evaluates sweep step i.
type StepFunc func(i int) (SweepPoint, error)

type stepMsg struct {
	index int
	point SweepPoint
	err   error
}

// SweepModel runs a sweep one step per update and shows the energy curve
// while it progresses.
type SweepModel struct {
	title  string
	steps  int
	step   StepFunc
	points []SweepPoint
	err    error
	done   bool
}

func NewSweepModel(title string, steps int, step StepFunc) SweepModel {
	return SweepModel{
		title:  title,
		steps:  steps,
		step:   step,
		points: make([]SweepPoint, 0, steps),
	}
}

func (m SweepModel) run(i int) tea.Cmd {
	return func() tea.Msg {
		p, err := m.step(i)
		return stepMsg{index: i, point: p, err: err}
	}
}

func (m SweepModel) Init() tea.Cmd {
	if m.steps <= 0 {
		return tea.Quit
	}
	return m.run(0)
}

func (m SweepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case stepMsg:
		if msg.err != nil {
			m.err = msg.err
			m.done = true
			return m, tea.Quit
		}
		m.points = append(m.points, msg.point)
		if next := msg.index + 1; next < m.steps {
			return m, m.run(next)
		}
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m SweepModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(fmt.Sprintf("%s\n", progressBar(len(m.points), m.steps, 40)))

	if n := len(m.points); n > 0 {
		last := m.points[n-1]
		s.WriteString(row("scale", fmt.Sprintf("%.4f", last.Scale)) + "\n")
		s.WriteString(row("volume", fmt.Sprintf("%.4g", last.Volume)) + "\n")
		s.WriteString(row("energy", fmt.Sprintf("%.8g", last.Energy)) + "\n")
		s.WriteString(row("virial", fmt.Sprintf("%.8g", last.Virial)) + "\n")
	}
	if chart := Plot(m.Energies(), "energy vs step"); chart != "" {
		s.WriteString(chart + "\n")
	}
	if m.err != nil {
		s.WriteString(warnStyle.Render("error: "+m.err.Error()) + "\n")
	}
	if !m.done {
		s.WriteString(helpStyle.Render("q: stop"))
	}
	return s.String()
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	filled := done * width / total
	return fmt.Sprintf("[%s%s] %d/%d",
		okStyle.Render(strings.Repeat("█", filled)),
		strings.Repeat("░", width-filled),
		done, total)
}

func (m SweepModel) Points() []SweepPoint { return m.points }
func (m SweepModel) Err() error           { return m.err }
func (m SweepModel) Done() bool           { return m.done }

func (m SweepModel) Energies() []float64 {
	ys := make([]float64, len(m.points))
	for i, p := range m.points {
		ys[i] = p.Energy
	}
	return ys
}

// RenderSweep formats finished sweep points as a table followed by the
// energy curve.
func RenderSweep(points []SweepPoint) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%-8s %-12s %-16s %-16s %s\n", "SCALE", "VOLUME", "ENERGY", "VIRIAL", "REBUILT"))
	energies := make([]float64, len(points))
	for i, p := range points {
		energies[i] = p.Energy
		s.WriteString(fmt.Sprintf("%-8.4f %-12.4g %-16.8g %-16.8g %v\n", p.Scale, p.Volume, p.Energy, p.Virial, p.Rebuilt))
	}
	if chart := Plot(energies, "energy vs step"); chart != "" {
		s.WriteString(chart + "\n")
	}
	return s.String()
}
