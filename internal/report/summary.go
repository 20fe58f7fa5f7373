// Package report renders run results for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/pppm"
)

type Summary struct {
	Name      string
	Lengths   r3.Vec
	Params    pppm.Params
	Particles int
	Energy    float64
	Virial    float64
	NetCharge float64
	Estimate  pppm.ErrorEstimate
	Metrics   map[string]float64
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

// Render formats s as a bordered panel.
func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(s.Name)) + "\n")
	b.WriteString(row("box", fmt.Sprintf("%g × %g × %g", s.Lengths.X, s.Lengths.Y, s.Lengths.Z)) + "\n")
	b.WriteString(row("grid", fmt.Sprintf("%d × %d × %d", s.Params.Nx, s.Params.Ny, s.Params.Nz)) + "\n")
	b.WriteString(row("order", fmt.Sprintf("%d", s.Params.Order)) + "\n")
	b.WriteString(row("kappa", fmt.Sprintf("%g", s.Params.Kappa)) + "\n")
	b.WriteString(row("particles", fmt.Sprintf("%d", s.Particles)) + "\n")
	b.WriteString(row("energy", fmt.Sprintf("%.10g", s.Energy)) + "\n")
	b.WriteString(row("virial", fmt.Sprintf("%.10g", s.Virial)) + "\n")

	charge := okStyle.Render("neutral")
	if s.NetCharge != 0 {
		charge = warnStyle.Render(fmt.Sprintf("%g", s.NetCharge))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("net charge"), charge) + "\n")
	b.WriteString(s.estimateRow())

	if len(s.Metrics) > 0 {
		names := make([]string, 0, len(s.Metrics))
		for name := range s.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n")
		for _, name := range names {
			b.WriteString("\n" + row(name, fmt.Sprintf("%.6g", s.Metrics[name])))
		}
	}
	return panelStyle.Render(b.String())
}

func (s Summary) estimateRow() string {
	e := s.Estimate
	style := okStyle
	if e.TooHigh() {
		style = warnStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		labelStyle.Render("rms error"),
		style.Render(fmt.Sprintf("%.3e", e.RMS)),
		valueStyle.Render(fmt.Sprintf("  (mesh %.3e, real %.3e)", e.LongRange, e.ShortRange)),
	)
}

// Plot draws ys as an ASCII line chart; it returns "" for fewer than two
// points.
func Plot(ys []float64, caption string) string {
	if len(ys) < 2 {
		return ""
	}
	return graphStyle.Render(asciigraph.Plot(ys,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(caption)))
}
