package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParticlesToSVG projects particles onto the xy plane of a box with lengths
// l. Positive charges are drawn red, negative blue; forces are drawn as lines
// scaled so the largest spans arrowLen pixels.
func ParticlesToSVG(pos []r3.Vec, charge []float64, force []r3.Vec, l r3.Vec, scale, arrowLen float64) string {
	width := l.X * scale
	height := l.Y * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	maxF := 0.0
	for _, f := range force {
		maxF = math.Max(maxF, math.Hypot(f.X, f.Y))
	}

	dotRadius := scale * 0.15
	for i, p := range pos {
		cx := (wrap(p.X, l.X) + l.X/2) * scale
		cy := height - (wrap(p.Y, l.Y)+l.Y/2)*scale

		fill := "#ff4444"
		if charge[i] < 0 {
			fill = "#4488ff"
		}
		if i < len(force) && maxF > 0 {
			dx := force[i].X / maxF * arrowLen
			dy := -force[i].Y / maxF * arrowLen
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#00ff88" stroke-width="1"/>
`, cx, cy, cx+dx, cy+dy))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func wrap(x, l float64) float64 {
	x -= l * math.Floor(x/l+0.5)
	return x
}

// CurveToSVG draws ys against xs as a polyline.
func CurveToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	if len(xs) < 2 || len(xs) != len(ys) {
		return ""
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
