package export

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestCurveToSVG(t *testing.T) {
	if CurveToSVG([]float64{1}, []float64{1}, 100, 50, "#fff") != "" {
		t.Error("single point should produce no svg")
	}
	if CurveToSVG([]float64{1, 2}, []float64{1}, 100, 50, "#fff") != "" {
		t.Error("mismatched lengths should produce no svg")
	}

	svg := CurveToSVG([]float64{0, 1, 2}, []float64{-1, -0.5, -0.25}, 200, 100, "#00ccff")
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 line segments in %s", svg)
	}
	if !strings.Contains(svg, `stroke="#00ccff"`) {
		t.Error("stroke color missing")
	}
}

func TestParticlesToSVG(t *testing.T) {
	pos := []r3.Vec{{X: -1.5}, {X: 1.5}, {X: 7}}
	charge := []float64{1, -1, 1}
	force := []r3.Vec{{X: 0.03}, {X: -0.03}, {}}
	svg := ParticlesToSVG(pos, charge, force, r3.Vec{X: 10, Y: 10, Z: 10}, 20, 30)

	if strings.Count(svg, "<circle") != 3 {
		t.Errorf("expected 3 particles in %s", svg)
	}
	if strings.Count(svg, `fill="#4488ff"`) != 1 {
		t.Error("expected one negative charge")
	}
	if strings.Count(svg, "<line") != 3 {
		t.Error("expected a force line per particle")
	}
	// x = 7 wraps to -3, i.e. 2 box units from the left edge.
	if !strings.Contains(svg, `cx="40.0"`) {
		t.Errorf("wrapped particle misplaced in %s", svg)
	}
}
