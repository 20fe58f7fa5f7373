package optim

import (
	"context"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/pppm"
)

// TuneSpace lists the candidate values for an automatic parameter choice.
// Rcut is held fixed since it belongs to the real-space part.
type TuneSpace struct {
	Grids  []int
	Orders []int
	Kappas []float64
	Rcut   float64
}

func DefaultTuneSpace(rcut float64) TuneSpace {
	return TuneSpace{
		Grids:  []int{8, 16, 32, 64, 128},
		Orders: []int{3, 4, 5, 6, 7},
		Kappas: []float64{0.2, 0.25, 0.3, 0.35, 0.4, 0.5, 0.6, 0.8, 1.0},
		Rcut:   rcut,
	}
}

// Cost is a relative work estimate for one evaluation: five transforms of the
// mesh plus spreading and gathering order³ points per particle.
func Cost(p pppm.Params, natoms int) float64 {
	n := float64(p.Size())
	o := float64(p.Order)
	return 5*n*math.Log2(n) + 2*float64(natoms)*o*o*o
}

// Tune finds the cheapest cubic-grid parameters whose estimated RMS force
// error is at most target. The grid is scaled per axis to the box aspect.
func Tune(ctx context.Context, space TuneSpace, l r3.Vec, natoms int, q2, target float64) (pppm.Params, pppm.ErrorEstimate, error) {
	build := func(m map[string]float64) pppm.Params {
		n := int(m["grid"])
		return pppm.Params{
			Nx:    axisGrid(n, l.X, l),
			Ny:    axisGrid(n, l.Y, l),
			Nz:    axisGrid(n, l.Z, l),
			Order: int(m["order"]),
			Kappa: m["kappa"],
			Rcut:  space.Rcut,
		}
	}

	gs := NewGridSearch(
		[]string{"grid", "order", "kappa"},
		[][]float64{ints(space.Grids), ints(space.Orders), space.Kappas},
	)
	best, _, err := gs.Search(ctx, func(m map[string]float64) (float64, error) {
		p := build(m)
		if err := p.Validate(); err != nil {
			return 0, err
		}
		if est := pppm.EstimateError(p, l, natoms, q2); est.RMS > target {
			return math.Inf(1), nil
		}
		return Cost(p, natoms), nil
	})
	if err != nil {
		return pppm.Params{}, pppm.ErrorEstimate{}, err
	}

	p := build(best)
	return p, pppm.EstimateError(p, l, natoms, q2), nil
}

// axisGrid scales n by the axis length relative to the shortest axis and
// rounds up to a power of two.
func axisGrid(n int, length float64, l r3.Vec) int {
	shortest := math.Min(l.X, math.Min(l.Y, l.Z))
	want := float64(n) * length / shortest
	g := 1
	for float64(g) < want-1e-9 {
		g *= 2
	}
	return g
}

func ints(v []int) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
