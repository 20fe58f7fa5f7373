package pppm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// acons[order][m] are the expansion coefficients of the mesh force error
// for assignment order 1..7.
var acons = [MaxOrder + 1][MaxOrder]float64{
	1: {2.0 / 3.0},
	2: {1.0 / 50.0, 5.0 / 294.0},
	3: {1.0 / 588.0, 7.0 / 1440.0, 21.0 / 3872.0},
	4: {1.0 / 4320.0, 3.0 / 1936.0, 7601.0 / 2271360.0, 143.0 / 28800.0},
	5: {1.0 / 23232.0, 7601.0 / 13628160.0, 143.0 / 69120.0, 517231.0 / 106536960.0, 106640677.0 / 11737571328.0},
	6: {691.0 / 68140800.0, 13.0 / 57600.0, 47021.0 / 35512320.0, 9694607.0 / 2095994880.0, 733191589.0 / 59609088000.0, 326190917.0 / 11700633600.0},
	7: {1.0 / 345600.0, 3617.0 / 35512320.0, 745739.0 / 838397952.0, 56399353.0 / 12773376000.0, 25091609.0 / 1560084480.0, 1755948832039.0 / 36229939200000.0, 4887769399.0 / 37838389248.0},
}

// ErrorEstimate is the a-priori RMS force error of a parameter set.
type ErrorEstimate struct {
	PerAxis    r3.Vec
	LongRange  float64
	ShortRange float64
	RMS        float64
}

func (e ErrorEstimate) TooHigh() bool { return e.RMS > RMSWarnThreshold }

// rmsAxis is the mesh error along one axis with grid spacing h and period prd.
func rmsAxis(p Params, h, prd float64, natoms int, q2 float64) float64 {
	hk := h * p.Kappa
	sum := 0.0
	for m := 0; m < p.Order; m++ {
		sum += acons[p.Order][m] * math.Pow(hk, 2*float64(m))
	}
	return q2 * math.Pow(hk, float64(p.Order)) *
		math.Sqrt(p.Kappa*prd*math.Sqrt(2*math.Pi)*sum/float64(natoms)) / (prd * prd)
}

// EstimateError combines the mesh (long-range) error with the real-space
// truncation error of a cutoff at p.Rcut. p must be valid.
func EstimateError(p Params, l r3.Vec, natoms int, q2 float64) ErrorEstimate {
	if natoms == 0 {
		return ErrorEstimate{}
	}

	h := r3.Vec{X: l.X / float64(p.Nx), Y: l.Y / float64(p.Ny), Z: l.Z / float64(p.Nz)}
	axis := r3.Vec{
		X: rmsAxis(p, h.X, l.X, natoms, q2),
		Y: rmsAxis(p, h.Y, l.Y, natoms, q2),
		Z: rmsAxis(p, h.Z, l.Z, natoms, q2),
	}
	lpr := r3.Norm(axis) / math.Sqrt(3)
	spr := 2 * q2 * math.Exp(-p.Kappa*p.Kappa*p.Rcut*p.Rcut) /
		math.Sqrt(float64(natoms)*p.Rcut*l.X*l.Y*l.Z)

	return ErrorEstimate{
		PerAxis:    axis,
		LongRange:  lpr,
		ShortRange: spr,
		RMS:        math.Max(lpr, spr),
	}
}
