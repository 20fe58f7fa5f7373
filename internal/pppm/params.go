package pppm

import "math"

const (
	// MaxOrder is the highest supported charge-assignment order.
	MaxOrder = 7

	// CoeffCapacity bounds order*(2*order+1), the size of the assignment
	// coefficient table.
	CoeffCapacity = 2048

	MinGridSize = 2
	MaxGridSize = 1024

	// EpsHOC is the relative tolerance that decides how many aliasing images
	// enter the influence function.
	EpsHOC = 1e-7

	// RMSWarnThreshold is the estimated force error above which SetParams
	// logs a warning.
	RMSWarnThreshold = 0.1
)

// Params configures the mesh part of the Ewald sum.
type Params struct {
	Nx, Ny, Nz int
	// Order is the number of grid points per axis each charge is spread to.
	Order int
	// Kappa is the Ewald splitting parameter.
	Kappa float64
	// Rcut is the real-space cutoff; it only enters the error estimate.
	Rcut float64
}

func (p Params) Size() int { return p.Nx * p.Ny * p.Nz }

// Validate reports the first fatal configuration error, checking order
// before grid dimensions. The table capacity check runs before the MaxOrder
// check, so very large orders report ErrOrderCapacity.
func (p Params) Validate() error {
	if p.Order < 1 {
		return &ParamError{Param: "order", Value: float64(p.Order), Wrapped: ErrInvalidParam}
	}
	if p.Order*(2*p.Order+1) > CoeffCapacity {
		return &ParamError{Param: "order", Value: float64(p.Order), Wrapped: ErrOrderCapacity}
	}
	if p.Order > MaxOrder {
		return &ParamError{Param: "order", Value: float64(p.Order), Wrapped: ErrOrderTooHigh}
	}

	dims := []struct {
		name string
		n    int
	}{{"nx", p.Nx}, {"ny", p.Ny}, {"nz", p.Nz}}
	for _, d := range dims {
		if !supportedGridSize(d.n) {
			return &ParamError{Param: d.name, Value: float64(d.n), Wrapped: ErrGridSize}
		}
	}

	if !(p.Kappa > 0) || math.IsInf(p.Kappa, 0) {
		return &ParamError{Param: "kappa", Value: p.Kappa, Wrapped: ErrInvalidParam}
	}
	if !(p.Rcut > 0) || math.IsInf(p.Rcut, 0) {
		return &ParamError{Param: "rcut", Value: p.Rcut, Wrapped: ErrInvalidParam}
	}
	return nil
}

func supportedGridSize(n int) bool {
	return n >= MinGridSize && n <= MaxGridSize && n&(n-1) == 0
}
