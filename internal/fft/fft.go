// Package fft provides the three-dimensional discrete Fourier transform used
// by the mesh solver.
//
// Grids are flat []complex128 slices of length Nx*Ny*Nz with the z index
// varying fastest: element (ix, iy, iz) lives at iz + Nz*(iy + Ny*ix).
// Neither direction is normalized; a Forward followed by an Inverse scales
// the data by Nx*Ny*Nz.
package fft

import (
	"fmt"
	"math/cmplx"

	dsp "github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/pppm/internal/compute"
)

// Transform is an in-place 3D transform over a fixed grid shape.
type Transform interface {
	Forward(data []complex128)
	Inverse(data []complex128)
}

// Factory builds a Transform for an nx×ny×nz grid.
type Factory func(nx, ny, nz int) Transform

// Plan transforms one axis at a time using one-dimensional FFTs.
type Plan struct {
	nx, ny, nz int
	backend    compute.Backend
}

func NewPlan(nx, ny, nz int) *Plan {
	return &Plan{nx: nx, ny: ny, nz: nz, backend: compute.Default()}
}

// NewFactory returns a Factory whose plans run on backend.
func NewFactory(backend compute.Backend) Factory {
	return func(nx, ny, nz int) Transform {
		return &Plan{nx: nx, ny: ny, nz: nz, backend: backend}
	}
}

func (p *Plan) Len() int { return p.nx * p.ny * p.nz }

// Forward computes X[k] = sum_j x[j] exp(-2πi j·k/N) per axis.
func (p *Plan) Forward(data []complex128) {
	p.check(data)
	p.apply(data, dsp.FFT)
}

// Inverse computes x[j] = sum_k X[k] exp(+2πi j·k/N) per axis, without the
// 1/N factor.
func (p *Plan) Inverse(data []complex128) {
	p.check(data)
	p.apply(data, inverse)
}

// inverse is conj(FFT(conj(x))), which skips the normalization dsp.IFFT
// applies.
func inverse(x []complex128) []complex128 {
	c := make([]complex128, len(x))
	for i, v := range x {
		c[i] = cmplx.Conj(v)
	}
	c = dsp.FFT(c)
	for i, v := range c {
		c[i] = cmplx.Conj(v)
	}
	return c
}

func (p *Plan) check(data []complex128) {
	if len(data) != p.Len() {
		panic(fmt.Sprintf("fft: grid has %d elements, plan expects %dx%dx%d", len(data), p.nx, p.ny, p.nz))
	}
}

func (p *Plan) apply(data []complex128, fn func([]complex128) []complex128) {
	nx, ny, nz := p.nx, p.ny, p.nz

	// z lines are contiguous
	p.backend.For(nx*ny, 16, func(_, start, end int) {
		for line := start; line < end; line++ {
			base := line * nz
			copy(data[base:base+nz], fn(data[base:base+nz]))
		}
	})

	// y lines, one per (ix, iz)
	p.backend.For(nx*nz, 16, func(_, start, end int) {
		buf := make([]complex128, ny)
		for line := start; line < end; line++ {
			ix, iz := line/nz, line%nz
			for iy := 0; iy < ny; iy++ {
				buf[iy] = data[iz+nz*(iy+ny*ix)]
			}
			out := fn(buf)
			for iy := 0; iy < ny; iy++ {
				data[iz+nz*(iy+ny*ix)] = out[iy]
			}
		}
	})

	// x lines, one per (iy, iz)
	p.backend.For(ny*nz, 16, func(_, start, end int) {
		buf := make([]complex128, nx)
		for line := start; line < end; line++ {
			iy, iz := line/nz, line%nz
			for ix := 0; ix < nx; ix++ {
				buf[ix] = data[iz+nz*(iy+ny*ix)]
			}
			out := fn(buf)
			for ix := 0; ix < nx; ix++ {
				data[iz+nz*(iy+ny*ix)] = out[ix]
			}
		}
	})
}
