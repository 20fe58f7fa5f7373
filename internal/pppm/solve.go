package pppm

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/compute"
)

// fieldGrids are the reciprocal-space outputs of the solver. After the
// inverse transforms they hold the real-space field components and potential.
type fieldGrids struct {
	ex, ey, ez []complex128
	phi        []complex128
}

func newFieldGrids(n int) fieldGrids {
	return fieldGrids{
		ex:  make([]complex128, n),
		ey:  make([]complex128, n),
		ez:  make([]complex128, n),
		phi: make([]complex128, n),
	}
}

// solveSums are the reciprocal-space energy sums of one evaluation.
type solveSums struct {
	energy float64
	virial r3.Vec
}

// solveField applies the influence function to the transformed density rho
// and writes the field components E = -ik·φ and the potential φ. It returns
// Σ G|ρ̂|² and its virial-weighted counterparts, taken before scaling.
func solveField(rho []complex128, out fieldGrids, g *Geometry, backend compute.Backend) solveSums {
	n := len(rho)
	invN := 1 / float64(n)

	partial := make([]solveSums, backend.Workers())
	backend.For(n, 4096, func(worker, start, end int) {
		var acc solveSums
		for i := start; i < end; i++ {
			v := rho[i]
			gh := g.GreenHat[i]
			re, im := real(v), imag(v)

			eng := gh * (re*re + im*im)
			acc.energy += eng
			acc.virial = r3.Add(acc.virial, r3.Scale(eng, g.VG[i]))

			scale := gh * invN
			re, im = re*scale, im*scale
			rho[i] = complex(re, im)
			out.phi[i] = rho[i]

			k := g.KVec[i]
			out.ex[i] = complex(k.X*im, -k.X*re)
			out.ey[i] = complex(k.Y*im, -k.Y*re)
			out.ez[i] = complex(k.Z*im, -k.Z*re)
		}
		partial[worker] = acc
	})

	var sums solveSums
	for _, p := range partial {
		sums.energy += p.energy
		sums.virial = r3.Add(sums.virial, p.virial)
	}
	return sums
}
