package pppm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/compute"
)

// Geometry is the box-dependent part of the solver state. It is valid only
// for the box lengths it was built with.
type Geometry struct {
	Nx, Ny, Nz int
	Lengths    r3.Vec

	// KVec is the reciprocal-lattice vector of each grid point.
	KVec []r3.Vec
	// VG holds the per-axis virial weights; zero at k = 0.
	VG []r3.Vec
	// GreenHat is the optimised influence function; zero at k = 0.
	GreenHat []float64
}

func newGeometry(p Params) *Geometry {
	n := p.Size()
	return &Geometry{
		Nx:       p.Nx,
		Ny:       p.Ny,
		Nz:       p.Nz,
		KVec:     make([]r3.Vec, n),
		VG:       make([]r3.Vec, n),
		GreenHat: make([]float64, n),
	}
}

func (g *Geometry) index(ix, iy, iz int) int {
	return iz + g.Nz*(iy+g.Ny*ix)
}

// rebuild recomputes k-vectors, virial weights and the influence function for
// box lengths l.
func (g *Geometry) rebuild(p Params, gfB []float64, l r3.Vec, backend compute.Backend) {
	g.Lengths = l
	g.buildKVec(p.Kappa, l, backend)
	g.buildGreenHat(p, gfB, l, backend)
}

func centered(i, n int) int {
	if i > n/2 {
		return i - n
	}
	return i
}

func (g *Geometry) buildKVec(kappa float64, l r3.Vec, backend compute.Backend) {
	// Per-axis so an unchanged extent keeps bit-identical wave vectors.
	inv := r3.Vec{X: 2 * math.Pi / l.X, Y: 2 * math.Pi / l.Y, Z: 2 * math.Pi / l.Z}
	kappa2 := kappa * kappa

	backend.For(g.Nx, 1, func(_, start, end int) {
		for ix := start; ix < end; ix++ {
			jx := float64(centered(ix, g.Nx))
			for iy := 0; iy < g.Ny; iy++ {
				jy := float64(centered(iy, g.Ny))
				for iz := 0; iz < g.Nz; iz++ {
					jz := float64(centered(iz, g.Nz))
					i := g.index(ix, iy, iz)
					k := r3.Vec{X: jx * inv.X, Y: jy * inv.Y, Z: jz * inv.Z}
					g.KVec[i] = k

					sqk := r3.Dot(k, k)
					if sqk == 0 {
						g.VG[i] = r3.Vec{}
						continue
					}
					vterm := -2 * (1/sqk + 0.25/kappa2)
					g.VG[i] = r3.Vec{
						X: 1 + vterm*k.X*k.X,
						Y: 1 + vterm*k.Y*k.Y,
						Z: 1 + vterm*k.Z*k.Z,
					}
				}
			}
		}
	})
}

// imageTerm is one aliasing image along an axis: its wave number q and the
// product of its Gaussian screening and squared assignment factor.
type imageTerm struct {
	q  float64
	sw float64
}

func imageCount(kappa, length float64, n int) int {
	return int(math.Floor(kappa * length / (math.Pi * float64(n)) * math.Pow(-math.Log(EpsHOC), 0.25)))
}

func axisImages(unitk float64, per, n, nb int, length, kappa float64, order int) []imageTerm {
	terms := make([]imageTerm, 0, 2*nb+1)
	for i := -nb; i <= nb; i++ {
		q := unitk * float64(per+n*i)
		s := math.Exp(-0.25 * (q / kappa) * (q / kappa))
		w := 1.0
		if arg := 0.5 * q * length / float64(n); arg != 0 {
			w = math.Pow(math.Sin(arg)/arg, float64(order))
		}
		terms = append(terms, imageTerm{q: q, sw: s * w * w})
	}
	return terms
}

// folded maps grid index i to the signed wave number used by the influence
// function, with the Nyquist point on the negative side.
func folded(i, n int) int {
	return i - n*(2*i/n)
}

func (g *Geometry) buildGreenHat(p Params, gfB []float64, l r3.Vec, backend compute.Backend) {
	unitk := r3.Vec{X: 2 * math.Pi / l.X, Y: 2 * math.Pi / l.Y, Z: 2 * math.Pi / l.Z}
	nbx := imageCount(p.Kappa, l.X, g.Nx)
	nby := imageCount(p.Kappa, l.Y, g.Ny)
	nbz := imageCount(p.Kappa, l.Z, g.Nz)

	yImages := make([][]imageTerm, g.Ny)
	for iy := range yImages {
		yImages[iy] = axisImages(unitk.Y, folded(iy, g.Ny), g.Ny, nby, l.Y, p.Kappa, p.Order)
	}
	zImages := make([][]imageTerm, g.Nz)
	for iz := range zImages {
		zImages[iz] = axisImages(unitk.Z, folded(iz, g.Nz), g.Nz, nbz, l.Z, p.Kappa, p.Order)
	}

	backend.For(g.Nx, 1, func(_, start, end int) {
		for ix := start; ix < end; ix++ {
			kper := folded(ix, g.Nx)
			snx := math.Sin(math.Pi * float64(kper) / float64(g.Nx))
			xImages := axisImages(unitk.X, kper, g.Nx, nbx, l.X, p.Kappa, p.Order)

			for iy := 0; iy < g.Ny; iy++ {
				lper := folded(iy, g.Ny)
				sny := math.Sin(math.Pi * float64(lper) / float64(g.Ny))

				for iz := 0; iz < g.Nz; iz++ {
					mper := folded(iz, g.Nz)
					snz := math.Sin(math.Pi * float64(mper) / float64(g.Nz))
					i := g.index(ix, iy, iz)

					k := r3.Vec{X: unitk.X * float64(kper), Y: unitk.Y * float64(lper), Z: unitk.Z * float64(mper)}
					sqk := r3.Dot(k, k)
					if sqk == 0 {
						g.GreenHat[i] = 0
						continue
					}

					numerator := 4 * math.Pi / sqk
					denominator := gfDenom(gfB, snx*snx, sny*sny, snz*snz)

					sum := 0.0
					for _, tx := range xImages {
						for _, ty := range yImages[iy] {
							for _, tz := range zImages[iz] {
								dot1 := k.X*tx.q + k.Y*ty.q + k.Z*tz.q
								dot2 := tx.q*tx.q + ty.q*ty.q + tz.q*tz.q
								sum += dot1 / dot2 * tx.sw * ty.sw * tz.sw
							}
						}
					}
					g.GreenHat[i] = numerator * sum / denominator
				}
			}
		}
	})
}
