package pppm

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/compute"
	"github.com/san-kum/pppm/internal/particles"
)

// stencil maps a particle coordinate to the grid points and weights it is
// spread to. Spreading and gathering share it so the two stay adjoint.
type stencil struct {
	order           int
	nlower          int
	shift, shiftone float64
	coeff           *CoeffTable
}

func newStencil(order int, coeff *CoeffTable) stencil {
	s := stencil{
		order:  order,
		nlower: -(order - 1) / 2,
		coeff:  coeff,
	}
	if order%2 == 1 {
		s.shift = 0.5
	} else {
		s.shiftone = 0.5
	}
	return s
}

// axis fills idx and w (length order) for fractional grid coordinate u on an
// axis of n points.
func (s stencil) axis(u float64, n int, idx []int, w []float64) {
	anchor := int(math.Floor(u + s.shift))
	d := s.shiftone + float64(anchor) - u
	for m := 0; m < s.order; m++ {
		idx[m] = wrapIndex(anchor+s.nlower+m, n)
		w[m] = s.coeff.Eval(m, d)
	}
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// cellWeights is the per-particle scratch for one stencil evaluation.
type cellWeights struct {
	ix, iy, iz []int
	wx, wy, wz []float64
}

func newCellWeights(order int) *cellWeights {
	return &cellWeights{
		ix: make([]int, order), iy: make([]int, order), iz: make([]int, order),
		wx: make([]float64, order), wy: make([]float64, order), wz: make([]float64, order),
	}
}

// gridCoord returns p in grid units, measured from the box corner after
// wrapping p into the primary cell.
func gridCoord(p, l, h r3.Vec) r3.Vec {
	return r3.Vec{
		X: wrapCoord(p.X, l.X) / h.X,
		Y: wrapCoord(p.Y, l.Y) / h.Y,
		Z: wrapCoord(p.Z, l.Z) / h.Z,
	}
}

func wrapCoord(x, l float64) float64 {
	x += 0.5 * l
	x -= l * math.Floor(x/l)
	return x
}

func (s stencil) fill(c *cellWeights, u r3.Vec, g *Geometry) {
	s.axis(u.X, g.Nx, c.ix, c.wx)
	s.axis(u.Y, g.Ny, c.iy, c.wy)
	s.axis(u.Z, g.Nz, c.iz, c.wz)
}

// spreadCharges zeroes rho and deposits every particle's charge density on
// it. Each worker deposits into its own real grid in scratch; the grids are
// summed into rho in worker order.
func spreadCharges(rho []complex128, scratch [][]float64, used []bool, snap particles.Snapshot, s stencil, g *Geometry, backend compute.Backend) {
	l := g.Lengths
	h := r3.Vec{X: l.X / float64(g.Nx), Y: l.Y / float64(g.Ny), Z: l.Z / float64(g.Nz)}
	invCell := 1 / (h.X * h.Y * h.Z)

	for w := range used {
		used[w] = false
	}

	backend.For(snap.Len(), 64, func(worker, start, end int) {
		grid := scratch[worker]
		for i := range grid {
			grid[i] = 0
		}
		used[worker] = true

		c := newCellWeights(s.order)
		for i := start; i < end; i++ {
			s.fill(c, gridCoord(snap.Pos[i], l, h), g)
			x0 := snap.Charge[i] * invCell
			for a := 0; a < s.order; a++ {
				y0 := x0 * c.wx[a]
				for b := 0; b < s.order; b++ {
					z0 := y0 * c.wy[b]
					row := g.Nz * (c.iy[b] + g.Ny*c.ix[a])
					for cc := 0; cc < s.order; cc++ {
						grid[c.iz[cc]+row] += z0 * c.wz[cc]
					}
				}
			}
		}
	})

	backend.For(len(rho), 4096, func(_, start, end int) {
		for i := start; i < end; i++ {
			sum := 0.0
			for w, grid := range scratch {
				if used[w] {
					sum += grid[i]
				}
			}
			rho[i] = complex(sum, 0)
		}
	})
}
