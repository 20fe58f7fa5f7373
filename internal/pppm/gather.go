package pppm

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/compute"
	"github.com/san-kum/pppm/internal/particles"
)

// gatherForces interpolates the real-space field and potential grids back to
// the particles. Forces are q·E; potential[i] receives φ at the particle.
func gatherForces(forces *particles.Forces, potential []float64, fields fieldGrids, snap particles.Snapshot, s stencil, g *Geometry, backend compute.Backend) {
	l := g.Lengths
	h := r3.Vec{X: l.X / float64(g.Nx), Y: l.Y / float64(g.Ny), Z: l.Z / float64(g.Nz)}

	backend.For(snap.Len(), 64, func(_, start, end int) {
		c := newCellWeights(s.order)
		for i := start; i < end; i++ {
			s.fill(c, gridCoord(snap.Pos[i], l, h), g)

			var e r3.Vec
			phi := 0.0
			for a := 0; a < s.order; a++ {
				x0 := c.wx[a]
				for b := 0; b < s.order; b++ {
					y0 := x0 * c.wy[b]
					row := g.Nz * (c.iy[b] + g.Ny*c.ix[a])
					for cc := 0; cc < s.order; cc++ {
						z0 := y0 * c.wz[cc]
						idx := c.iz[cc] + row
						e.X += z0 * real(fields.ex[idx])
						e.Y += z0 * real(fields.ey[idx])
						e.Z += z0 * real(fields.ez[idx])
						phi += z0 * real(fields.phi[idx])
					}
				}
			}

			forces.Force[i] = r3.Scale(snap.Charge[i], e)
			potential[i] = phi
		}
	})
}
