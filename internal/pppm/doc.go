// Package pppm implements the particle-particle particle-mesh (PPPM) solver
// for the long-range part of the Ewald sum in a periodic orthorhombic box.
//
// One evaluation runs five ordered stages:
//
//  1. charges are spread to a mesh with order-p assignment polynomials
//  2. the mesh is Fourier transformed
//  3. the transformed density is multiplied by the optimised influence
//     function and differentiated in k-space, giving E = -ik·φ
//  4. each field component and the potential are transformed back
//  5. the fields are interpolated to the particles with the same polynomials
//
// The k-vectors, virial weights and influence function depend on the box
// shape. The [Engine] subscribes to box changes and rebuilds them at the start
// of the next evaluation; grid size, order and assignment coefficients change
// only through [Engine.SetParams].
//
// # Example
//
//	b, _ := box.NewCubic(10)
//	set := particles.Dipole(3, 1)
//	e := pppm.New(b, set)
//	defer e.Close()
//	if err := e.SetParams(pppm.Params{Nx: 16, Ny: 16, Nz: 16, Order: 5, Kappa: 0.3, Rcut: 3}); err != nil {
//	    return err
//	}
//	energy, err := e.LogValue(pppm.QuantityEnergy, 0)
//
// Units are Gaussian with unit dielectric constant: two unit charges at
// distance r interact with energy 1/r.
package pppm
