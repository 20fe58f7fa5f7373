package pppm

import (
	"fmt"
	"math"
)

// CoeffTable holds polynomial coefficients indexed by (offset, degree). It is
// stored flat with the offset varying fastest.
type CoeffTable struct {
	offsets int
	degrees int
	data    []float64
}

func NewCoeffTable(offsets, degrees int) *CoeffTable {
	return &CoeffTable{
		offsets: offsets,
		degrees: degrees,
		data:    make([]float64, offsets*degrees),
	}
}

func (t *CoeffTable) Offsets() int { return t.offsets }
func (t *CoeffTable) Degrees() int { return t.degrees }

func (t *CoeffTable) index(offset, degree int) int {
	if offset < 0 || offset >= t.offsets || degree < 0 || degree >= t.degrees {
		panic(fmt.Sprintf("pppm: coefficient (%d, %d) outside %dx%d table", offset, degree, t.offsets, t.degrees))
	}
	return offset + degree*t.offsets
}

func (t *CoeffTable) At(offset, degree int) float64 {
	return t.data[t.index(offset, degree)]
}

func (t *CoeffTable) Set(offset, degree int, v float64) {
	t.data[t.index(offset, degree)] = v
}

// Eval evaluates the polynomial of the given offset at d.
func (t *CoeffTable) Eval(offset int, d float64) float64 {
	r := 0.0
	for k := t.degrees - 1; k >= 0; k-- {
		r = t.At(offset, k) + r*d
	}
	return r
}

// computeRhoCoeff builds the charge-assignment polynomials of the given order.
// Offset m in [0, order) is the m-th stencil point counting from the lower
// end; the table keeps its full order×(2·order+1) capacity.
func computeRhoCoeff(order int) *CoeffTable {
	width := 2*order + 1
	a := NewCoeffTable(width, order)
	a.Set(order, 0, 1)

	for j := 1; j < order; j++ {
		for k := -j; k <= j; k += 2 {
			s := 0.0
			for l := 0; l < j; l++ {
				lo := a.At(k-1+order, l)
				hi := a.At(k+1+order, l)
				a.Set(k+order, l+1, (hi-lo)/float64(l+1))
				s += math.Pow(0.5, float64(l+1)) * (lo + math.Pow(-1, float64(l))*hi) / float64(l+1)
			}
			a.Set(k+order, 0, s)
		}
	}

	rho := NewCoeffTable(width, order)
	m := 0
	for k := -(order - 1); k < order; k += 2 {
		for l := 0; l < order; l++ {
			rho.Set(m, l, a.At(k+order, l))
		}
		m++
	}
	return rho
}

// computeGFDenom returns the coefficients of the per-axis polynomial whose
// product forms the denominator of the influence function.
func computeGFDenom(order int) []float64 {
	b := make([]float64, order)
	b[0] = 1

	for m := 1; m < order; m++ {
		for l := m; l > 0; l-- {
			fl, fm := float64(l), float64(m)
			b[l] = 4 * (b[l]*(fl-fm)*(fl-fm-0.5) - b[l-1]*(fl-fm-1)*(fl-fm-1))
		}
		fm := float64(m)
		b[0] = 4 * (b[0] * (-fm) * (-fm - 0.5))
	}

	ifact := 1.0
	for k := 1; k < 2*order; k++ {
		ifact *= float64(k)
	}
	for l := range b {
		b[l] /= ifact
	}
	return b
}

// gfDenom evaluates the denominator at squared sines x, y, z.
func gfDenom(b []float64, x, y, z float64) float64 {
	var sx, sy, sz float64
	for l := len(b) - 1; l >= 0; l-- {
		sx = b[l] + sx*x
		sy = b[l] + sy*y
		sz = b[l] + sz*z
	}
	s := sx * sy * sz
	return s * s
}
