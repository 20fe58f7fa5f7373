package fft

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/san-kum/pppm/internal/compute"
)

func naiveDFT(data []complex128, nx, ny, nz int, sign float64) []complex128 {
	out := make([]complex128, len(data))
	for kx := 0; kx < nx; kx++ {
		for ky := 0; ky < ny; ky++ {
			for kz := 0; kz < nz; kz++ {
				var sum complex128
				for x := 0; x < nx; x++ {
					for y := 0; y < ny; y++ {
						for z := 0; z < nz; z++ {
							phase := sign * 2 * math.Pi * (float64(kx*x)/float64(nx) + float64(ky*y)/float64(ny) + float64(kz*z)/float64(nz))
							sum += data[z+nz*(y+ny*x)] * cmplx.Exp(complex(0, phase))
						}
					}
				}
				out[kz+nz*(ky+ny*kx)] = sum
			}
		}
	}
	return out
}

func randomGrid(n int, seed int64) []complex128 {
	rng := rand.New(rand.NewSource(seed))
	g := make([]complex128, n)
	for i := range g {
		g[i] = complex(rng.Float64()-0.5, rng.Float64()-0.5)
	}
	return g
}

func TestForwardMatchesNaive(t *testing.T) {
	tests := []struct {
		name       string
		nx, ny, nz int
	}{
		{"cube", 4, 4, 4},
		{"flat", 8, 2, 4},
		{"unit axis", 1, 4, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.nx * tt.ny * tt.nz
			data := randomGrid(n, 1)
			want := naiveDFT(data, tt.nx, tt.ny, tt.nz, -1)

			got := make([]complex128, n)
			copy(got, data)
			NewPlan(tt.nx, tt.ny, tt.nz).Forward(got)

			for i := range got {
				if cmplx.Abs(got[i]-want[i]) > 1e-9 {
					t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestInverseIsUnnormalized(t *testing.T) {
	nx, ny, nz := 4, 8, 2
	n := nx * ny * nz
	data := randomGrid(n, 2)

	want := naiveDFT(data, nx, ny, nz, +1)
	got := make([]complex128, n)
	copy(got, data)

	p := NewFactory(compute.NewCPUBackendWorkers(3))(nx, ny, nz)
	p.Inverse(got)
	for i := range got {
		if cmplx.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRoundTripScalesByN(t *testing.T) {
	nx, ny, nz := 8, 8, 8
	n := nx * ny * nz
	data := randomGrid(n, 3)
	work := make([]complex128, n)
	copy(work, data)

	p := NewPlan(nx, ny, nz)
	p.Forward(work)
	p.Inverse(work)

	for i := range work {
		if cmplx.Abs(work[i]/complex(float64(n), 0)-data[i]) > 1e-12 {
			t.Fatalf("index %d: round trip %v, want %v", i, work[i]/complex(float64(n), 0), data[i])
		}
	}
}

func TestPlanPanicsOnWrongSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for mismatched grid")
		}
	}()
	NewPlan(2, 2, 2).Forward(make([]complex128, 7))
}
