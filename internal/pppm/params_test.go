package pppm

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Params {
	return Params{Nx: 16, Ny: 16, Nz: 16, Order: 5, Kappa: 0.3, Rcut: 3}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
		want   error
		param  string
	}{
		{"valid", func(*Params) {}, nil, ""},
		{"order zero", func(p *Params) { p.Order = 0 }, ErrInvalidParam, "order"},
		{"order above max", func(p *Params) { p.Order = 8 }, ErrOrderTooHigh, "order"},
		{"order overflows table", func(p *Params) { p.Order = 40 }, ErrOrderCapacity, "order"},
		{"nx not power of two", func(p *Params) { p.Nx = 7 }, ErrGridSize, "nx"},
		{"ny too small", func(p *Params) { p.Ny = 1 }, ErrGridSize, "ny"},
		{"nz too large", func(p *Params) { p.Nz = 2048 }, ErrGridSize, "nz"},
		{"kappa zero", func(p *Params) { p.Kappa = 0 }, ErrInvalidParam, "kappa"},
		{"kappa nan", func(p *Params) { p.Kappa = math.NaN() }, ErrInvalidParam, "kappa"},
		{"rcut negative", func(p *Params) { p.Rcut = -1 }, ErrInvalidParam, "rcut"},
		{"order checked before grid", func(p *Params) { p.Order = 8; p.Nx = 7 }, ErrOrderTooHigh, "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.modify(&p)
			err := p.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)

			var pe *ParamError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.param, pe.Param)
		})
	}
}

func TestSupportedGridSizes(t *testing.T) {
	for n := MinGridSize; n <= MaxGridSize; n *= 2 {
		assert.True(t, supportedGridSize(n), "n = %d", n)
	}
	for _, n := range []int{0, 1, 3, 6, 12, 1000, 2048} {
		assert.False(t, supportedGridSize(n), "n = %d", n)
	}
}

func TestParamErrorMessage(t *testing.T) {
	err := Params{Nx: 7, Ny: 8, Nz: 8, Order: 3, Kappa: 1, Rcut: 1}.Validate()
	assert.Contains(t, err.Error(), "nx = 7")
}
