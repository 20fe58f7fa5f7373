package particles

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Forces accumulates per-particle output of a force evaluation.
type Forces struct {
	Force  []r3.Vec
	Energy []float64
	Virial []float64
}

// Reset resizes the arrays to n particles and zeroes them.
func (f *Forces) Reset(n int) {
	if cap(f.Force) < n {
		f.Force = make([]r3.Vec, n)
		f.Energy = make([]float64, n)
		f.Virial = make([]float64, n)
		return
	}
	f.Force = f.Force[:n]
	f.Energy = f.Energy[:n]
	f.Virial = f.Virial[:n]
	for i := range f.Force {
		f.Force[i] = r3.Vec{}
	}
	floats.Scale(0, f.Energy)
	floats.Scale(0, f.Virial)
}

func (f *Forces) Len() int { return len(f.Force) }

func (f *Forces) Net() r3.Vec {
	var sum r3.Vec
	for _, v := range f.Force {
		sum = r3.Add(sum, v)
	}
	return sum
}

func (f *Forces) TotalEnergy() float64 { return floats.Sum(f.Energy) }
func (f *Forces) TotalVirial() float64 { return floats.Sum(f.Virial) }

func (f *Forces) Clone() *Forces {
	c := &Forces{
		Force:  make([]r3.Vec, len(f.Force)),
		Energy: make([]float64, len(f.Energy)),
		Virial: make([]float64, len(f.Virial)),
	}
	copy(c.Force, f.Force)
	copy(c.Energy, f.Energy)
	copy(c.Virial, f.Virial)
	return c
}
