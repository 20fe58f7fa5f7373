package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/particles"
)

// Metric observes the output of successive force evaluations.
type Metric interface {
	Name() string
	Observe(f *particles.Forces)
	Value() float64
	Reset()
}

// Standard returns the metrics reported by a run.
func Standard() []Metric {
	return []Metric{NewNetForce(), NewRMSForce(), NewMaxForce(), NewEnergy()}
}

func ObserveAll(ms []Metric, f *particles.Forces) {
	for _, m := range ms {
		m.Observe(f)
	}
}

func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// NetForce is the largest magnitude of the summed force seen so far. A mesh
// solver does not conserve momentum exactly, so this measures the error.
type NetForce struct {
	max float64
}

func NewNetForce() *NetForce { return &NetForce{} }

func (n *NetForce) Name() string { return "net_force" }

func (n *NetForce) Observe(f *particles.Forces) {
	n.max = math.Max(n.max, r3.Norm(f.Net()))
}

func (n *NetForce) Value() float64 { return n.max }
func (n *NetForce) Reset()         { n.max = 0 }

// RMSForce averages the per-evaluation RMS force magnitude.
type RMSForce struct {
	sum     float64
	samples int
}

func NewRMSForce() *RMSForce { return &RMSForce{} }

func (r *RMSForce) Name() string { return "rms_force" }

func (r *RMSForce) Observe(f *particles.Forces) {
	if f.Len() == 0 {
		return
	}
	sq := make([]float64, f.Len())
	for i, v := range f.Force {
		sq[i] = r3.Dot(v, v)
	}
	r.sum += math.Sqrt(floats.Sum(sq) / float64(len(sq)))
	r.samples++
}

func (r *RMSForce) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return r.sum / float64(r.samples)
}

func (r *RMSForce) Reset() {
	r.sum = 0
	r.samples = 0
}

type MaxForce struct {
	max float64
}

func NewMaxForce() *MaxForce { return &MaxForce{} }

func (m *MaxForce) Name() string { return "max_force" }

func (m *MaxForce) Observe(f *particles.Forces) {
	for _, v := range f.Force {
		m.max = math.Max(m.max, r3.Norm(v))
	}
}

func (m *MaxForce) Value() float64 { return m.max }
func (m *MaxForce) Reset()         { m.max = 0 }

// Energy is the mean of the summed per-particle energies.
type Energy struct {
	total   float64
	samples int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(f *particles.Forces) {
	e.total += f.TotalEnergy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}
