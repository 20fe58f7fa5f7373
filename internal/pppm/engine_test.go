package pppm

import (
	"bytes"
	"io"
	"math"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/box"
	"github.com/san-kum/pppm/internal/compute"
	"github.com/san-kum/pppm/internal/fft"
	"github.com/san-kum/pppm/internal/particles"
)

type countingTransform struct {
	fft.Transform
	forward, inverse *int
}

func (c countingTransform) Forward(data []complex128) {
	*c.forward++
	c.Transform.Forward(data)
}

func (c countingTransform) Inverse(data []complex128) {
	*c.inverse++
	c.Transform.Inverse(data)
}

// releasingTransform drops the engine's hold on the particles mid-evaluation.
type releasingTransform struct {
	fft.Transform
	set *particles.Set
}

func (r releasingTransform) Forward(data []complex128) {
	r.set.Release()
	r.Transform.Forward(data)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

var _ = Describe("Engine", func() {
	var (
		b      *box.Box
		set    *particles.Set
		engine *Engine
		params Params
	)

	BeforeEach(func() {
		var err error
		b, err = box.NewCubic(10)
		Expect(err).NotTo(HaveOccurred())
		set = particles.Dipole(3, 1)
		params = Params{Nx: 16, Ny: 16, Nz: 16, Order: 5, Kappa: 0.3, Rcut: 3}
	})

	AfterEach(func() {
		if engine != nil {
			engine.Close()
			engine = nil
		}
	})

	newEngine := func(opts ...Option) *Engine {
		opts = append([]Option{WithLogger(quietLogger()), WithBackend(compute.NewCPUBackendWorkers(3))}, opts...)
		return New(b, set, opts...)
	}

	Describe("SetParams", func() {
		It("rejects unsupported grid sizes without allocating", func() {
			engine = newEngine()
			params.Nx = 7
			err := engine.SetParams(params)
			Expect(err).To(MatchError(ErrGridSize))
			Expect(engine.Configured()).To(BeFalse())
			Expect(engine.rho).To(BeNil())
			Expect(engine.geom).To(BeNil())
		})

		It("rejects an order above the maximum", func() {
			engine = newEngine()
			params.Order = 8
			Expect(engine.SetParams(params)).To(MatchError(ErrOrderTooHigh))
		})

		It("keeps the previous configuration after a failed update", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			bad := params
			bad.Kappa = -1
			Expect(engine.SetParams(bad)).To(MatchError(ErrInvalidParam))
			Expect(engine.Params()).To(Equal(params))
			Expect(engine.Configured()).To(BeTrue())
		})

		It("warns about a non-neutral system", func() {
			var buf bytes.Buffer
			Expect(set.Add(r3.Vec{Y: 2}, 0.5)).To(Succeed())
			engine = New(b, set, WithLogger(log.New(&buf)))
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("not neutral"))
			Expect(engine.NetCharge()).To(BeNumerically("~", 0.5, 1e-15))
		})

		It("warns when the estimated error is too high", func() {
			var buf bytes.Buffer
			engine = New(b, set, WithLogger(log.New(&buf)))
			Expect(engine.SetParams(Params{Nx: 2, Ny: 2, Nz: 2, Order: 1, Kappa: 2, Rcut: 3})).To(Succeed())
			Expect(engine.ErrorEstimate().TooHigh()).To(BeTrue())
			Expect(buf.String()).To(ContainSubstring("too high"))
		})

		It("sizes the coefficient table by order", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Coefficients().Offsets()).To(Equal(11))
			Expect(engine.Coefficients().Degrees()).To(Equal(5))
		})
	})

	Describe("Evaluate", func() {
		It("fails before parameters are set", func() {
			engine = newEngine()
			Expect(engine.Evaluate()).To(MatchError(ErrNotConfigured))
			Expect(engine.Compute(0)).To(MatchError(ErrNotConfigured))
		})

		It("pulls opposite charges together", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())

			f := engine.Forces()
			Expect(f.Len()).To(Equal(2))
			Expect(f.Force[0].X).To(BeNumerically(">", 0))
			Expect(f.Force[1].X).To(BeNumerically("<", 0))
			Expect(f.Force[0].X).To(BeNumerically("~", -f.Force[1].X, 1e-9))
			Expect(f.Force[0].Y).To(BeNumerically("~", 0, 1e-9))
			Expect(f.Force[0].Z).To(BeNumerically("~", 0, 1e-9))
			Expect(engine.Energy()).To(BeNumerically("<", 0))
		})

		It("attracts a centred unit dipole on a coarse grid", func() {
			params = Params{Nx: 8, Ny: 8, Nz: 8, Order: 4, Kappa: 0.3, Rcut: 3}
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())

			f := engine.Forces()
			Expect(f.Force[0].X).To(BeNumerically(">", 0))
			Expect(f.Force[1].X).To(BeNumerically("~", -f.Force[0].X, 1e-12))
			Expect(r3.Norm(f.Net())).To(BeNumerically("<", 1e-12))
			Expect(engine.Energy()).To(BeNumerically("<", 0))
		})

		It("matches the direct Ewald sum", func() {
			params.Nx, params.Ny, params.Nz = 32, 32, 32
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())

			snap, err := set.Acquire()
			Expect(err).NotTo(HaveOccurred())
			wantEnergy, wantForces := ewaldReciprocal(snap, b.Lengths(), params.Kappa)
			Expect(set.Release()).To(Succeed())

			Expect(engine.Energy()).To(BeNumerically("~", wantEnergy, 1e-3*math.Abs(wantEnergy)))
			for i, want := range wantForces {
				got := engine.Forces().Force[i]
				Expect(r3.Norm(r3.Sub(got, want))).To(BeNumerically("<", 5e-4))
			}
		})

		It("conserves momentum approximately", func() {
			var err error
			set, err = particles.RandomNeutral(b.Lengths(), 50, 11)
			Expect(err).NotTo(HaveOccurred())
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())

			f := engine.Forces()
			total := 0.0
			for _, v := range f.Force {
				total += r3.Norm(v)
			}
			Expect(total).To(BeNumerically(">", 0))
			Expect(r3.Norm(f.Net())).To(BeNumerically("<", 1e-2*total))
		})

		It("is invariant under translation by a grid spacing", func() {
			var err error
			set, err = particles.RandomNeutral(b.Lengths(), 20, 3)
			Expect(err).NotTo(HaveOccurred())
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())
			before := engine.Forces().Clone()
			energy := engine.Energy()

			h := 10.0 / 16
			snap, err := set.Acquire()
			Expect(err).NotTo(HaveOccurred())
			shifted := make([]r3.Vec, snap.Len())
			for i, p := range snap.Pos {
				shifted[i] = r3.Add(p, r3.Vec{X: h, Y: 2 * h, Z: -h})
			}
			Expect(set.Release()).To(Succeed())
			for i, p := range shifted {
				Expect(set.SetPosition(i, p)).To(Succeed())
			}

			Expect(engine.Evaluate()).To(Succeed())
			Expect(engine.Energy()).To(BeNumerically("~", energy, 1e-9))
			for i, f := range engine.Forces().Force {
				Expect(r3.Norm(r3.Sub(f, before.Force[i]))).To(BeNumerically("<", 1e-9))
			}
		})

		It("produces identical results on repeated evaluation", func() {
			var err error
			set, err = particles.RandomNeutral(b.Lengths(), 200, 5)
			Expect(err).NotTo(HaveOccurred())
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())

			Expect(engine.Evaluate()).To(Succeed())
			first := engine.Forces().Clone()
			firstEnergy := engine.Energy()
			Expect(engine.Evaluate()).To(Succeed())

			Expect(engine.Forces().Force).To(Equal(first.Force))
			Expect(engine.Energy()).To(Equal(firstEnergy))
		})

		It("splits energy over particles exactly", func() {
			var err error
			set, err = particles.RandomNeutral(b.Lengths(), 40, 9)
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Add(r3.Vec{X: 1, Y: 1, Z: 1}, 0.25)).To(Succeed())
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())

			f := engine.Forces()
			Expect(f.TotalEnergy()).To(BeNumerically("~", engine.Energy(), 1e-9*(1+math.Abs(engine.Energy()))))
			Expect(f.TotalVirial()).To(BeNumerically("~", engine.Virial(), 1e-9*(1+math.Abs(engine.Virial()))))
		})

		It("runs one forward and four inverse transforms", func() {
			forward, inverse := 0, 0
			engine = newEngine(WithFFT(func(nx, ny, nz int) fft.Transform {
				return countingTransform{
					Transform: fft.NewFactory(compute.NewCPUBackendWorkers(1))(nx, ny, nz),
					forward:   &forward,
					inverse:   &inverse,
				}
			}))
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())
			Expect(forward).To(Equal(1))
			Expect(inverse).To(Equal(4))
		})

		It("fails while the particles are held elsewhere", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			_, err := set.Acquire()
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Evaluate()).To(MatchError(particles.ErrAcquired))
			Expect(set.Release()).To(Succeed())
		})
	})

	Describe("particle release", func() {
		It("reports a failed release", func() {
			engine = newEngine(WithFFT(func(nx, ny, nz int) fft.Transform {
				return releasingTransform{Transform: fft.NewFactory(compute.NewCPUBackendWorkers(1))(nx, ny, nz), set: set}
			}))
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(MatchError(particles.ErrNotAcquired))
		})
	})

	Describe("box changes", func() {
		It("rebuilds grid state before the next evaluation", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Dirty()).To(BeFalse())
			k := engine.Geometry().KVec[1]

			Expect(b.SetLengths(r3.Vec{X: 12, Y: 10, Z: 10})).To(Succeed())
			Expect(engine.Dirty()).To(BeTrue())

			Expect(engine.Evaluate()).To(Succeed())
			Expect(engine.Dirty()).To(BeFalse())
			Expect(engine.Geometry().Lengths).To(Equal(r3.Vec{X: 12, Y: 10, Z: 10}))
			Expect(engine.Geometry().KVec[1]).To(Equal(k))
			Expect(engine.Geometry().KVec[16*16].X).To(BeNumerically("~", 2*math.Pi/12, 1e-12))
		})

		It("matches a fresh engine after a resize", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())
			Expect(b.Scale(1.2)).To(Succeed())
			Expect(engine.Evaluate()).To(Succeed())
			resized := engine.Forces().Clone()

			fresh := newEngine()
			defer fresh.Close()
			Expect(fresh.SetParams(params)).To(Succeed())
			Expect(fresh.Evaluate()).To(Succeed())
			for i, f := range fresh.Forces().Force {
				Expect(r3.Norm(r3.Sub(f, resized.Force[i]))).To(BeNumerically("<", 1e-12))
			}
		})

		It("stops listening after Close", func() {
			engine = newEngine()
			Expect(b.Subscribers()).To(Equal(1))
			engine.Close()
			engine.Close()
			Expect(b.Subscribers()).To(Equal(0))
		})
	})

	Describe("log quantities", func() {
		It("provides the mesh energy", func() {
			engine = newEngine()
			Expect(engine.LogQuantities()).To(ConsistOf(QuantityEnergy))
			Expect(engine.SetParams(params)).To(Succeed())
			v, err := engine.LogValue(QuantityEnergy, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(engine.Energy()))
		})

		It("rejects unknown names", func() {
			engine = newEngine()
			Expect(engine.SetParams(params)).To(Succeed())
			_, err := engine.LogValue("pair_energy", 0)
			Expect(err).To(MatchError(ErrUnknownQuantity))
		})

		It("computes each timestep once", func() {
			forward, inverse := 0, 0
			engine = newEngine(WithFFT(func(nx, ny, nz int) fft.Transform {
				return countingTransform{Transform: fft.NewFactory(compute.NewCPUBackendWorkers(1))(nx, ny, nz), forward: &forward, inverse: &inverse}
			}))
			Expect(engine.SetParams(params)).To(Succeed())
			Expect(engine.Compute(3)).To(Succeed())
			Expect(engine.Compute(3)).To(Succeed())
			_, err := engine.LogValue(QuantityEnergy, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(forward).To(Equal(1))
			Expect(engine.Compute(4)).To(Succeed())
			Expect(forward).To(Equal(2))
		})
	})
})
