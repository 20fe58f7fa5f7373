package pppm

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/box"
	"github.com/san-kum/pppm/internal/compute"
	"github.com/san-kum/pppm/internal/fft"
	"github.com/san-kum/pppm/internal/particles"
)

// QuantityEnergy is the only log quantity the engine provides.
const QuantityEnergy = "pppm_energy"

type Option func(*Engine)

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithBackend(b compute.Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithFFT replaces the FFT used between the pipeline stages.
func WithFFT(f fft.Factory) Option {
	return func(e *Engine) { e.newTransform = f }
}

// Engine computes long-range Coulomb forces on a particle set with the PPPM
// method. An Engine is not safe for concurrent use; box-change notifications
// may arrive from any goroutine.
type Engine struct {
	box          *box.Box
	pdata        *particles.Set
	logger       *log.Logger
	backend      compute.Backend
	newTransform fft.Factory

	unsubscribe func()
	boxChanged  atomic.Bool

	params     Params
	configured bool
	coeff      *CoeffTable
	gfB        []float64
	stencil    stencil
	geom       *Geometry
	transform  fft.Transform

	rho     []complex128
	fields  fieldGrids
	scratch [][]float64
	used    []bool

	forces    particles.Forces
	potential []float64

	energy             float64
	virial             r3.Vec
	energyVirialFactor float64
	netCharge          float64
	estimate           ErrorEstimate

	computed     bool
	lastTimestep uint64
}

// New creates an engine for the particles in pdata inside b and subscribes to
// box changes. Call SetParams before computing and Close when done.
func New(b *box.Box, pdata *particles.Set, opts ...Option) *Engine {
	e := &Engine{
		box:     b,
		pdata:   pdata,
		logger:  log.Default(),
		backend: compute.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.newTransform == nil {
		e.newTransform = fft.NewFactory(e.backend)
	}
	e.unsubscribe = b.Subscribe(e.slotBoxChanged)
	return e
}

func (e *Engine) slotBoxChanged() { e.boxChanged.Store(true) }

// Close detaches the engine from box-change notifications.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}

// Dirty reports whether the box-dependent state must be rebuilt before the
// next evaluation.
func (e *Engine) Dirty() bool {
	return !e.configured || e.boxChanged.Load()
}

// SetParams validates p and rebuilds every derived quantity. On a validation
// error nothing is allocated and the previous configuration stays in place.
func (e *Engine) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	snap, err := e.pdata.Acquire()
	if err != nil {
		return fmt.Errorf("pppm: set params: %w", err)
	}
	q, q2 := particles.ChargeSums(snap.Charge)
	natoms := snap.Len()
	if err := e.pdata.Release(); err != nil {
		return err
	}

	l := e.box.Lengths()
	e.netCharge = q
	if math.Abs(q) > 0 {
		e.logger.Warn("system is not neutral", "net_charge", q)
	}

	e.estimate = EstimateError(p, l, natoms, q2)
	if e.estimate.TooHigh() {
		e.logger.Warn("RMS force error is probably too high",
			"rms", e.estimate.RMS, "long_range", e.estimate.LongRange, "short_range", e.estimate.ShortRange)
	} else {
		e.logger.Info("RMS force error", "rms", e.estimate.RMS)
	}

	n := p.Size()
	e.params = p
	e.rho = make([]complex128, n)
	e.fields = newFieldGrids(n)
	e.scratch = make([][]float64, e.backend.Workers())
	for w := range e.scratch {
		e.scratch[w] = make([]float64, n)
	}
	e.used = make([]bool, e.backend.Workers())
	e.transform = e.newTransform(p.Nx, p.Ny, p.Nz)

	e.coeff = computeRhoCoeff(p.Order)
	e.gfB = computeGFDenom(p.Order)
	e.stencil = newStencil(p.Order, e.coeff)
	e.geom = newGeometry(p)

	e.boxChanged.Store(false)
	e.rebuild(l)

	e.configured = true
	e.computed = false
	return nil
}

func (e *Engine) rebuild(l r3.Vec) {
	e.geom.rebuild(e.params, e.gfB, l, e.backend)
	scale := 1 / float64(e.params.Size())
	e.energyVirialFactor = 0.5 * l.X * l.Y * l.Z * scale * scale
}

// Compute evaluates forces for timestep unless they were already computed
// for it.
func (e *Engine) Compute(timestep uint64) error {
	if e.computed && e.lastTimestep == timestep {
		return nil
	}
	if err := e.Evaluate(); err != nil {
		return err
	}
	e.computed = true
	e.lastTimestep = timestep
	return nil
}

// Evaluate runs the full pipeline: rebuild if the box changed, spread
// charges, forward transform, solve, inverse transforms, gather.
func (e *Engine) Evaluate() (err error) {
	if !e.configured {
		return ErrNotConfigured
	}

	start := time.Now()
	l := e.box.Lengths()
	if e.boxChanged.Swap(false) || e.geom.Lengths != l {
		e.rebuild(l)
		e.logger.Debug("rebuilt box-dependent grid state", "lx", l.X, "ly", l.Y, "lz", l.Z)
	}

	snap, err := e.pdata.Acquire()
	if err != nil {
		return fmt.Errorf("pppm: evaluate: %w", err)
	}
	defer func() {
		if rerr := e.pdata.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("pppm: evaluate: %w", rerr)
		}
	}()

	natoms := snap.Len()
	e.forces.Reset(natoms)
	if cap(e.potential) < natoms {
		e.potential = make([]float64, natoms)
	}
	e.potential = e.potential[:natoms]

	spreadCharges(e.rho, e.scratch, e.used, snap, e.stencil, e.geom, e.backend)
	e.transform.Forward(e.rho)

	sums := solveField(e.rho, e.fields, e.geom, e.backend)

	e.transform.Inverse(e.fields.ex)
	e.transform.Inverse(e.fields.ey)
	e.transform.Inverse(e.fields.ez)
	e.transform.Inverse(e.fields.phi)

	gatherForces(&e.forces, e.potential, e.fields, snap, e.stencil, e.geom, e.backend)

	e.accumulateEnergy(snap, sums, l)

	e.logger.Debug("pppm evaluation", "particles", natoms, "energy", e.energy, "elapsed", time.Since(start))
	return nil
}

// accumulateEnergy applies the self-energy and neutralising-background
// corrections and distributes energy and virial over the particles.
func (e *Engine) accumulateEnergy(snap particles.Snapshot, sums solveSums, l r3.Vec) {
	kappa := e.params.Kappa
	volume := l.X * l.Y * l.Z
	q, q2 := particles.ChargeSums(snap.Charge)

	e.virial = r3.Scale(e.energyVirialFactor, sums.virial)
	e.energy = e.energyVirialFactor*sums.energy -
		kappa*q2/math.Sqrt(math.Pi) -
		0.5*math.Pi*q*q/(kappa*kappa*volume)

	natoms := snap.Len()
	if natoms == 0 {
		return
	}
	perParticleVirial := (e.virial.X + e.virial.Y + e.virial.Z) / 3 / float64(natoms)
	for i, qi := range snap.Charge {
		e.forces.Energy[i] = 0.5*qi*e.potential[i] -
			kappa*qi*qi/math.Sqrt(math.Pi) -
			0.5*math.Pi*qi*q/(kappa*kappa*volume)
		e.forces.Virial[i] = perParticleVirial
	}
}

// LogQuantities lists the names accepted by LogValue.
func (e *Engine) LogQuantities() []string {
	return []string{QuantityEnergy}
}

// LogValue computes forces for timestep if needed and returns the named
// quantity.
func (e *Engine) LogValue(quantity string, timestep uint64) (float64, error) {
	if quantity != QuantityEnergy {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQuantity, quantity)
	}
	if err := e.Compute(timestep); err != nil {
		return 0, err
	}
	return e.energy, nil
}

func (e *Engine) Params() Params               { return e.params }
func (e *Engine) Configured() bool             { return e.configured }
func (e *Engine) Forces() *particles.Forces    { return &e.forces }
func (e *Engine) Energy() float64              { return e.energy }
func (e *Engine) NetCharge() float64           { return e.netCharge }
func (e *Engine) ErrorEstimate() ErrorEstimate { return e.estimate }
func (e *Engine) Geometry() *Geometry          { return e.geom }
func (e *Engine) Coefficients() *CoeffTable    { return e.coeff }

// VirialTensor returns the diagonal of the reciprocal-space virial.
func (e *Engine) VirialTensor() r3.Vec { return e.virial }

// Virial returns the scalar virial, the trace of VirialTensor over three.
func (e *Engine) Virial() float64 {
	return (e.virial.X + e.virial.Y + e.virial.Z) / 3
}
