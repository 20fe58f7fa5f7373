package particles

import (
	"errors"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrAcquired    = errors.New("particles: data already acquired")
	ErrNotAcquired = errors.New("particles: release without acquire")
)

// Set holds particle positions and charges. Readers take a Snapshot with
// Acquire and must Release it before the set can be modified or acquired
// again.
type Set struct {
	mu       sync.Mutex
	pos      []r3.Vec
	charge   []float64
	acquired bool
}

// Snapshot is a read-only view of a Set. The slices alias the set's storage
// and must not be modified or retained after Release.
type Snapshot struct {
	Pos    []r3.Vec
	Charge []float64
}

func (s Snapshot) Len() int { return len(s.Charge) }

func NewSet(capacity int) *Set {
	return &Set{
		pos:    make([]r3.Vec, 0, capacity),
		charge: make([]float64, 0, capacity),
	}
}

func (s *Set) Add(p r3.Vec, q float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return ErrAcquired
	}
	s.pos = append(s.pos, p)
	s.charge = append(s.charge, q)
	return nil
}

func (s *Set) SetPosition(i int, p r3.Vec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return ErrAcquired
	}
	s.pos[i] = p
	return nil
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.charge)
}

func (s *Set) Acquire() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acquired {
		return Snapshot{}, ErrAcquired
	}
	s.acquired = true
	return Snapshot{Pos: s.pos, Charge: s.charge}, nil
}

func (s *Set) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acquired {
		return ErrNotAcquired
	}
	s.acquired = false
	return nil
}

// ChargeSums returns the net charge and the sum of squared charges.
func ChargeSums(charge []float64) (q, q2 float64) {
	q = floats.Sum(charge)
	q2 = floats.Dot(charge, charge)
	return q, q2
}
