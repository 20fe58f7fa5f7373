package box

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrInvalidLength = errors.New("box: extents must be positive and finite")

// Box is an orthorhombic periodic cell centred on the origin. Coordinates
// inside the primary cell lie in [-L/2, L/2) along each axis.
type Box struct {
	mu     sync.Mutex
	l      r3.Vec
	subs   map[int]func()
	nextID int
}

func New(lx, ly, lz float64) (*Box, error) {
	l := r3.Vec{X: lx, Y: ly, Z: lz}
	if err := validate(l); err != nil {
		return nil, err
	}
	return &Box{l: l, subs: make(map[int]func())}, nil
}

func NewCubic(l float64) (*Box, error) { return New(l, l, l) }

func validate(l r3.Vec) error {
	for _, v := range []float64{l.X, l.Y, l.Z} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: got (%g, %g, %g)", ErrInvalidLength, l.X, l.Y, l.Z)
		}
	}
	return nil
}

func (b *Box) Lengths() r3.Vec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.l
}

func (b *Box) Volume() float64 {
	l := b.Lengths()
	return l.X * l.Y * l.Z
}

// SetLengths changes the box geometry and notifies every subscriber. Setting
// the current lengths again is a no-op and fires nothing.
func (b *Box) SetLengths(l r3.Vec) error {
	if err := validate(l); err != nil {
		return err
	}

	b.mu.Lock()
	if b.l == l {
		b.mu.Unlock()
		return nil
	}
	b.l = l
	subs := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return nil
}

// Scale multiplies every extent by f.
func (b *Box) Scale(f float64) error {
	return b.SetLengths(r3.Scale(f, b.Lengths()))
}

// Subscribe registers fn to be called after each geometry change. The returned
// function removes the subscription and is safe to call more than once.
func (b *Box) Subscribe(fn func()) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Box) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Wrap maps p into the primary cell.
func (b *Box) Wrap(p r3.Vec) r3.Vec {
	l := b.Lengths()
	return r3.Vec{X: wrap1(p.X, l.X), Y: wrap1(p.Y, l.Y), Z: wrap1(p.Z, l.Z)}
}

func wrap1(x, l float64) float64 {
	x -= l * math.Floor(x/l+0.5)
	if x >= 0.5*l {
		x -= l
	}
	return x
}
