package particles

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Dipole places charges +q and -q at (-d/2, 0, 0) and (+d/2, 0, 0).
func Dipole(d, q float64) *Set {
	s := NewSet(2)
	s.Add(r3.Vec{X: -d / 2}, q)
	s.Add(r3.Vec{X: d / 2}, -q)
	return s
}

// RockSalt fills a box of lengths l with an n×n×n simple-cubic lattice of
// alternating unit charges. n must be even for the lattice to be neutral.
func RockSalt(l r3.Vec, n int) (*Set, error) {
	if n <= 0 || n%2 != 0 {
		return nil, fmt.Errorf("rock salt lattice needs a positive even side count, got %d", n)
	}
	s := NewSet(n * n * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				q := 1.0
				if (i+j+k)%2 == 1 {
					q = -1.0
				}
				p := r3.Vec{
					X: -l.X/2 + float64(i)*l.X/float64(n),
					Y: -l.Y/2 + float64(j)*l.Y/float64(n),
					Z: -l.Z/2 + float64(k)*l.Z/float64(n),
				}
				s.Add(p, q)
			}
		}
	}
	return s, nil
}

// RandomNeutral scatters n/2 positive and n/2 negative unit charges uniformly
// in the box. n must be even.
func RandomNeutral(l r3.Vec, n int, seed int64) (*Set, error) {
	if n <= 0 || n%2 != 0 {
		return nil, fmt.Errorf("random neutral set needs a positive even count, got %d", n)
	}
	rng := rand.New(rand.NewSource(seed))
	s := NewSet(n)
	for i := 0; i < n; i++ {
		q := 1.0
		if i%2 == 1 {
			q = -1.0
		}
		p := r3.Vec{
			X: (rng.Float64() - 0.5) * l.X,
			Y: (rng.Float64() - 0.5) * l.Y,
			Z: (rng.Float64() - 0.5) * l.Z,
		}
		s.Add(p, q)
	}
	return s, nil
}
