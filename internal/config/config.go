package config

import (
	"errors"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pppm/internal/box"
	"github.com/san-kum/pppm/internal/particles"
	"github.com/san-kum/pppm/internal/pppm"
)

const (
	DefaultLength   = 10.0
	DefaultGrid     = 16
	DefaultOrder    = 5
	DefaultKappa    = 0.3
	DefaultRcut     = 3.0
	DefaultSep      = 3.0
	DefaultLogLevel = "info"
)

const (
	KindDipole   = "dipole"
	KindRockSalt = "nacl"
	KindRandom   = "random"
	KindExplicit = "explicit"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Box       BoxConfig       `yaml:"box"`
	PPPM      PPPMConfig      `yaml:"pppm"`
	Particles ParticlesConfig `yaml:"particles"`
	Workers   int             `yaml:"workers"`
	LogLevel  string          `yaml:"log_level"`
}

type BoxConfig struct {
	Lx float64 `yaml:"lx"`
	Ly float64 `yaml:"ly"`
	Lz float64 `yaml:"lz"`
}

type PPPMConfig struct {
	Nx    int     `yaml:"nx"`
	Ny    int     `yaml:"ny"`
	Nz    int     `yaml:"nz"`
	Order int     `yaml:"order"`
	Kappa float64 `yaml:"kappa"`
	Rcut  float64 `yaml:"rcut"`
}

// ParticlesConfig selects how the particle set is built. Kind is one of
// dipole, nacl, random or explicit.
type ParticlesConfig struct {
	Kind       string           `yaml:"kind"`
	N          int              `yaml:"n"`
	Seed       int64            `yaml:"seed"`
	Separation float64          `yaml:"separation"`
	Charge     float64          `yaml:"charge"`
	List       []ParticleConfig `yaml:"list,omitempty"`
}

type ParticleConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
	Q float64 `yaml:"q"`
}

func DefaultConfig() *Config {
	return &Config{
		Box: BoxConfig{Lx: DefaultLength, Ly: DefaultLength, Lz: DefaultLength},
		PPPM: PPPMConfig{
			Nx: DefaultGrid, Ny: DefaultGrid, Nz: DefaultGrid,
			Order: DefaultOrder,
			Kappa: DefaultKappa,
			Rcut:  DefaultRcut,
		},
		Particles: ParticlesConfig{
			Kind:       KindDipole,
			Separation: DefaultSep,
			Charge:     1,
		},
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Params() pppm.Params {
	return pppm.Params{
		Nx: c.PPPM.Nx, Ny: c.PPPM.Ny, Nz: c.PPPM.Nz,
		Order: c.PPPM.Order,
		Kappa: c.PPPM.Kappa,
		Rcut:  c.PPPM.Rcut,
	}
}

func (c *Config) Lengths() r3.Vec {
	return r3.Vec{X: c.Box.Lx, Y: c.Box.Ly, Z: c.Box.Lz}
}

// Validate checks everything that can be checked without building the
// particle set.
func (c *Config) Validate() error {
	l := c.Lengths()
	if !(l.X > 0 && l.Y > 0 && l.Z > 0) {
		return fmt.Errorf("%w: box lengths must be positive, got %v", ErrInvalid, l)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}

	p := c.Particles
	switch p.Kind {
	case KindDipole:
		if !(p.Separation > 0) {
			return fmt.Errorf("%w: dipole separation must be positive", ErrInvalid)
		}
	case KindRockSalt, KindRandom:
		if p.N <= 0 || p.N%2 != 0 {
			return fmt.Errorf("%w: %s needs a positive even n, got %d", ErrInvalid, p.Kind, p.N)
		}
	case KindExplicit:
		if len(p.List) == 0 {
			return fmt.Errorf("%w: explicit particle list is empty", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown particle kind %q", ErrInvalid, p.Kind)
	}
	return nil
}

func (c *Config) NewBox() (*box.Box, error) {
	return box.New(c.Box.Lx, c.Box.Ly, c.Box.Lz)
}

func (c *Config) NewParticles() (*particles.Set, error) {
	p := c.Particles
	switch p.Kind {
	case KindDipole:
		q := p.Charge
		if q == 0 {
			q = 1
		}
		return particles.Dipole(p.Separation, q), nil
	case KindRockSalt:
		return particles.RockSalt(c.Lengths(), p.N)
	case KindRandom:
		return particles.RandomNeutral(c.Lengths(), p.N, p.Seed)
	case KindExplicit:
		set := particles.NewSet(len(p.List))
		for _, pc := range p.List {
			if err := set.Add(r3.Vec{X: pc.X, Y: pc.Y, Z: pc.Z}, pc.Q); err != nil {
				return nil, err
			}
		}
		return set, nil
	default:
		return nil, fmt.Errorf("%w: unknown particle kind %q", ErrInvalid, p.Kind)
	}
}
