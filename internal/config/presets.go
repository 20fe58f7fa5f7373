package config

import "sort"

var Presets = map[string]*Config{
	"dipole": {
		Box:       BoxConfig{Lx: 10, Ly: 10, Lz: 10},
		PPPM:      PPPMConfig{Nx: 16, Ny: 16, Nz: 16, Order: 5, Kappa: 0.3, Rcut: 3},
		Particles: ParticlesConfig{Kind: KindDipole, Separation: 3, Charge: 1},
		LogLevel:  DefaultLogLevel,
	},
	"dipole-fine": {
		Box:       BoxConfig{Lx: 10, Ly: 10, Lz: 10},
		PPPM:      PPPMConfig{Nx: 64, Ny: 64, Nz: 64, Order: 7, Kappa: 0.3, Rcut: 3},
		Particles: ParticlesConfig{Kind: KindDipole, Separation: 3, Charge: 1},
		LogLevel:  DefaultLogLevel,
	},
	"nacl": {
		Box:       BoxConfig{Lx: 8, Ly: 8, Lz: 8},
		PPPM:      PPPMConfig{Nx: 32, Ny: 32, Nz: 32, Order: 5, Kappa: 1.2, Rcut: 3},
		Particles: ParticlesConfig{Kind: KindRockSalt, N: 8},
		LogLevel:  DefaultLogLevel,
	},
	"random": {
		Box:       BoxConfig{Lx: 20, Ly: 20, Lz: 20},
		PPPM:      PPPMConfig{Nx: 32, Ny: 32, Nz: 32, Order: 5, Kappa: 0.35, Rcut: 9},
		Particles: ParticlesConfig{Kind: KindRandom, N: 1000, Seed: 42},
		LogLevel:  DefaultLogLevel,
	},
	"slab": {
		Box:       BoxConfig{Lx: 10, Ly: 10, Lz: 40},
		PPPM:      PPPMConfig{Nx: 16, Ny: 16, Nz: 64, Order: 5, Kappa: 0.4, Rcut: 5},
		Particles: ParticlesConfig{Kind: KindRandom, N: 200, Seed: 7},
		LogLevel:  DefaultLogLevel,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Particles.List = append([]ParticleConfig(nil), cfg.Particles.List...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
