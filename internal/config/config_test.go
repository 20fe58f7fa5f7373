package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pppm/internal/pppm"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Particles.Kind != KindDipole {
		t.Errorf("expected dipole particles, got %s", cfg.Particles.Kind)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	p := cfg.Params()
	if p.Nx != DefaultGrid || p.Order != DefaultOrder {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("nacl")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles.N != 8 {
		t.Errorf("expected n 8, got %d", cfg.Particles.N)
	}

	cfg.Particles.N = 2
	if Presets["nacl"].Particles.N != 8 {
		t.Error("modifying a preset copy changed the table")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d names, got %d", len(Presets), len(names))
	}
	for _, name := range names {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
		if _, err := cfg.NewParticles(); err != nil {
			t.Errorf("preset %s particles: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		inner  error
	}{
		{"zero box", func(c *Config) { c.Box.Ly = 0 }, nil},
		{"bad grid", func(c *Config) { c.PPPM.Nz = 12 }, pppm.ErrGridSize},
		{"bad order", func(c *Config) { c.PPPM.Order = 9 }, pppm.ErrOrderTooHigh},
		{"negative workers", func(c *Config) { c.Workers = -1 }, nil},
		{"odd lattice", func(c *Config) { c.Particles.Kind = KindRockSalt; c.Particles.N = 3 }, nil},
		{"empty explicit", func(c *Config) { c.Particles.Kind = KindExplicit }, nil},
		{"unknown kind", func(c *Config) { c.Particles.Kind = "gas" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if tt.inner != nil && !errors.Is(err, tt.inner) {
				t.Errorf("expected %v inside %v", tt.inner, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("random")
	cfg.Workers = 3

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Particles.N != 1000 || loaded.Particles.Seed != 42 || loaded.Workers != 3 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.PPPM != cfg.PPPM {
		t.Errorf("pppm section differs: %+v vs %+v", loaded.PPPM, cfg.PPPM)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("pppm:\n  nx: 32\nparticles:\n  kind: explicit\n  list:\n    - {x: 1, q: 1}\n    - {x: -1, q: -1}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PPPM.Nx != 32 || cfg.PPPM.Ny != DefaultGrid {
		t.Errorf("expected nx 32 and default ny, got %+v", cfg.PPPM)
	}
	set, err := cfg.NewParticles()
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 2 {
		t.Errorf("expected 2 particles, got %d", set.Len())
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
