package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/pppm/internal/box"
	"github.com/san-kum/pppm/internal/compute"
	"github.com/san-kum/pppm/internal/config"
	"github.com/san-kum/pppm/internal/logging"
	"github.com/san-kum/pppm/internal/particles"
	"github.com/san-kum/pppm/internal/pppm"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	workers    int
	// box
	boxLen float64
	lx     float64
	ly     float64
	lz     float64
	// mesh
	grid  int
	nx    int
	ny    int
	nz    int
	order int
	kappa float64
	rcut  float64
	// particles
	kind       string
	count      int
	seed       int64
	separation float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "pppm",
		Short:        "particle-particle particle-mesh electrostatics",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".pppm", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.IntVar(&workers, "workers", 0, "worker goroutines (0 = one per CPU)")
	pf.Float64Var(&boxLen, "box", config.DefaultLength, "cubic box length")
	pf.Float64Var(&lx, "lx", config.DefaultLength, "box length along x")
	pf.Float64Var(&ly, "ly", config.DefaultLength, "box length along y")
	pf.Float64Var(&lz, "lz", config.DefaultLength, "box length along z")
	pf.IntVar(&grid, "grid", config.DefaultGrid, "grid points along every axis")
	pf.IntVar(&nx, "nx", config.DefaultGrid, "grid points along x")
	pf.IntVar(&ny, "ny", config.DefaultGrid, "grid points along y")
	pf.IntVar(&nz, "nz", config.DefaultGrid, "grid points along z")
	pf.IntVar(&order, "order", config.DefaultOrder, "charge assignment order (1-7)")
	pf.Float64Var(&kappa, "kappa", config.DefaultKappa, "Ewald splitting parameter")
	pf.Float64Var(&rcut, "rcut", config.DefaultRcut, "real-space cutoff for the error estimate")
	pf.StringVar(&kind, "particles", config.KindDipole, "particle source (dipole, nacl, random)")
	pf.IntVar(&count, "n", 0, "particle count (random) or lattice side (nacl)")
	pf.Int64Var(&seed, "seed", 1, "random seed")
	pf.Float64Var(&separation, "sep", config.DefaultSep, "dipole separation")

	rootCmd.AddCommand(
		newRunCmd(),
		newEstimateCmd(),
		newTuneCmd(),
		newScanCmd(),
		newSweepCmd(),
		newPresetsCmd(),
		newListCmd(),
		newShowCmd(),
		newForcesCmd(),
	)
	return rootCmd
}

// loadConfig resolves defaults, then the preset, then the config file, then
// explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := cfg.Particles.Kind

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		name = loaded.Particles.Kind
	}

	applyFlags(cmd, cfg)
	if cmd.Flags().Changed("particles") {
		name = cfg.Particles.Kind
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("box") {
		cfg.Box = config.BoxConfig{Lx: boxLen, Ly: boxLen, Lz: boxLen}
	}
	if changed("lx") {
		cfg.Box.Lx = lx
	}
	if changed("ly") {
		cfg.Box.Ly = ly
	}
	if changed("lz") {
		cfg.Box.Lz = lz
	}
	if changed("grid") {
		cfg.PPPM.Nx, cfg.PPPM.Ny, cfg.PPPM.Nz = grid, grid, grid
	}
	if changed("nx") {
		cfg.PPPM.Nx = nx
	}
	if changed("ny") {
		cfg.PPPM.Ny = ny
	}
	if changed("nz") {
		cfg.PPPM.Nz = nz
	}
	if changed("order") {
		cfg.PPPM.Order = order
	}
	if changed("kappa") {
		cfg.PPPM.Kappa = kappa
	}
	if changed("rcut") {
		cfg.PPPM.Rcut = rcut
	}
	if changed("particles") {
		cfg.Particles.Kind = kind
	}
	if changed("n") {
		cfg.Particles.N = count
	}
	if changed("seed") {
		cfg.Particles.Seed = seed
	}
	if changed("sep") {
		cfg.Particles.Separation = separation
	}
	if changed("workers") {
		cfg.Workers = workers
	}
	if changed("log-level") {
		cfg.LogLevel = logLevel
	}
}

// session is a configured engine with the box and particles it acts on.
type session struct {
	cfg    *config.Config
	name   string
	logger *log.Logger
	box    *box.Box
	set    *particles.Set
	engine *pppm.Engine
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	b, err := cfg.NewBox()
	if err != nil {
		return nil, err
	}
	set, err := cfg.NewParticles()
	if err != nil {
		return nil, err
	}

	backend := compute.Default()
	if cfg.Workers > 0 {
		backend = compute.NewCPUBackendWorkers(cfg.Workers)
	}

	engine := pppm.New(b, set, pppm.WithLogger(logger), pppm.WithBackend(backend))
	if err := engine.SetParams(cfg.Params()); err != nil {
		engine.Close()
		return nil, err
	}

	return &session{cfg: cfg, name: name, logger: logger, box: b, set: set, engine: engine}, nil
}

func (s *session) Close() { s.engine.Close() }
