package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/pppm/internal/config"
	"github.com/san-kum/pppm/internal/optim"
	"github.com/san-kum/pppm/internal/particles"
)

var (
	tuneTarget float64
	tuneWrite  string
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "pick the cheapest mesh parameters meeting an error target",
		RunE:  runTune,
	}
	cmd.Flags().Float64Var(&tuneTarget, "target", 1e-4, "largest acceptable RMS force error")
	cmd.Flags().StringVar(&tuneWrite, "write", "", "save the tuned configuration to this yaml path")
	return cmd
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	set, err := cfg.NewParticles()
	if err != nil {
		return err
	}
	snap, err := set.Acquire()
	if err != nil {
		return err
	}
	_, q2 := particles.ChargeSums(snap.Charge)
	n := snap.Len()
	if err := set.Release(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, est, err := optim.Tune(ctx, optim.DefaultTuneSpace(cfg.PPPM.Rcut), cfg.Lengths(), n, q2, tuneTarget)
	if err != nil {
		return err
	}

	fmt.Printf("grid   %dx%dx%d\n", p.Nx, p.Ny, p.Nz)
	fmt.Printf("order  %d\n", p.Order)
	fmt.Printf("kappa  %g\n", p.Kappa)
	fmt.Printf("rms    %.3e (mesh %.3e, real %.3e)\n", est.RMS, est.LongRange, est.ShortRange)

	if tuneWrite != "" {
		cfg.PPPM = config.PPPMConfig{Nx: p.Nx, Ny: p.Ny, Nz: p.Nz, Order: p.Order, Kappa: p.Kappa, Rcut: p.Rcut}
		if err := os.MkdirAll(filepath.Dir(tuneWrite), 0755); err != nil {
			return err
		}
		if err := config.Save(tuneWrite, cfg); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", tuneWrite)
	}
	return nil
}
