package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/pppm/internal/config"
	"github.com/san-kum/pppm/internal/metrics"
	"github.com/san-kum/pppm/internal/particles"
	"github.com/san-kum/pppm/internal/pppm"
	"github.com/san-kum/pppm/internal/report"
	"github.com/san-kum/pppm/internal/storage"
)

var (
	save       bool
	exportPath string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "compute long-range forces once and print a summary",
		RunE:  runOnce,
	}
	cmd.Flags().BoolVar(&save, "save", false, "store the run in the data directory")
	cmd.Flags().StringVar(&exportPath, "export", "", "write forces as JSON to this path")
	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	start := time.Now()
	if err := s.engine.Compute(0); err != nil {
		return err
	}
	elapsed := time.Since(start)

	ms := metrics.Standard()
	metrics.ObserveAll(ms, s.engine.Forces())

	summary := report.Summary{
		Name:      s.name,
		Lengths:   s.box.Lengths(),
		Params:    s.engine.Params(),
		Particles: s.set.Len(),
		Energy:    s.engine.Energy(),
		Virial:    s.engine.Virial(),
		NetCharge: s.engine.NetCharge(),
		Estimate:  s.engine.ErrorEstimate(),
		Metrics:   metrics.Values(ms),
	}
	fmt.Println(summary.Render())
	fmt.Printf("completed in %v\n", elapsed)

	if !save && exportPath == "" {
		return nil
	}

	snap, err := s.set.Acquire()
	if err != nil {
		return err
	}
	records := storage.Records(snap, s.engine.Forces())
	if err := s.set.Release(); err != nil {
		return err
	}

	meta := runMetadata(s, summary)
	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, records)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	if exportPath != "" {
		if err := storage.ExportJSON(exportPath, meta, records); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", exportPath)
	}
	return nil
}

func runMetadata(s *session, sum report.Summary) storage.RunMetadata {
	p := sum.Params
	return storage.RunMetadata{
		Name:     s.name,
		Box:      [3]float64{sum.Lengths.X, sum.Lengths.Y, sum.Lengths.Z},
		Grid:     [3]int{p.Nx, p.Ny, p.Nz},
		Order:    p.Order,
		Kappa:    p.Kappa,
		Rcut:     p.Rcut,
		Energy:   sum.Energy,
		Virial:   sum.Virial,
		RMSError: sum.Estimate.RMS,
		Metrics:  sum.Metrics,
	}
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "estimate the RMS force error of a parameter set",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			q, q2 := particles.ChargeSums(snap.Charge)
			n := snap.Len()
			if err := set.Release(); err != nil {
				return err
			}

			est := pppm.EstimateError(cfg.Params(), cfg.Lengths(), n, q2)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "particles\t%d\n", n)
			fmt.Fprintf(w, "net charge\t%g\n", q)
			fmt.Fprintf(w, "mesh error x/y/z\t%.3e / %.3e / %.3e\n", est.PerAxis.X, est.PerAxis.Y, est.PerAxis.Z)
			fmt.Fprintf(w, "mesh error\t%.3e\n", est.LongRange)
			fmt.Fprintf(w, "real-space error\t%.3e\n", est.ShortRange)
			fmt.Fprintf(w, "rms error\t%.3e\n", est.RMS)
			if est.TooHigh() {
				fmt.Fprintf(w, "warning\tabove %g, increase grid or order\n", pppm.RMSWarnThreshold)
			}
			return w.Flush()
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARTICLES\tBOX\tGRID\tORDER\tKAPPA")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				source := p.Particles.Kind
				if p.Particles.N > 0 {
					source = fmt.Sprintf("%s(%d)", source, p.Particles.N)
				}
				fmt.Fprintf(w, "%s\t%s\t%gx%gx%g\t%dx%dx%d\t%d\t%g\n",
					name, source,
					p.Box.Lx, p.Box.Ly, p.Box.Lz,
					p.PPPM.Nx, p.PPPM.Ny, p.PPPM.Nz,
					p.PPPM.Order, p.PPPM.Kappa)
			}
			return w.Flush()
		},
	}
}
