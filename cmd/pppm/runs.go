package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/export"
	"github.com/san-kum/pppm/internal/pppm"
	"github.com/san-kum/pppm/internal/report"
	"github.com/san-kum/pppm/internal/storage"
)

var (
	forcesLimit  int
	forcesExport string
	forcesSVG    string
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tN\tGRID\tORDER\tENERGY\tRMS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%dx%dx%d\t%d\t%.6g\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Grid[0], run.Grid[1], run.Grid[2],
			run.Order,
			run.Energy,
			run.RMSError,
		)
	}

	return w.Flush()
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}

			records, err := st.LoadForces(args[0])
			if err != nil {
				return err
			}
			net := 0.0
			for _, r := range records {
				net += r.Charge
			}

			summary := report.Summary{
				Name:    meta.ID,
				Lengths: r3.Vec{X: meta.Box[0], Y: meta.Box[1], Z: meta.Box[2]},
				Params: pppm.Params{
					Nx: meta.Grid[0], Ny: meta.Grid[1], Nz: meta.Grid[2],
					Order: meta.Order, Kappa: meta.Kappa, Rcut: meta.Rcut,
				},
				Particles: meta.Particles,
				Energy:    meta.Energy,
				Virial:    meta.Virial,
				NetCharge: net,
				Estimate:  pppm.ErrorEstimate{RMS: meta.RMSError},
				Metrics:   meta.Metrics,
			}
			fmt.Println(summary.Render())
			return nil
		},
	}
}

func newForcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forces [run_id]",
		Short: "print the per-particle forces of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showForces,
	}
	cmd.Flags().IntVar(&forcesLimit, "limit", 20, "rows to print (0 = all)")
	cmd.Flags().StringVar(&forcesExport, "export", "", "write the run as JSON to this path")
	cmd.Flags().StringVar(&forcesSVG, "svg", "", "draw the xy projection with force lines as SVG")
	return cmd
}

func showForces(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	records, err := st.LoadForces(args[0])
	if err != nil {
		return err
	}

	if forcesExport != "" || forcesSVG != "" {
		meta, err := st.Load(args[0])
		if err != nil {
			return err
		}
		if forcesExport != "" {
			if err := storage.ExportJSON(forcesExport, *meta, records); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", forcesExport)
		}
		if forcesSVG != "" {
			if err := writeForcesSVG(forcesSVG, meta, records); err != nil {
				return err
			}
			fmt.Printf("saved %s\n", forcesSVG)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tX\tY\tZ\tQ\tFX\tFY\tFZ\tENERGY")
	for i, r := range records {
		if forcesLimit > 0 && i >= forcesLimit {
			fmt.Fprintf(w, "...\t%d more\n", len(records)-i)
			break
		}
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%+g\t%.6e\t%.6e\t%.6e\t%.6e\n",
			i, r.Pos.X, r.Pos.Y, r.Pos.Z, r.Charge, r.Force.X, r.Force.Y, r.Force.Z, r.Energy)
	}
	return w.Flush()
}

func writeForcesSVG(path string, meta *storage.RunMetadata, records []storage.Record) error {
	pos := make([]r3.Vec, len(records))
	charge := make([]float64, len(records))
	force := make([]r3.Vec, len(records))
	for i, r := range records {
		pos[i], charge[i], force[i] = r.Pos, r.Charge, r.Force
	}
	l := r3.Vec{X: meta.Box[0], Y: meta.Box[1], Z: meta.Box[2]}
	scale := 600 / math.Max(l.X, l.Y)
	svg := export.ParticlesToSVG(pos, charge, force, l, scale, 40)
	return os.WriteFile(path, []byte(svg), 0644)
}
