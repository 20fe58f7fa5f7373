package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pppm/internal/report"
)

var (
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	sweepLive  bool
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "rescale the box step by step and recompute",
		RunE:  runSweep,
	}
	cmd.Flags().Float64Var(&sweepFrom, "scale-from", 0.9, "first scale factor")
	cmd.Flags().Float64Var(&sweepTo, "scale-to", 1.1, "last scale factor")
	cmd.Flags().IntVar(&sweepSteps, "steps", 10, "number of box sizes")
	cmd.Flags().BoolVar(&sweepLive, "live", false, "show progress in a live terminal view")
	return cmd
}

// sweeper rescales box and positions affinely from their initial values.
type sweeper struct {
	s       *session
	base    r3.Vec
	initial []r3.Vec
	from    float64
	step    float64
}

func newSweeper(s *session, from, to float64, steps int) (*sweeper, error) {
	snap, err := s.set.Acquire()
	if err != nil {
		return nil, err
	}
	initial := append([]r3.Vec(nil), snap.Pos...)
	if err := s.set.Release(); err != nil {
		return nil, err
	}

	step := 0.0
	if steps > 1 {
		step = (to - from) / float64(steps-1)
	}
	return &sweeper{s: s, base: s.box.Lengths(), initial: initial, from: from, step: step}, nil
}

func (sw *sweeper) Step(i int) (report.SweepPoint, error) {
	scale := sw.from + float64(i)*sw.step
	if err := sw.s.box.SetLengths(r3.Scale(scale, sw.base)); err != nil {
		return report.SweepPoint{}, err
	}
	for j, p := range sw.initial {
		if err := sw.s.set.SetPosition(j, r3.Scale(scale, p)); err != nil {
			return report.SweepPoint{}, err
		}
	}

	rebuilt := sw.s.engine.Dirty()
	if err := sw.s.engine.Compute(uint64(i)); err != nil {
		return report.SweepPoint{}, err
	}
	return report.SweepPoint{
		Scale:   scale,
		Volume:  sw.s.box.Volume(),
		Energy:  sw.s.engine.Energy(),
		Virial:  sw.s.engine.Virial(),
		Rebuilt: rebuilt,
	}, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepSteps < 1 {
		return fmt.Errorf("sweep needs at least 1 step, got %d", sweepSteps)
	}
	if !(sweepFrom > 0) || !(sweepTo > 0) {
		return fmt.Errorf("scale factors must be positive")
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	sw, err := newSweeper(s, sweepFrom, sweepTo, sweepSteps)
	if err != nil {
		return err
	}

	if sweepLive {
		final, err := tea.NewProgram(report.NewSweepModel(s.name+" sweep", sweepSteps, sw.Step)).Run()
		if err != nil {
			return err
		}
		m := final.(report.SweepModel)
		if m.Err() != nil {
			return m.Err()
		}
		fmt.Print(report.RenderSweep(m.Points()))
		return nil
	}

	points := make([]report.SweepPoint, 0, sweepSteps)
	for i := 0; i < sweepSteps; i++ {
		p, err := sw.Step(i)
		if err != nil {
			return err
		}
		s.logger.Debug("sweep step", "scale", p.Scale, "energy", p.Energy)
		points = append(points, p)
	}
	fmt.Print(report.RenderSweep(points))
	return nil
}
