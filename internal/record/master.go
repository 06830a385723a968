package record

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/granule/internal/sim"
)

// WriteRun writes the per-run directory: info.csv with the bounds,
// run_summary.txt with timing and statistics, and one subdirectory per
// observer. It is called after post-integrate, including on aborted runs,
// so whatever was collected gets flushed.
func WriteRun(dir string, e *sim.Engine, command []string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	c := e.Ctx()

	if err := writeInfo(dir, c); err != nil {
		return err
	}
	if err := writeSummary(dir, e, command); err != nil {
		return err
	}

	var firstErr error
	for _, o := range e.Observers() {
		if err := o.Write(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// writeInfo writes the dimension count and one min,max line per axis.
func writeInfo(dir string, c *sim.Ctx) error {
	f, err := os.Create(filepath.Join(dir, "info.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Fprintf(f, "%d\n", c.Dim)
	for d := 0; d < c.Dim; d++ {
		fmt.Fprintf(f, "%g,%g\n", c.Bounds.Min[d], c.Bounds.Max[d])
	}
	return nil
}

func writeSummary(dir string, e *sim.Engine, command []string) error {
	f, err := os.Create(filepath.Join(dir, "run_summary.txt"))
	if err != nil {
		return err
	}
	defer f.Close()

	c := e.Ctx()
	t := c.Timers
	t.StopRun()
	wall := t.Wall()

	fmt.Fprintln(f, "**********          SUMMARY          **********")
	fmt.Fprintln(f, "***********************************************")
	fmt.Fprintln(f)
	if len(command) > 0 {
		fmt.Fprintln(f, strings.Join(command, " "))
		fmt.Fprintln(f)
	}

	fmt.Fprintln(f, "Timing and performance:")
	fmt.Fprintf(f, "  - Wall time:                %v\n", wall.Round(time.Microsecond))
	fmt.Fprintf(f, "  - Time simulated:           %g\n", c.Total)
	fmt.Fprintf(f, "  - Requested time:           %g\n", e.TotalRequestedTime())
	if wall > 0 {
		fmt.Fprintf(f, "  - Ratio (sim/wall):         %g\n", c.Total/wall.Seconds())
	}
	fmt.Fprintf(f, "  - Iterations:               %d\n", c.Iter)
	for p := sim.PhasePreForces; p <= sim.PhaseObservers; p++ {
		fmt.Fprintf(f, "  - %-26s%v\n", p.String()+":", t.Total(p).Round(time.Microsecond))
	}
	fmt.Fprintf(f, "  - %-26s%v\n", "uncounted:", t.Uncounted().Round(time.Microsecond))
	fmt.Fprintln(f)

	fmt.Fprintln(f, "Simulation parameters:")
	fmt.Fprintf(f, "  - Time step:                %g\n", c.DT())
	bcs := make([]string, len(c.BCs))
	for d, b := range c.BCs {
		bcs[d] = b.String()
	}
	fmt.Fprintf(f, "  - Boundaries:               %s\n", strings.Join(bcs, ","))
	fmt.Fprintln(f)

	fmt.Fprintln(f, "Particles:")
	fmt.Fprintf(f, "  - Number:                   %d\n", c.Store.Number())
	fmt.Fprintf(f, "  - Mean radius:              %g\n", meanRadius(c))
	if c.Forces != nil {
		fmt.Fprintf(f, "  - Types:                    %d\n", c.Forces.NTypes())
	}
	fmt.Fprintln(f)

	if rep, ok := c.Handler.(sim.DomainStatsReporter); ok {
		st := rep.DomainStats()
		fmt.Fprintln(f, "Domain:")
		fmt.Fprintf(f, "  - Grid dims:                %v\n", st.Dims)
		fmt.Fprintf(f, "  - Cell widths:              %v\n", st.Widths)
		fmt.Fprintf(f, "  - Cutoff:                   %g\n", st.Cutoff)
		fmt.Fprintf(f, "  - Skin depth:               %g\n", st.SkinDepth)
		fmt.Fprintf(f, "  - Remakes:                  %d\n", st.Remakes)
		fmt.Fprintf(f, "  - Missed targets:           %d\n", st.MissedTarget)
		fmt.Fprintf(f, "  - Average miss:             %g\n", st.AverageMiss)
	}
	return nil
}

func meanRadius(c *sim.Ctx) float64 {
	s := c.Store
	if s.Number() == 0 {
		return 0
	}
	sum := 0.0
	for n := 0; n < s.Size(); n++ {
		if s.Alive(n) {
			sum += s.Sg(n)
		}
	}
	return sum / float64(s.Number())
}
