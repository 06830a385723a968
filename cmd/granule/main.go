package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/granule/internal/config"
	"github.com/san-kum/granule/internal/record"
	"github.com/san-kum/granule/internal/viz"
)

var (
	dataDir string

	configFile  string
	outDir      string
	dt          float64
	maxDt       float64
	skinDepth   float64
	targetSteps int
	duration    float64
	startRec    float64
	fps         float64
	seed        int64
	live        bool

	observerName string
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// errConfig marks configuration failures so main can exit with status 1
// instead of the runtime status 2.
var errConfig = errors.New("configuration error")

func main() {
	rootCmd := &cobra.Command{
		Use:           "granule",
		Short:         "granular molecular dynamics engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".granule", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&outDir, "out", "", "output directory (default under data dir)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "initial timestep")
	runCmd.Flags().Float64Var(&maxDt, "max-dt", 0, "maximum timestep")
	runCmd.Flags().Float64Var(&skinDepth, "skin", 0, "neighbor skin depth")
	runCmd.Flags().IntVar(&targetSteps, "target-steps", 0, "steps per characteristic length")
	runCmd.Flags().Float64Var(&duration, "time", 0, "simulated time")
	runCmd.Flags().Float64Var(&startRec, "start-rec", 0, "time to start recording")
	runCmd.Flags().Float64Var(&fps, "fps", 0, "observer frames per unit time")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().BoolVar(&live, "live", false, "interactive live view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded observer graph",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&observerName, "observer", "KE", "observer to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print a run summary",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			names := config.ListPresets()
			sort.Strings(names)
			for _, n := range names {
				fmt.Println(n)
			}
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error: ")+err.Error())
		if errors.Is(err, errConfig) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func loadConfig(args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case len(args) == 1:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", errConfig, args[0])
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errConfig, err)
		}
	default:
		cfg = config.DefaultConfig()
	}

	// Flag overrides.
	if dt > 0 {
		cfg.Dt = dt
	}
	if maxDt > 0 {
		cfg.MaxDt = maxDt
	}
	if skinDepth > 0 {
		cfg.SkinDepth = skinDepth
	}
	if targetSteps > 0 {
		cfg.TargetSteps = targetSteps
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if startRec > 0 {
		cfg.StartRecTime = startRec
	}
	if fps > 0 {
		cfg.FPS = fps
	}
	if cfg.Seed == 0 {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	eng, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", errConfig, err)
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Join(dataDir, fmt.Sprintf("run_%d", time.Now().Unix()))
	}

	fmt.Println(titleStyle.Render("granule") + dimStyle.Render(fmt.Sprintf("  %d particles, t=%g", eng.Ctx().Store.Number(), cfg.Duration)))

	var runErr error
	if live {
		if err := eng.Prepare(cfg.Duration); err != nil {
			return err
		}
		if err := viz.RunLive(eng, 64); err != nil {
			return err
		}
		runErr = eng.Ctx().Err()
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		runErr = eng.Run(ctx, cfg.Duration)
	}

	// Write artifacts even when the run aborted.
	if err := record.WriteRun(dir, eng, os.Args); err != nil && runErr == nil {
		runErr = err
	}

	c := eng.Ctx()
	if runErr != nil {
		fmt.Println(failStyle.Render("aborted: ") + runErr.Error())
		return runErr
	}
	fmt.Println(okStyle.Render("done") + dimStyle.Render(fmt.Sprintf(
		"  %d steps, simulated %.4g, wrote %s", c.Iter, c.Total, dir)))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println(dimStyle.Render("no runs"))
			return nil
		}
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tOBSERVERS")
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dataDir, e.Name(), "info.csv")); err != nil {
			continue
		}
		subs, _ := os.ReadDir(filepath.Join(dataDir, e.Name()))
		names := make([]string, 0, len(subs))
		for _, s := range subs {
			if s.IsDir() {
				names = append(names, s.Name())
			}
		}
		fmt.Fprintf(w, "%s\t%v\n", e.Name(), names)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	path := filepath.Join(dataDir, args[0], observerName, observerName+".csv")
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return err
	}
	if len(records) < 2 {
		return fmt.Errorf("no frames recorded in %s", path)
	}
	values := make([]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return fmt.Errorf("observer %s has no scalar column to plot", observerName)
	}
	fmt.Println(asciigraph.Plot(values, asciigraph.Height(12), asciigraph.Width(70),
		asciigraph.Caption(observerName)))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(filepath.Join(dataDir, args[0], "run_summary.txt"))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
