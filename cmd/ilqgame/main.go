package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/tmn-dev/ilqgame/internal/config"
	"github.com/tmn-dev/ilqgame/internal/dynamics"
	"github.com/tmn-dev/ilqgame/internal/game"
	"github.com/tmn-dev/ilqgame/internal/metrics"
	"github.com/tmn-dev/ilqgame/internal/scenario"
	"github.com/tmn-dev/ilqgame/internal/solver"
	"github.com/tmn-dev/ilqgame/internal/store"
	"github.com/tmn-dev/ilqgame/internal/viz"
)

var (
	dataDir    string
	dt         float64
	horizon    int
	iterations int
	costTol    float64
	stratTol   float64
	backtracks int
	stepScale  float64
	workers    int
	configFile string
	preset     string
	exportPath string
	noSave     bool
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ilqgame",
		Short: "iterative linear-quadratic game solver",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ilqgame", "data directory")

	solveCmd := &cobra.Command{
		Use:   "solve [scenario]",
		Short: "solve a game scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	solveCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planning horizon (steps)")
	solveCmd.Flags().IntVar(&iterations, "iters", 0, "max outer iterations (0 = default)")
	solveCmd.Flags().Float64Var(&costTol, "cost-tol", 0, "relative cost convergence tolerance (0 = default)")
	solveCmd.Flags().Float64Var(&stratTol, "strategy-tol", 0, "feedforward norm convergence tolerance (0 = default)")
	solveCmd.Flags().IntVar(&backtracks, "backtracks", 0, "line search backtracks (0 = default)")
	solveCmd.Flags().Float64Var(&stepScale, "step", 0, "initial line search scale (0 = default)")
	solveCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = default)")
	solveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	solveCmd.Flags().StringVar(&exportPath, "export", "", "export result JSON to path ('-' for stdout)")
	solveCmd.Flags().BoolVar(&noSave, "no-save", false, "skip persisting the run")
	solveCmd.Flags().IntVar(&plotWidth, "plot-width", 72, "trajectory plot width")
	solveCmd.Flags().IntVar(&plotHeight, "plot-height", 22, "trajectory plot height")

	replayCmd := &cobra.Command{
		Use:   "replay [scenario]",
		Short: "solve a scenario and replay the iterations interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReplay,
	}
	replayCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	replayCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "planning horizon (steps)")
	replayCmd.Flags().IntVar(&iterations, "iters", 0, "max outer iterations (0 = default)")
	replayCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	replayCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the cost history of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range scenario.NewRegistry().Names() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(solveCmd, replayCmd, listCmd, plotCmd, exportCmd, scenariosCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildConfig merges preset, config file, and command-line flags, in that
// order of increasing precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p, ok := config.Preset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s", preset)
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if iterations > 0 {
		cfg.Solver.MaxIterations = iterations
	}
	if costTol > 0 {
		cfg.Solver.CostTolerance = costTol
	}
	if stratTol > 0 {
		cfg.Solver.StrategyTolerance = stratTol
	}
	if backtracks > 0 {
		cfg.Solver.MaxBacktracks = backtracks
	}
	if stepScale > 0 {
		cfg.Solver.InitialStepScale = stepScale
	}
	if workers > 0 {
		cfg.Solver.Workers = workers
	}

	return cfg, nil
}

func buildProblem(cmd *cobra.Command, args []string) (*config.Config, *scenario.Problem, error) {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	prob, err := scenario.NewRegistry().Build(cfg.Scenario, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, prob, nil
}

// solveCtx cancels the solve on SIGINT so a long solve can be interrupted
// and still report its last accepted iterate.
func solveCtx() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, prob, err := buildProblem(cmd, args)
	if err != nil {
		return err
	}

	slv, err := prob.NewSolver(cfg.Solver)
	if err != nil {
		return err
	}

	ctx, cancel := solveCtx()
	defer cancel()

	fmt.Printf("solving %s (horizon %d, dt %.3g)...\n", prob.Name, prob.Horizon, cfg.Dt)
	start := time.Now()
	res, solveErr := slv.Solve(ctx)
	elapsed := time.Since(start)

	if res == nil {
		return solveErr
	}

	fmt.Printf("finished in %v\n\n", elapsed.Round(time.Millisecond))
	fmt.Println(viz.Report(prob, res))
	if res.Op != nil {
		fmt.Println(viz.TrajectoryPlot(prob, res, plotWidth, plotHeight))
		printMetrics(prob, res)
	}

	if !noSave && res.Op != nil {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(prob.Name, cfg.Dt, res)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if exportPath != "" && res.Op != nil {
		path := exportPath
		if path == "-" {
			path = ""
		}
		if err := store.ExportJSON(path, prob.Name, cfg.Dt, res); err != nil {
			return err
		}
	}

	return solveErr
}

func printMetrics(prob *scenario.Problem, res *solver.Result) {
	if res.Op == nil {
		return
	}
	fmt.Println("metrics:")
	fmt.Printf("  control_effort: %.6f\n", metrics.ControlEffort(res.Op))

	conc, ok := prob.Dynamics.(*dynamics.Concatenated)
	if !ok {
		return
	}
	if prob.GoalRadius > 0 {
		o := conc.StateOffset(game.PlayerIndex(0))
		d := metrics.TerminalDistance(res.Op, o, o+1, prob.GoalX, prob.GoalY)
		fmt.Printf("  terminal_goal_distance: %.6f\n", d)
	}
	if conc.NumPlayers() >= 2 {
		oi := conc.StateOffset(game.PlayerIndex(0))
		oj := conc.StateOffset(game.PlayerIndex(1))
		sep := metrics.MinSeparation(res.Op, oi, oi+1, oj, oj+1)
		fmt.Printf("  min_separation: %.6f\n", sep)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, prob, err := buildProblem(cmd, args)
	if err != nil {
		return err
	}

	slv, err := prob.NewSolver(cfg.Solver)
	if err != nil {
		return err
	}

	ctx, cancel := solveCtx()
	defer cancel()

	res, solveErr := slv.Solve(ctx)
	if res == nil || res.Log.Len() == 0 {
		return solveErr
	}
	return viz.RunReplay(prob, res)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTATUS\tITERS\tCOST")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.6g\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Status,
			run.Iterations,
			run.TotalCost,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	costs, err := st.LoadCosts(args[0])
	if err != nil {
		return err
	}
	if len(costs) < 2 {
		fmt.Println("not enough iterations to plot")
		return nil
	}

	fmt.Printf("%s: %s after %d iterations, total cost %.6g\n\n",
		meta.ID, meta.Status, meta.Iterations, meta.TotalCost)
	fmt.Println(asciigraph.Plot(costs,
		asciigraph.Height(12),
		asciigraph.Width(64),
		asciigraph.Caption("total cost per iteration")))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
