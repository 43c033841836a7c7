package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/viz"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool
	// graph source
	graphFile string
	format    string
	generate  string
	// layout settings
	dimensions      int
	gravity         float64
	theta           float64
	dragCoeff       float64
	springCoeff     float64
	springLength    float64
	timeStep        float64
	stableThreshold float64
	seed            int64
	workers         int
	// run control
	maxSteps int
	runs     int
	// Config file
	configFile string
	// Preset name
	preset string
	// live view
	stepsPerTick int
	themeName    string
	// export
	outFile   string
	svgWidth  int
	svgHeight int
	movement  bool
	// bench
	benchSteps int
	// analyze
	xAxis, yAxis int
	// tune
	tuneParams []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "forcelayout",
		Short:        "n-dimensional force-directed graph layout",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".forcelayout", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON lines")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "lay out a graph until it settles and store the result",
		Args:  cobra.NoArgs,
		RunE:  runLayout,
	}
	addLayoutFlags(runCmd)
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 1000, "step limit")
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent runs with consecutive seeds; the calmest is stored")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot movement per step",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export final positions to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final layout as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().BoolVar(&movement, "movement", false, "plot movement per step instead of the layout")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "lay out a graph with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addLayoutFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "speed", 1, "steps per frame")
	liveCmd.Flags().StringVar(&themeName, "theme", viz.ThemeTerminal.Name, "color theme")

	benchCmd := &cobra.Command{
		Use:   "bench [generator...]",
		Short: "measure step throughput",
		RunE:  benchLayout,
	}
	addLayoutFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per measurement")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "measure edge lengths and convergence of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&xAxis, "x-axis", 0, "coordinate on the horizontal axis")
	analyzeCmd.Flags().IntVar(&yAxis, "y-axis", 1, "coordinate on the vertical axis")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search layout settings for the fastest convergence",
		Args:  cobra.NoArgs,
		RunE:  tuneLayout,
	}
	addLayoutFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&maxSteps, "max-steps", 1000, "step limit per combination")
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", nil, "parameter range, e.g. theta=0.4,0.8,1.2 (repeatable)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, liveCmd, benchCmd, analyzeCmd, tuneCmd, presetsCmd)
	return rootCmd
}

func addLayoutFlags(cmd *cobra.Command) {
	d := layout.DefaultSettings()
	f := cmd.Flags()
	f.StringVar(&graphFile, "graph", "", "graph file (yaml or edge list)")
	f.StringVar(&format, "format", "", "graph file format (yaml, edges); inferred from the extension when empty")
	f.StringVar(&generate, "generate", "", "generate a graph, e.g. grid:10x10, ring:20, tree:5")
	f.IntVar(&dimensions, "dims", d.Dimensions, "layout dimensions")
	f.Float64Var(&gravity, "gravity", d.Gravity, "repulsion strength (negative repels)")
	f.Float64Var(&theta, "theta", d.Theta, "Barnes-Hut opening angle")
	f.Float64Var(&dragCoeff, "drag", d.DragCoeff, "drag coefficient")
	f.Float64Var(&springCoeff, "spring-coeff", d.SpringCoeff, "spring stiffness")
	f.Float64Var(&springLength, "spring-length", d.SpringLength, "spring rest length")
	f.Float64Var(&timeStep, "time-step", d.TimeStep, "integration time step")
	f.Float64Var(&stableThreshold, "threshold", d.StableThreshold, "movement below which the layout is stable")
	f.Int64Var(&seed, "seed", d.Seed, "random seed")
	f.IntVar(&workers, "workers", d.Workers, "goroutines per pass (0 = all CPUs)")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
}
