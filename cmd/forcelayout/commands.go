package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/analysis"
	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/logging"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/optim"
	"github.com/san-kum/forcelayout/internal/sim"
	"github.com/san-kum/forcelayout/internal/storage"
	"github.com/san-kum/forcelayout/internal/viz"
)

// resolveConfig layers defaults, then the preset, then the config file,
// then every flag the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if !cfg.Apply(preset) {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	if changed("graph") {
		cfg.Graph.File = graphFile
	}
	if changed("format") {
		cfg.Graph.Format = format
	}
	if changed("generate") {
		cfg.Graph.Generate = generate
		if !changed("graph") {
			cfg.Graph.File = ""
		}
	}
	if changed("dims") {
		cfg.Layout.Dimensions = dimensions
	}
	if changed("gravity") {
		cfg.Layout.Gravity = gravity
	}
	if changed("theta") {
		cfg.Layout.Theta = theta
	}
	if changed("drag") {
		cfg.Layout.DragCoeff = dragCoeff
	}
	if changed("spring-coeff") {
		cfg.Layout.SpringCoeff = springCoeff
	}
	if changed("spring-length") {
		cfg.Layout.SpringLength = springLength
	}
	if changed("time-step") {
		cfg.Layout.TimeStep = timeStep
	}
	if changed("threshold") {
		cfg.Layout.StableThreshold = stableThreshold
	}
	if changed("seed") {
		cfg.Layout.Seed = seed
	}
	if changed("workers") {
		cfg.Layout.Workers = workers
	}
	if changed("max-steps") {
		cfg.Run.MaxSteps = maxSteps
	}
	if changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if logJSON {
		return logging.NewJSONLogger(cfg.LogLevel, os.Stderr)
	}
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	out := cmd.OutOrStdout()

	g, err := cfg.LoadGraph()
	if err != nil {
		return err
	}
	log.Debug("graph loaded", "source", cfg.Describe(), "nodes", g.NodeCount(), "links", g.LinkCount())

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runs < 1 {
		runs = 1
	}
	settings := cfg.Settings()
	settings.Workers = ensembleWorkers(settings.Workers, runs)
	layouts := make([]*layout.ForceLayout, runs)
	factory := func(s int64) (sim.Stepper, error) {
		ls := settings
		ls.Seed = s
		l, err := layout.New(g, ls, layout.WithLogger(log))
		if err != nil {
			return nil, err
		}
		layouts[s-settings.Seed] = l
		return l, nil
	}
	newMetrics := func() []sim.Metric { return metrics.Default(settings.StableThreshold) }

	fmt.Fprintf(out, "laying out %s (%d nodes, %d links, %d-D)...\n",
		cfg.Describe(), g.NodeCount(), g.LinkCount(), settings.Dimensions)

	results, err := sim.NewEnsemble(factory, newMetrics, runs, settings.Seed, log).Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}
	best := sim.Best(results)
	result, l := results[best], layouts[best]
	settings.Seed += int64(best)

	runID, err := st.Save(storage.Run{
		Graph:    cfg.Describe(),
		Settings: settings,
		Result:   result,
		Bodies:   l.Snapshots(),
		Links:    l.Springs(),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", result.Elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d (converged: %v)\n", result.Steps, result.Converged)
	if runs > 1 {
		fmt.Fprintf(out, "best of %d runs: seed %d\n", runs, settings.Seed)
	}
	printMetrics(out, result.Metrics)
	return nil
}

// ensembleWorkers splits the CPUs between concurrent runs when the worker
// count is left automatic. An explicit count is kept as given.
func ensembleWorkers(workers, runs int) int {
	if workers > 0 || runs <= 1 {
		return workers
	}
	return max(1, runtime.NumCPU()/runs)
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tGRAPH\tTIME\tNODES\tLINKS\tDIM\tSTEPS\tCONVERGED\tMOVEMENT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%v\t%.5f\n",
			run.ID,
			run.Graph,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nodes,
			run.Links,
			run.Settings.Dimensions,
			run.Steps,
			run.Converged,
			run.FinalMovement,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	movements, err := st.LoadMovement(runID)
	if err != nil {
		return err
	}
	if len(movements) == 0 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "graph: %s\n", meta.Graph)
	fmt.Fprintf(out, "steps: %d\n\n", len(movements))

	chart := asciigraph.Plot(movements,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("movement per step"),
	)
	fmt.Fprintln(out, chart)
	fmt.Fprintln(out)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	snaps, err := storage.New(dataDir).LoadPositions(args[0])
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	header := []string{"id", "mass"}
	for i := range snaps[0].Pos {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, s := range snaps {
		row := []string{strconv.FormatUint(s.ID, 10), strconv.FormatFloat(s.Mass, 'f', 6, 64)}
		for _, val := range s.Pos {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// loadRun reads everything stored for a run.
func loadRun(runID string) (*storage.RunMetadata, export.ExportData, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, export.ExportData{}, err
	}
	snaps, err := st.LoadPositions(runID)
	if err != nil {
		return nil, export.ExportData{}, err
	}
	links, err := st.LoadLinks(runID)
	if err != nil {
		return nil, export.ExportData{}, err
	}
	movements, err := st.LoadMovement(runID)
	if err != nil {
		return nil, export.ExportData{}, err
	}
	return meta, export.NewExportData(meta, snaps, links, movements), nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	_, data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := export.ExportJSONFile(outFile, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
		return nil
	}
	return export.ExportJSON(cmd.OutOrStdout(), data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if movement {
		movements, err := st.LoadMovement(runID)
		if err != nil {
			return err
		}
		svg = export.MovementToSVG(movements, svgWidth, svgHeight, "#00ff88")
		if svg == "" {
			return fmt.Errorf("run %s has too few steps to plot", runID)
		}
	} else {
		snaps, err := st.LoadPositions(runID)
		if err != nil {
			return err
		}
		links, err := st.LoadLinks(runID)
		if err != nil {
			return err
		}
		svg = export.ToSVG(snaps, links, svgWidth, svgHeight)
	}

	if outFile == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	theme, ok := viz.ThemeByName(themeName)
	if !ok {
		return fmt.Errorf("unknown theme: %s (available: %v)", themeName, viz.ThemeNames())
	}
	g, err := cfg.LoadGraph()
	if err != nil {
		return err
	}

	settings := cfg.Settings()
	build := func() (*layout.ForceLayout, error) {
		return layout.New(g, settings)
	}
	return viz.Run(viz.NewModel(build, cfg.Describe(), stepsPerTick).WithTheme(theme))
}

func benchLayout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if benchSteps < 1 {
		return fmt.Errorf("steps must be positive, got %d", benchSteps)
	}

	specs := args
	if len(specs) == 0 {
		specs = []string{"grid:10x10", "grid:32x32", "tree:12"}
	}
	workerCounts := []int{1}
	if n := runtime.NumCPU(); n > 1 {
		workerCounts = append(workerCounts, n)
	}
	if cmd.Flags().Changed("workers") {
		workerCounts = []int{cfg.Layout.Workers}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "benchmarking %d steps, %d-D, theta %.2f\n\n", benchSteps, cfg.Layout.Dimensions, cfg.Layout.Theta)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRAPH\tNODES\tLINKS\tWORKERS\tTIME\tSTEPS/SEC\tMOVEMENT")

	for _, spec := range specs {
		g, err := graph.Parse(spec)
		if err != nil {
			return err
		}
		for _, n := range workerCounts {
			settings := cfg.Settings()
			settings.Workers = n

			l, err := layout.New(g, settings)
			if err != nil {
				return err
			}

			start := time.Now()
			m := 0.0
			for i := 0; i < benchSteps; i++ {
				m = l.Step()
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.1f\t%.5f\n",
				spec, g.NodeCount(), g.LinkCount(), n,
				elapsed.Round(time.Microsecond), float64(benchSteps)/elapsed.Seconds(), m)
		}
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	snaps, err := st.LoadPositions(runID)
	if err != nil {
		return err
	}
	links, err := st.LoadLinks(runID)
	if err != nil {
		return err
	}
	movements, err := st.LoadMovement(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s: %s, %d-D, %d steps\n\n", meta.ID, meta.Graph, meta.Settings.Dimensions, meta.Steps)

	edges := analysis.Edges(snaps, links, meta.Settings.SpringLength)
	fmt.Fprintln(out, "springs:")
	fmt.Fprintf(out, "  count: %d\n", edges.Count)
	if edges.Count > 0 {
		fmt.Fprintf(out, "  length: mean %.3f, std %.3f, min %.3f, max %.3f\n", edges.Mean, edges.StdDev, edges.Min, edges.Max)
		fmt.Fprintf(out, "  deviation from rest length %.1f: %.1f%%\n", meta.Settings.SpringLength, edges.Deviation*100)
	}
	fmt.Fprintf(out, "  mean nearest neighbour: %.3f\n", analysis.NearestNeighbor(snaps))

	fmt.Fprintln(out, "\nconvergence:")
	fmt.Fprintf(out, "  rate: %.5f per step\n", analysis.ConvergenceRate(movements))
	switch n := analysis.StepsToThreshold(movements, meta.Settings.StableThreshold); {
	case meta.Converged || n == 0:
		fmt.Fprintln(out, "  settled")
	case n < 0:
		fmt.Fprintln(out, "  not decaying")
	default:
		fmt.Fprintf(out, "  about %d more steps to settle\n", n)
	}

	proj, err := analysis.Project(snaps, xAxis, yAxis)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nprojection (x%d, x%d):\n", xAxis, yAxis)
	fmt.Fprint(out, analysis.ProjectionToASCII(proj, 60, 20))
	return nil
}

func tuneLayout(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(tuneParams) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", optim.Params())
	}

	names := make([]string, 0, len(tuneParams))
	ranges := make([][]float64, 0, len(tuneParams))
	seen := make(map[string]bool)
	for _, p := range tuneParams {
		name, values, err := optim.ParseRange(p)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("parameter %s given twice", name)
		}
		seen[name] = true
		names = append(names, name)
		ranges = append(ranges, values)
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	g, err := cfg.LoadGraph()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	base := cfg.Settings()
	build := func(params map[string]float64) (sim.Stepper, error) {
		s := base
		for name, v := range params {
			if err := optim.Apply(&s, name, v); err != nil {
				return nil, err
			}
		}
		return layout.New(g, s, layout.WithLogger(log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "searching %d combinations on %s...\n\n", gs.Size(), cfg.Describe())
	best, trials, err := gs.Search(ctx, build, cfg.SimConfig(), optim.ScoreSteps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t", strings.ToUpper(name))
	}
	fmt.Fprintln(w, "STEPS\tCONVERGED\tMOVEMENT")
	for _, t := range trials {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		if t.Err != nil {
			fmt.Fprintf(w, "-\t-\t%v\n", t.Err)
			continue
		}
		fmt.Fprintf(w, "%d\t%v\t%.5f\n", t.Result.Steps, t.Result.Converged, t.Result.FinalMovement())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprint(out, "\nbest:")
	for _, name := range names {
		fmt.Fprintf(out, " %s=%g", name, best.Params[name])
	}
	fmt.Fprintf(out, " (%d steps)\n", best.Result.Steps)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDIMS\tTHETA\tGRAVITY\tSPRING\tLENGTH\tSTEP\tTHRESHOLD")
	for _, name := range config.ListPresets() {
		l := config.GetPreset(name).Layout
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%g\t%g\n",
			name, l.Dimensions, l.Theta, l.Gravity, l.SpringCoeff, l.SpringLength, l.TimeStep, l.StableThreshold)
	}
	return w.Flush()
}
