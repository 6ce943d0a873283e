package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/polyphase/internal/chart"
	"github.com/san-kum/polyphase/internal/config"
	"github.com/san-kum/polyphase/internal/engine"
	"github.com/san-kum/polyphase/internal/integrators"
	"github.com/san-kum/polyphase/internal/limitcycle"
	"github.com/san-kum/polyphase/internal/portrait"
	"github.com/san-kum/polyphase/internal/render"
	"github.com/san-kum/polyphase/internal/storage"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	quiet      bool

	// system
	tabFile string
	fieldP  string
	fieldQ  string
	weights string

	// overrides
	view       string
	integrator string
	epsilon    float64
	intPoints  int
	bounds     string
	width      int
	height     int

	// commands
	batches   int
	orbits    []string
	svgFile   string
	saveName  string
	plain     bool
	fromChart string
	backward  bool
	steps     int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "polyphase",
		Short:        "phase portraits of planar polynomial vector fields",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".polyphase", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&quiet, "quiet", false, "only log errors")
	pf.StringVar(&tabFile, "tab", "", "table file with fields and singular points")
	pf.StringVar(&fieldP, "p", "", "x' as a polynomial in x and y")
	pf.StringVar(&fieldQ, "q", "", "y' as a polynomial in x and y")
	pf.StringVar(&weights, "weights", "1,1", "compactification weights p,q")
	pf.StringVar(&view, "view", "sphere", "view: sphere, R2, U1, U2, V1, V2")
	pf.StringVar(&integrator, "integrator", "rk78", fmt.Sprintf("integrator %v", integrators.Names()))
	pf.Float64Var(&epsilon, "epsilon", config.DefaultEpsilon, "separatrix start radius")
	pf.IntVar(&intPoints, "points", config.DefaultIntPoints, "steps per batch")
	pf.StringVar(&bounds, "bounds", "", "view box x0,y0,x1,y1 for planar views")
	pf.IntVar(&width, "width", config.DefaultWidth, "canvas width in cells")
	pf.IntVar(&height, "height", config.DefaultHeight, "canvas height in cells")

	portraitCmd := &cobra.Command{
		Use:   "portrait",
		Short: "integrate all separatrices and draw the portrait",
		Args:  cobra.NoArgs,
		RunE:  runPortrait,
	}
	portraitCmd.Flags().IntVar(&batches, "batches", 1, "batches per separatrix")
	portraitCmd.Flags().StringArrayVar(&orbits, "orbit", nil, "extra orbit through x,y of --from (repeatable)")
	portraitCmd.Flags().StringVar(&svgFile, "svg", "", "also write an SVG file")
	portraitCmd.Flags().StringVar(&saveName, "save", "", "save the run under this name")
	portraitCmd.Flags().BoolVar(&plain, "plain", false, "no colors")
	portraitCmd.Flags().StringVar(&fromChart, "from", "R2", "chart of orbit points")

	orbitCmd := &cobra.Command{
		Use:   "orbit [x] [y]",
		Short: "integrate one orbit",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrbit,
	}
	orbitCmd.Flags().StringVar(&fromChart, "from", "R2", "chart of the start point")
	orbitCmd.Flags().IntVar(&steps, "steps", 0, "steps in each direction (default: points)")
	orbitCmd.Flags().BoolVar(&backward, "backward", true, "also integrate backward")
	orbitCmd.Flags().BoolVar(&plain, "plain", false, "no colors")

	lcCmd := &cobra.Command{
		Use:   "lc [x0] [y0] [x1] [y1]",
		Short: "search limit cycles on the section between two points",
		Args:  cobra.ExactArgs(4),
		RunE:  runLimitCycles,
	}
	lcCmd.Flags().StringVar(&fromChart, "from", "R2", "chart of the section endpoints")
	lcCmd.Flags().BoolVar(&plain, "plain", false, "no colors")

	chartCmd := &cobra.Command{
		Use:   "chart [x] [y]",
		Short: "show a point in every chart",
		Args:  cobra.ExactArgs(2),
		RunE:  runChart,
	}
	chartCmd.Flags().StringVar(&fromChart, "from", "R2", "chart of the point")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step separatrices and orbits interactively",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringArrayVar(&orbits, "orbit", nil, "start an orbit through x,y of --from (repeatable)")
	liveCmd.Flags().StringVar(&fromChart, "from", "R2", "chart of orbit points")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "export a saved run as SVG",
		Args:  cobra.ExactArgs(2),
		RunE:  exportSVG,
	}

	stepsCmd := &cobra.Command{
		Use:   "steps",
		Short: "plot the step sizes used while integrating all separatrices",
		Args:  cobra.NoArgs,
		RunE:  plotSteps,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	rootCmd.AddCommand(portraitCmd, orbitCmd, lcCmd, chartCmd, liveCmd, listCmd, exportSVGCmd, stepsCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printCanvas(b *render.Braille) {
	if plain {
		fmt.Print(b.String())
	} else {
		fmt.Print(b.Render())
		fmt.Println(render.Legend())
	}
}

func runPortrait(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSession(cmd)
	if err != nil {
		return err
	}
	b := render.NewBraille(s.Atlas, outputBounds(cmd, s, cfg), cfg.Output.Width, cfg.Output.Height)
	b.Boundary()
	render.Replay(s.Results, s.Atlas, b)
	s.SetDrawer(b)

	start := time.Now()
	curves := s.PlotAllSeparatrices(cfg.Integration.IntPoints)
	for i := 1; i < batches; i++ {
		for _, sing := range s.Results.Singularities {
			if !sing.NotADummy {
				continue
			}
			for _, sep := range sing.Separatrices {
				s.ContinueSeparatrix(sep, cfg.Integration.IntPoints)
			}
			for _, bl := range sing.BlowUps {
				s.ContinueBlowUp(sing, bl, cfg.Integration.IntPoints)
			}
		}
	}
	for _, o := range orbits {
		sp, err := pointArgs(s, []string{o})
		if err != nil {
			return fmt.Errorf("orbit %q: %w", o, err)
		}
		orb := s.StartOrbit(sp)
		n := cfg.Integration.IntPoints * batches
		s.ContinueOrbit(orb, 1, n)
		s.ContinueOrbit(orb, -1, n)
	}
	elapsed := time.Since(start)

	printCanvas(b)
	printSummary(s.Results, curves, elapsed)

	if svgFile != "" {
		if err := writeSVG(svgFile, s.Results, s.Atlas, outputBounds(cmd, s, cfg), cfg); err != nil {
			return err
		}
		fmt.Printf("svg: %s\n", svgFile)
	}
	if saveName != "" {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(saveName, cfg.View, cfg.Integrator, s.Results)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func printSummary(res *portrait.Results, curves int, elapsed time.Duration) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POINT\tKIND\tCHART\tX0\tY0\tSTABILITY\tCURVES\tPOINTS")
	for i, sing := range res.Singularities {
		owner := res.Owner(sing)
		n := 0
		for _, sep := range res.SeparatricesOf(sing) {
			n += len(sep.Points)
		}
		for _, bl := range res.BlowUpsOf(sing) {
			n += len(bl.Points)
		}
		kind := sing.Kind.String()
		if !sing.NotADummy {
			kind += "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%v\t%.4g\t%.4g\t%v\t%d\t%d\n",
			i, kind, sing.Chart, sing.X0, sing.Y0, sing.Stable,
			len(owner.Separatrices)+len(owner.BlowUps), n)
	}
	w.Flush()
	fmt.Printf("\n%d curves, %d orbits, %d limit cycles in %v\n",
		curves, len(res.Orbits), len(res.LimitCycles), elapsed.Round(time.Millisecond))
}

func writeSVG(path string, res *portrait.Results, atlas chart.Atlas, b []float64, cfg *config.Config) error {
	svg := render.NewSVG(atlas, b, cfg.Output.Width*10, cfg.Output.Height*20)
	svg.Boundary()
	render.Replay(res, atlas, svg)
	return writeDoc(path, svg)
}

func writeDoc(path string, svg *render.SVG) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := svg.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runOrbit(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSession(cmd)
	if err != nil {
		return err
	}
	sp, err := pointArgs(s, args)
	if err != nil {
		return err
	}
	b := render.NewBraille(s.Atlas, outputBounds(cmd, s, cfg), cfg.Output.Width, cfg.Output.Height)
	b.Boundary()
	s.SetDrawer(b)

	n := steps
	if n <= 0 {
		n = cfg.Integration.IntPoints
	}
	o := s.StartOrbit(sp)
	fwd := s.ContinueOrbit(o, 1, n)
	back := 0
	if backward {
		back = s.ContinueOrbit(o, -1, n)
	}

	printCanvas(b)
	fmt.Printf("forward: %d points (%v)\n", fwd, o.Forward.Status)
	fmt.Printf("backward: %d points (%v)\n", back, o.Backward.Status)
	if len(o.Points) > 0 {
		last := o.Points[len(o.Points)-1]
		c := s.Atlas.IntegrationChart(last.Pos)
		fmt.Printf("last: %v %v\n", c, s.Atlas.SphereToChart(c, last.Pos))
	}
	return nil
}

func runLimitCycles(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSession(cmd)
	if err != nil {
		return err
	}
	a, err := pointArgs(s, args[:2])
	if err != nil {
		return err
	}
	bp, err := pointArgs(s, args[2:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	search, err := limitcycle.New(s, a, bp, limitcycle.WithStop(limitcycle.StopOnContext(ctx)))
	if err != nil {
		return err
	}
	start := time.Now()
	cycles, err := search.Run()
	if err != nil {
		return fmt.Errorf("limit cycle search: %w", err)
	}

	b := render.NewBraille(s.Atlas, outputBounds(cmd, s, cfg), cfg.Output.Width, cfg.Output.Height)
	b.Boundary()
	render.Replay(s.Results, s.Atlas, b)
	printCanvas(b)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CYCLE\tCHART\tCROSSING\tPOINTS")
	for i, lc := range cycles {
		c := s.Atlas.IntegrationChart(lc.Start)
		pt := s.Atlas.SphereToChart(c, lc.Start)
		fmt.Fprintf(w, "%d\t%v\t(%.10g, %.10g)\t%d\n", i, c, pt[0], pt[1], len(lc.Points))
	}
	w.Flush()
	fmt.Printf("\n%d limit cycles in %v\n", len(cycles), time.Since(start).Round(time.Millisecond))
	return nil
}

func runChart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, err := chart.ParseView(cfg.View)
	if err != nil {
		return err
	}
	w8, err := parseInts(weights, 2)
	if err != nil {
		return err
	}
	weighted := w8[0] != 1 || w8[1] != 1
	atlas := chart.New(weighted, w8[0], w8[1], v)

	pt, err := parseFloats(args[0]+","+args[1], 2)
	if err != nil {
		return err
	}
	from, err := chart.ParseChart(fromChart)
	if err != nil {
		return err
	}
	sp := atlas.ChartToSphere(from, chart.Point{pt[0], pt[1]})

	fmt.Printf("sphere: (%.10g, %.10g, %.10g)\n", sp[0], sp[1], sp[2])
	fmt.Printf("integration chart: %v\n", atlas.IntegrationChart(sp))
	vc := atlas.SphereToView(sp)
	fmt.Printf("view %v: (%.10g, %.10g) valid=%v\n\n", v, vc[0], vc[1], atlas.IsValidView(vc))

	charts := []chart.Chart{chart.R2, chart.U1, chart.U2, chart.V1, chart.V2}
	if weighted {
		charts = append(charts, chart.Cylinder)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHART\tZ1\tZ2")
	for _, c := range charts {
		p := atlas.SphereToChart(c, sp)
		fmt.Fprintf(w, "%v\t%.10g\t%.10g\n", c, p[0], p[1])
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSession(cmd)
	if err != nil {
		return err
	}
	m := newLiveModel(s, cfg, outputBounds(cmd, s, cfg))
	for _, o := range orbits {
		sp, err := pointArgs(s, []string{o})
		if err != nil {
			return fmt.Errorf("orbit %q: %w", o, err)
		}
		s.StartOrbit(sp)
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
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
	fmt.Fprintln(w, "ID\tTIME\tVIEW\tINTEG\tWEIGHTS\tPOINTS\tCURVES\tORBITS\tCYCLES")
	for _, run := range runs {
		c := run.Counts
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t(%d,%d)\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.View,
			run.Integrator,
			run.P, run.Q,
			c.Singularities,
			c.Separatrices+c.BlowUps,
			c.Orbits,
			c.LimitCycles,
		)
	}
	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID, path := args[0], args[1]
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	res, err := st.LoadResults(runID)
	if err != nil {
		return err
	}
	points, err := st.LoadPoints(runID)
	if err != nil {
		return err
	}

	viewName := meta.View
	if cmd.Flags().Changed("view") {
		viewName = cfg.View
	}
	v, err := chart.ParseView(viewName)
	if err != nil {
		return err
	}
	atlas := res.Atlas(v)
	b := cfg.Output.Bounds
	if rb := render.BoundsOf(res); rb != nil && !cmd.Flags().Changed("bounds") {
		b = rb
	}

	svg := render.NewSVG(atlas, b, cfg.Output.Width*10, cfg.Output.Height*20)
	svg.Boundary()
	render.Replay(res, atlas, svg)
	replayPoints(svg, points)
	if err := writeDoc(path, svg); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d points)\n", path, len(points))
	return nil
}

// replayPoints draws stored point rows. A row joins its predecessor only
// within the same curve.
func replayPoints(d engine.Drawer, points []storage.PointRecord) {
	for i, p := range points {
		same := i > 0 &&
			points[i-1].Kind == p.Kind &&
			points[i-1].Owner == p.Owner &&
			points[i-1].Index == p.Index
		if p.Connected && same {
			d.DrawLine(points[i-1].Pos, p.Pos, p.Color)
		} else {
			d.DrawPoint(p.Pos, p.Color)
		}
	}
}

func plotSteps(cmd *cobra.Command, args []string) error {
	s, cfg, err := newSession(cmd)
	if err != nil {
		return err
	}
	curves := s.PlotAllSeparatrices(cfg.Integration.IntPoints)
	history := s.StepHistory()
	if len(history) == 0 {
		return fmt.Errorf("no steps taken")
	}

	graph := asciigraph.Plot(history,
		asciigraph.Height(12),
		asciigraph.Width(cfg.Output.Width),
		asciigraph.Caption(fmt.Sprintf("step size over the last %d steps of %d curves", len(history), curves)),
	)
	fmt.Println(graph)
	fmt.Printf("\ncurrent step: %.3g  hand-offs: %d\n", s.CurrentStep(), s.HandOffs())
	return nil
}
