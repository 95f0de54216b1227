package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/quakeview/internal/config"
	"github.com/san-kum/quakeview/internal/dashboard"
	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/encoding"
	"github.com/san-kum/quakeview/internal/export"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/logging"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/report"
	"github.com/san-kum/quakeview/internal/store"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/tui"
	"github.com/san-kum/quakeview/internal/view"
	"github.com/san-kum/quakeview/internal/viz"
)

var (
	configFile string
	preset     string
	dataDir    string
	baseURL    string
	year       string
	colorBy    string
	binWidth   string
	logLevel   string
	logFile    string
	// Brush window for the batch commands
	fromDate string
	toDate   string
	// Playback
	frameRate int
	stepMs    int
	// Output
	outPath   string
	exportDir string
	withSVG   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quakeview",
		Short: "earthquake map, timeline and playback dashboard",
		RunE:  runExplore,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "directory holding the yearly csv files")
	pf.StringVar(&baseURL, "base-url", "", "fetch csv files over http from this url instead of --data")
	pf.StringVar(&year, "year", config.DefaultYear, "year to load, or 'all'")
	pf.StringVar(&colorBy, "color-by", config.DefaultColorBy, "marker color attribute (mag, depth, year)")
	pf.StringVar(&binWidth, "bin-width", config.DefaultBinWidth, "timeline bin width (day, week, month)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	pf.StringVar(&logFile, "log-file", "", "append logs to this file")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive terminal dashboard",
		RunE:  runExplore,
	}

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "play back the selected year in the terminal",
		RunE:  runPlay,
	}
	playCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	playCmd.Flags().IntVar(&stepMs, "step", config.DefaultStepMillis, "milliseconds per simulated day")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "print counts, ranges and histograms",
		RunE:  runSummary,
	}
	addBrushFlags(summaryCmd)

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "write an interactive html report",
		RunE:  runReport,
	}
	reportCmd.Flags().StringVarP(&outPath, "out", "o", "quakeview.html", "output file")
	addBrushFlags(reportCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "export the selected records as csv and geojson",
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&exportDir, "out", "exports", "export directory")
	exportCmd.Flags().BoolVar(&withSVG, "svg", false, "also write map and timeline svg snapshots")
	addBrushFlags(exportCmd)

	exportsCmd := &cobra.Command{
		Use:   "exports",
		Short: "list saved exports",
		RunE:  listExports,
	}
	exportsCmd.Flags().StringVar(&exportDir, "out", "exports", "export directory")

	yearsCmd := &cobra.Command{
		Use:   "years",
		Short: "list selectable years",
		RunE:  listYears,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				fmt.Fprintf(w, "%s\t%s\n", name, config.Presets[name].Description)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := "quakeview.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("config written to %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(exploreCmd, playCmd, summaryCmd, reportCmd, exportCmd, exportsCmd, yearsCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addBrushFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromDate, "from", "", "brush start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "brush end date, inclusive (YYYY-MM-DD)")
}

// loadConfig layers defaults, the config file, the preset and explicitly set
// flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if preset != "" && !config.ApplyPreset(cfg, preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Dir = dataDir
	}
	if flags.Changed("base-url") {
		cfg.Data.BaseURL = baseURL
	}
	if flags.Changed("year") {
		cfg.Data.Year = year
	}
	if flags.Changed("color-by") {
		cfg.View.ColorBy = colorBy
	}
	if flags.Changed("bin-width") {
		cfg.View.BinWidth = binWidth
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("step") {
		cfg.Animation.StepMillis = stepMs
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging sends logs to stderr for batch commands. Full-screen commands
// pass quiet so that logs only go to a configured file.
func setupLogging(cfg *config.Config, quiet bool) (io.Closer, error) {
	if quiet && cfg.Log.File == "" {
		logging.Discard()
		return io.NopCloser(nil), nil
	}
	return logging.Setup(cfg.Log.Level, cfg.Log.File)
}

type env struct {
	cfg      *config.Config
	sel      loader.Selector
	interval timeline.Interval
	loc      *time.Location
	source   *loader.Loader
	closer   io.Closer
}

func newEnv(cmd *cobra.Command, quiet bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	closer, err := setupLogging(cfg, quiet)
	if err != nil {
		return nil, err
	}
	sel, _ := cfg.Selector()
	iv, _ := cfg.Interval()
	loc, _ := cfg.Location()
	src := loader.New(cfg.Source(),
		loader.WithYears(cfg.Data.FirstYear, cfg.Data.LastYear),
		loader.WithLogger(log.StandardLogger()))
	return &env{cfg: cfg, sel: sel, interval: iv, loc: loc, source: src, closer: closer}, nil
}

func (e *env) dashboard(m view.MapSurface, chart view.ChartSurface, tl view.TimelineSurface, n dashboard.Notifier, width float64) *dashboard.Dashboard {
	return dashboard.New(e.source, m, chart, tl, n, dashboard.Options{
		View:          e.cfg.ViewOptions(),
		Interval:      e.interval,
		TimelineWidth: width,
		Step:          e.cfg.Step(),
	}, log.StandardLogger())
}

// brush returns the --from/--to window, or nil when neither is set.
func (e *env) brush() (*timeline.Selection, error) {
	return parseWindow(fromDate, toDate, e.loc)
}

// parseWindow turns inclusive YYYY-MM-DD dates into a selection. The end
// covers the whole named day.
func parseWindow(from, to string, loc *time.Location) (*timeline.Selection, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	sel := timeline.Selection{Start: time.Time{}, End: time.Date(9999, 1, 1, 0, 0, 0, 0, loc)}
	if from != "" {
		t, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		sel.Start = t
	}
	if to != "" {
		t, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
		sel.End = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if sel.End.Before(sel.Start) {
		return nil, fmt.Errorf("brush end %s is before start %s", to, from)
	}
	return &sel, nil
}

// load loads the configured selector into d and applies the brush flags.
func (e *env) load(ctx context.Context, d *dashboard.Dashboard) error {
	if err := d.OnYearChange(ctx, e.sel.String()); err != nil {
		return fmt.Errorf("%s: %w", dashboard.FailedText(e.sel), err)
	}
	b, err := e.brush()
	if err != nil {
		return err
	}
	if b != nil {
		d.OnBrushChange(b)
	}
	return nil
}

// logNotifier reports load progress through the logger.
type logNotifier struct{}

func (logNotifier) Loading(sel loader.Selector) { log.Info(dashboard.LoadingText(sel)) }

func (logNotifier) Loaded(sel loader.Selector, n int, r loader.Report) {
	log.WithFields(log.Fields{"skipped": r.Skipped}).Info(dashboard.RecordCountText(sel, n))
	for _, e := range r.Errors {
		log.Debug(e)
	}
}

func (logNotifier) Failed(sel loader.Selector, err error) {
	log.WithError(err).Error(dashboard.FailedText(sel))
}

func runExplore(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := e.cfg
	mapv := viz.NewMapView(viz.DefaultMapCols, viz.DefaultMapRows, cfg.View.Center, cfg.View.Zoom)
	build := func(m *viz.MapView, c *viz.ChartView, tl *viz.TimelineView, n dashboard.Notifier) *dashboard.Dashboard {
		return e.dashboard(m, c, tl, n, float64(tl.Width()))
	}
	vo := cfg.ViewOptions()
	explorer := viz.NewExplorer(ctx, build, mapv, viz.Options{
		Selector:        e.sel,
		FirstYear:       cfg.Data.FirstYear,
		LastYear:        cfg.Data.LastYear,
		ColorBy:         vo.ColorBy,
		SizeByMagnitude: vo.SizeByMagnitude,
		Distribution:    vo.Distribution,
		StepMillis:      cfg.Animation.StepMillis,
		BaseLayer:       view.LayerByName(cfg.View.BaseLayer),
	})

	p := tea.NewProgram(explorer, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func runPlay(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := e.cfg
	player := tui.NewPlayer(os.Stdout, viz.NewMapView(viz.DefaultMapCols, viz.DefaultMapRows, cfg.View.Center, cfg.View.Zoom), frameRate)
	player.Map.SetLayer(view.LayerByName(cfg.View.BaseLayer))
	d := e.dashboard(player, player, player, player, float64(player.Timeline.Width()))

	if err := e.load(ctx, d); err != nil {
		player.Flush(true)
		return err
	}

	h, ok := d.OnAnimateStart()
	if !ok {
		return fmt.Errorf("no records to play for %s", e.sel.Label())
	}

	player.Start()
	defer player.Stop()

	err = d.Driver().Run(ctx, h)
	player.Flush(true)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runSummary(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	d := e.dashboard(nopMap{}, nopChart{}, nopTimeline{}, logNotifier{}, 80)
	if err := e.load(context.Background(), d); err != nil {
		return err
	}

	active := d.Active()
	fmt.Printf("selection: %s\n", e.sel.Label())
	fmt.Printf("records:   %d of %d\n", active.Len(), d.YearData().Len())
	if r := timeline.ComputeRange(active); !r.Empty() {
		fmt.Printf("from:      %s\n", r.Min.Format("2006-01-02 15:04"))
		fmt.Printf("to:        %s\n", r.Max.Format("2006-01-02 15:04"))
	}

	ranges := encoding.RangesOf(active)
	for _, attr := range quake.Attributes {
		if r := ranges.Get(attr); !r.Empty() {
			fmt.Printf("%-10s %g .. %g\n", attr.Label()+":", r.Min, r.Max)
		}
	}
	fmt.Println()

	bins := timeline.BinData(active, e.interval)
	if len(bins) > 0 {
		counts := make([]float64, len(bins))
		for i, b := range bins {
			counts[i] = float64(b.Count())
		}
		if len(counts) == 1 {
			counts = append(counts, counts[0])
		}
		fmt.Println(asciigraph.Plot(counts,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("earthquakes per %s", e.interval.Name())),
		))
		fmt.Println()
	}

	for _, kind := range []distribution.Kind{distribution.KindMagnitude, distribution.KindDepth} {
		h := distribution.Build(active, kind)
		fmt.Println(h.Title)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, b := range h.Bins {
			fmt.Fprintf(w, "  %g-%g%s\t%d\t%s\n", b.Lo, b.Hi, h.Unit, b.Count, strings.Repeat("#", scaled(b.Count, h.MaxCount(), 40)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
	}
	return nil
}

func scaled(n, peak, width int) int {
	if peak == 0 {
		return 0
	}
	return n * width / peak
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	r := report.New("Earthquakes "+e.sel.Label(), e.cfg.ViewOptions().ColorBy, e.cfg.View.Zoom)
	d := e.dashboard(r, r, r, logNotifier{}, 900)
	if err := e.load(context.Background(), d); err != nil {
		return err
	}
	r.SetSubtitle(dashboard.RecordCountText(e.sel, d.Active().Len()))

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("could not create report file %s: %w", outPath, err)
	}
	defer f.Close()

	if err := r.Render(f); err != nil {
		return err
	}
	fmt.Printf("report saved to %s\n", outPath)
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	cfg := e.cfg
	mapv := viz.NewMapView(viz.DefaultMapCols, viz.DefaultMapRows, cfg.View.Center, cfg.View.Zoom)
	mapv.SetLayer(view.LayerByName(cfg.View.BaseLayer))
	tl := viz.NewTimelineView(viz.DefaultMapCols, "")

	var skipped int
	notify := skippedCounter{logNotifier{}, &skipped}
	d := e.dashboard(mapv, viz.NewChartView(40), tl, notify, float64(tl.Width()))
	if err := e.load(context.Background(), d); err != nil {
		return err
	}

	meta := store.Metadata{Selector: e.sel.String(), Skipped: skipped}
	if b := d.Brush(); b != nil {
		meta.Brush = &store.Window{Start: b.Start, End: b.End}
	}

	st := store.New(exportDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.Save(meta, d.Active())
	if err != nil {
		return err
	}

	if withSVG {
		dir := st.Dir(id)
		if err := os.WriteFile(filepath.Join(dir, "map.svg"), []byte(export.CanvasToSVG(mapv.Snapshot(), 4)), 0644); err != nil {
			return err
		}
		svg := export.TimelineToSVG(d.Bins(), 800, 120, "#4682b4")
		if err := os.WriteFile(filepath.Join(dir, "timeline.svg"), []byte(svg), 0644); err != nil {
			return err
		}
	}

	fmt.Printf("exported %d records to %s\n", d.Active().Len(), st.Dir(id))
	return nil
}

// skippedCounter records the loader's skipped row count.
type skippedCounter struct {
	logNotifier
	skipped *int
}

func (s skippedCounter) Loaded(sel loader.Selector, n int, r loader.Report) {
	*s.skipped = r.Skipped
	s.logNotifier.Loaded(sel, n, r)
}

func listExports(cmd *cobra.Command, args []string) error {
	st := store.New(exportDir)
	exports, err := st.List()
	if err != nil {
		return err
	}

	if len(exports) == 0 {
		fmt.Println("no exports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSELECTION\tTIME\tRECORDS\tSKIPPED\tUNPLACED\tBRUSH")
	for _, m := range exports {
		brush := "-"
		if m.Brush != nil {
			brush = m.Brush.Start.Format("2006-01-02") + ".." + m.Brush.End.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			m.ID,
			m.Selector,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.Records,
			m.Skipped,
			m.Unplaced,
			brush,
		)
	}
	return w.Flush()
}

func listYears(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src := cfg.Source()
	for _, sel := range loader.Selectors(cfg.Data.FirstYear, cfg.Data.LastYear) {
		fmt.Printf("%-10s %s\n", sel.Label(), sel.Path(cfg.Data.FirstYear, cfg.Data.LastYear))
	}
	switch s := src.(type) {
	case loader.DirSource:
		fmt.Printf("\nreading from %s\n", s.Root)
	case loader.HTTPSource:
		fmt.Printf("\nfetching from %s\n", s.BaseURL)
	}
	return nil
}

// Surfaces for commands that only need the dashboard's data flow.
type nopMap struct{}

func (nopMap) Project(lat, lon float64) (float64, float64) { return lon, lat }
func (nopMap) Zoom() int                                   { return 0 }
func (nopMap) ClearOverlays()                              {}
func (nopMap) DrawMarkers([]view.Marker)                   {}
func (nopMap) DrawHeat([]view.HeatPoint, view.HeatOptions) {}

type nopChart struct{}

func (nopChart) DrawDistribution(distribution.Histogram) {}

type nopTimeline struct{}

func (nopTimeline) DrawTimeline([]timeline.Bin, timeline.Scale) {}
func (nopTimeline) MoveCursor(time.Time)                        {}
func (nopTimeline) ClearCursor()                                {}
func (nopTimeline) ClearBrush()                                 {}
