// Package dashboard wires the loader, the view coordinator, the timeline and
// the animation driver behind the handlers a front end calls.
package dashboard

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/animate"
	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/quake"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
)

// DataSource loads the dataset for a year selector.
type DataSource interface {
	Load(ctx context.Context, sel loader.Selector) (quake.Dataset, loader.Report, error)
}

// Notifier receives load progress.
type Notifier interface {
	Loading(sel loader.Selector)
	Loaded(sel loader.Selector, count int, report loader.Report)
	Failed(sel loader.Selector, err error)
}

// Ticket identifies a year change. Only the latest ticket is applied.
type Ticket uint64

// LoadResult carries a finished fetch back to the event loop.
type LoadResult struct {
	Ticket   Ticket
	Selector loader.Selector
	Data     quake.Dataset
	Report   loader.Report
	Err      error
}

type Options struct {
	View          view.Options
	Interval      timeline.Interval
	TimelineWidth float64
	Step          time.Duration
}

type Dashboard struct {
	source   DataSource
	coord    *view.Coordinator
	timeline view.TimelineSurface
	driver   *animate.Driver
	notify   Notifier
	log      log.FieldLogger

	interval timeline.Interval
	width    float64
	step     time.Duration

	selector loader.Selector
	year     quake.Dataset
	bins     []timeline.Bin
	scale    timeline.Scale
	brush    *timeline.Selection
	ticket   Ticket
	anim     animate.Handle
}

func New(src DataSource, m view.MapSurface, chart view.ChartSurface, tl view.TimelineSurface, n Notifier, opts Options, logger log.FieldLogger) *Dashboard {
	if logger == nil {
		logger = log.StandardLogger()
	}
	if opts.Interval == nil {
		opts.Interval = timeline.Week{}
	}
	if opts.Step <= 0 {
		opts.Step = animate.DefaultStep
	}
	if n == nil {
		n = nopNotifier{}
	}
	d := &Dashboard{
		source:   src,
		coord:    view.NewCoordinator(m, chart, opts.View, logger),
		timeline: tl,
		notify:   n,
		log:      logger,
		interval: opts.Interval,
		width:    opts.TimelineWidth,
		step:     opts.Step,
	}
	d.driver = animate.NewDriver(d, logger)
	return d
}

// BeginYearChange stops playback, announces the load and issues a new ticket.
func (d *Dashboard) BeginYearChange(sel loader.Selector) Ticket {
	d.driver.Stop()
	d.ticket++
	d.notify.Loading(sel)
	return d.ticket
}

// Fetch performs the load for t. It touches no dashboard state and may run
// off the event loop.
func (d *Dashboard) Fetch(ctx context.Context, t Ticket, sel loader.Selector) LoadResult {
	ds, report, err := d.source.Load(ctx, sel)
	return LoadResult{Ticket: t, Selector: sel, Data: ds, Report: report, Err: err}
}

// CompleteYearChange applies a fetch result. Stale tickets are dropped and a
// failed load leaves every view as it was. It reports whether res was applied.
func (d *Dashboard) CompleteYearChange(res LoadResult) bool {
	if res.Ticket != d.ticket {
		d.log.WithFields(log.Fields{"selector": res.Selector.String(), "ticket": res.Ticket}).Debug("stale load ignored")
		return false
	}
	if res.Err != nil {
		d.notify.Failed(res.Selector, res.Err)
		return false
	}

	d.selector = res.Selector
	d.year = res.Data
	d.brush = nil
	d.timeline.ClearBrush()
	d.timeline.ClearCursor()
	d.drawTimeline()
	d.coord.SetActiveDataset(d.year)
	d.notify.Loaded(res.Selector, len(res.Data), res.Report)
	return true
}

// OnYearChange parses raw and loads it synchronously.
func (d *Dashboard) OnYearChange(ctx context.Context, raw string) error {
	sel, err := loader.ParseSelector(raw)
	if err != nil {
		return err
	}
	res := d.Fetch(ctx, d.BeginYearChange(sel), sel)
	d.CompleteYearChange(res)
	return res.Err
}

func (d *Dashboard) drawTimeline() {
	d.bins = timeline.BinData(d.year, d.interval)
	d.scale = timeline.NewScale(timeline.ComputeRange(d.year), d.width)
	d.timeline.DrawTimeline(d.bins, d.scale)
}

// OnBrushChange filters the active dataset to sel, or restores the full year
// when sel is nil. Either way playback stops.
func (d *Dashboard) OnBrushChange(sel *timeline.Selection) {
	d.driver.Stop()
	if sel == nil {
		d.brush = nil
		d.coord.SetActiveDataset(d.year)
		return
	}
	b := *sel
	d.brush = &b
	d.coord.SetActiveDataset(timeline.FilterByRange(d.year, b.Start, b.End))
}

// OnBrushPixels converts a pixel brush on the timeline into a selection.
func (d *Dashboard) OnBrushPixels(x0, x1 float64) {
	if timeline.ComputeRange(d.year).Empty() {
		return
	}
	sel := timeline.FromPixels(d.scale, x0, x1)
	d.OnBrushChange(&sel)
}

// OnClearSelection resets the brush, the cursor line and playback.
func (d *Dashboard) OnClearSelection() {
	d.driver.Stop()
	d.brush = nil
	d.timeline.ClearBrush()
	d.timeline.ClearCursor()
	d.coord.SetActiveDataset(d.year)
}

// OnAnimateStart plays back the full year dataset.
func (d *Dashboard) OnAnimateStart() (animate.Handle, bool) {
	h, ok := d.driver.Start(d.year, d.step)
	if ok {
		d.anim = h
	}
	return h, ok
}

func (d *Dashboard) OnAnimateStop() { d.driver.Stop() }

func (d *Dashboard) OnAnimationTick(h animate.Handle) bool { return d.driver.Tick(h) }

// RenderFrame is called by the driver for every tick.
func (d *Dashboard) RenderFrame(filtered quake.Dataset, cursor time.Time) {
	d.coord.SetActiveDataset(filtered)
	d.timeline.MoveCursor(cursor)
}

func (d *Dashboard) OnColorAttributeChange(s string) error {
	a, err := quake.ParseAttribute(s)
	if err != nil {
		return err
	}
	d.coord.SetColorAttribute(a)
	return nil
}

func (d *Dashboard) OnSizeToggle(on bool) { d.coord.SetSizeByMagnitude(on) }

func (d *Dashboard) OnDistributionChange(s string) error {
	k, err := distribution.ParseKind(s)
	if err != nil {
		return err
	}
	d.coord.SetDistribution(k)
	return nil
}

func (d *Dashboard) OnZoomEnd() { d.coord.ZoomEnded() }

// OnSpeedChange sets the tick interval in milliseconds.
func (d *Dashboard) OnSpeedChange(ms int) error {
	if ms <= 0 {
		return fmt.Errorf("animation speed must be positive, got %d ms", ms)
	}
	d.step = time.Duration(ms) * time.Millisecond
	d.driver.SetStep(d.step)
	return nil
}

// OnTimelineResize rescales the timeline to a new pixel width.
func (d *Dashboard) OnTimelineResize(width float64) {
	d.width = width
	if d.year != nil {
		d.drawTimeline()
	}
}

func (d *Dashboard) Selector() loader.Selector      { return d.selector }
func (d *Dashboard) YearData() quake.Dataset        { return d.year }
func (d *Dashboard) Active() quake.Dataset          { return d.coord.Active() }
func (d *Dashboard) Bins() []timeline.Bin           { return d.bins }
func (d *Dashboard) TimeScale() timeline.Scale      { return d.scale }
func (d *Dashboard) Coordinator() *view.Coordinator { return d.coord }
func (d *Dashboard) Driver() *animate.Driver        { return d.driver }
func (d *Dashboard) Step() time.Duration            { return d.step }
func (d *Dashboard) Animation() animate.Handle      { return d.anim }

// Ticket is the most recently issued load ticket.
func (d *Dashboard) Ticket() Ticket { return d.ticket }

// Brush returns the current selection, or nil when the full year is active.
func (d *Dashboard) Brush() *timeline.Selection {
	if d.brush == nil {
		return nil
	}
	b := *d.brush
	return &b
}

// RecordCountText is the status line shown after a load.
func RecordCountText(sel loader.Selector, n int) string {
	return fmt.Sprintf("Number of earthquake records for %s: %d", sel, n)
}

func LoadingText(sel loader.Selector) string {
	return fmt.Sprintf("Loading earthquake data for %s...", sel.Label())
}

func FailedText(sel loader.Selector) string {
	return fmt.Sprintf("Error loading data for %s. Please try another year.", sel)
}

type nopNotifier struct{}

func (nopNotifier) Loading(loader.Selector)                    {}
func (nopNotifier) Loaded(loader.Selector, int, loader.Report) {}
func (nopNotifier) Failed(loader.Selector, error)              {}
