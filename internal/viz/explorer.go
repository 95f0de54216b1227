package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/animate"
	"github.com/san-kum/quakeview/internal/dashboard"
	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/quake"
)

const (
	DefaultMapCols  = 72
	DefaultMapRows  = 20
	timelineMargin  = 8
	sidePanelWidth  = 46
	errorDismiss    = 3 * time.Second
	speedStepMillis = 50
	brushStepCols   = 2
)

type loadedMsg struct{ res dashboard.LoadResult }

type animTickMsg struct{ handle animate.Handle }

type dismissMsg struct{ seq int }

// Status is the explorer's notifier. It is mutated on the event loop only.
type Status struct {
	Text  string
	Err   bool
	Count int
	seq   int
}

func (s *Status) Loading(sel loader.Selector) {
	s.Text, s.Err = dashboard.LoadingText(sel), false
}

func (s *Status) Loaded(sel loader.Selector, n int, report loader.Report) {
	s.Text, s.Err, s.Count = dashboard.RecordCountText(sel, n), false, n
	if report.Skipped > 0 {
		s.Text += fmt.Sprintf(" (%d skipped)", report.Skipped)
	}
}

func (s *Status) Failed(sel loader.Selector, err error) {
	s.Text, s.Err = dashboard.FailedText(sel), true
	s.seq++
	log.WithError(err).WithField("selector", sel.String()).Error("load failed")
}

// Options configure the explorer's initial controls.
type Options struct {
	Selector        loader.Selector
	FirstYear       int
	LastYear        int
	ColorBy         quake.Attribute
	SizeByMagnitude bool
	Distribution    distribution.Kind
	StepMillis      int
	BaseLayer       int
}

// Explorer is the interactive bubbletea front end.
type Explorer struct {
	ctx    context.Context
	dash   *dashboard.Dashboard
	mapv   *MapView
	chart  *ChartView
	tl     *TimelineView
	status *Status

	opts      Options
	selector  loader.Selector
	colorIdx  int
	distIdx   int
	sizeByMag bool
	step      int
	brush     *[2]int
	anim      animate.Handle
	playing   bool
	showHelp  bool
	width     int
	height    int
}

// NewExplorer creates the chart and timeline surfaces and hands them, with
// mapv and the explorer's notifier, to build.
func NewExplorer(ctx context.Context, build func(*MapView, *ChartView, *TimelineView, dashboard.Notifier) *dashboard.Dashboard, mapv *MapView, opts Options) Explorer {
	chart := NewChartView(sidePanelWidth)
	tl := NewTimelineView(DefaultMapCols-timelineMargin, "Earthquakes per bin")
	status := &Status{}
	mapv.SetLayer(opts.BaseLayer)
	if opts.StepMillis <= 0 {
		opts.StepMillis = int(animate.DefaultStep / time.Millisecond)
	}
	return Explorer{
		ctx:       ctx,
		dash:      build(mapv, chart, tl, status),
		mapv:      mapv,
		chart:     chart,
		tl:        tl,
		status:    status,
		opts:      opts,
		selector:  opts.Selector,
		colorIdx:  indexOf(quake.Attributes, opts.ColorBy),
		distIdx:   indexOf(distribution.Kinds, opts.Distribution),
		sizeByMag: opts.SizeByMagnitude,
		step:      opts.StepMillis,
	}
}

func indexOf[T comparable](xs []T, x T) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return 0
}

func (e Explorer) Init() tea.Cmd {
	return e.load(e.selector)
}

// load requests sel; the selector moves even if the load later fails so the
// user can step past a missing year. The brush is kept until a load applies.
func (e *Explorer) load(sel loader.Selector) tea.Cmd {
	e.selector = sel
	e.playing = false
	ticket := e.dash.BeginYearChange(sel)
	ctx, dash := e.ctx, e.dash
	return func() tea.Msg {
		return loadedMsg{res: dash.Fetch(ctx, ticket, sel)}
	}
}

func tickAfter(step int, h animate.Handle) tea.Cmd {
	return tea.Tick(time.Duration(step)*time.Millisecond, func(time.Time) tea.Msg {
		return animTickMsg{handle: h}
	})
}

func (e Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.resize(msg.Width, msg.Height)
		return e, nil

	case loadedMsg:
		if e.dash.CompleteYearChange(msg.res) {
			e.brush = nil
			return e, nil
		}
		if msg.res.Err != nil && msg.res.Ticket == e.dash.Ticket() {
			seq := e.status.seq
			return e, tea.Tick(errorDismiss, func(time.Time) tea.Msg { return dismissMsg{seq: seq} })
		}
		return e, nil

	case dismissMsg:
		if e.status.Err && msg.seq == e.status.seq {
			e.status.Text, e.status.Err = "", false
		}
		return e, nil

	case animTickMsg:
		if msg.handle != e.anim || !e.playing {
			return e, nil
		}
		if e.dash.OnAnimationTick(msg.handle) {
			return e, tickAfter(e.step, msg.handle)
		}
		e.playing = false
		return e, nil

	case tea.KeyMsg:
		return e.handleKey(msg)
	}
	return e, nil
}

func (e Explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		e.dash.OnAnimateStop()
		return e, tea.Quit
	case " ":
		if e.playing {
			e.dash.OnAnimateStop()
			e.playing = false
			return e, nil
		}
		h, ok := e.dash.OnAnimateStart()
		if !ok {
			return e, nil
		}
		e.anim, e.playing = h, true
		return e, tickAfter(e.step, h)
	case "y", "Y", "a":
		sel := loader.AllYears
		switch msg.String() {
		case "y":
			sel = e.selector.Next(e.opts.FirstYear, e.opts.LastYear, 1)
		case "Y":
			sel = e.selector.Next(e.opts.FirstYear, e.opts.LastYear, -1)
		}
		cmd := e.load(sel)
		return e, cmd
	case "c":
		e.colorIdx = (e.colorIdx + 1) % len(quake.Attributes)
		e.dash.OnColorAttributeChange(string(quake.Attributes[e.colorIdx]))
	case "s":
		e.sizeByMag = !e.sizeByMag
		e.dash.OnSizeToggle(e.sizeByMag)
	case "d":
		e.distIdx = (e.distIdx + 1) % len(distribution.Kinds)
		e.dash.OnDistributionChange(string(distribution.Kinds[e.distIdx]))
	case "+", "=":
		e.mapv.SetZoom(e.mapv.Zoom() + 1)
		e.dash.OnZoomEnd()
	case "-", "_":
		e.mapv.SetZoom(e.mapv.Zoom() - 1)
		e.dash.OnZoomEnd()
	case "left", "h":
		e.mapv.Pan(-0.25, 0)
		e.dash.OnZoomEnd()
	case "right", "l":
		e.mapv.Pan(0.25, 0)
		e.dash.OnZoomEnd()
	case "up", "k":
		e.mapv.Pan(0, -0.25)
		e.dash.OnZoomEnd()
	case "down", "j":
		e.mapv.Pan(0, 0.25)
		e.dash.OnZoomEnd()
	case "L":
		e.mapv.CycleLayer()
	case "H":
		e.mapv.ToggleHeat()
	case "[":
		e.moveBrush(-brushStepCols)
	case "]":
		e.moveBrush(brushStepCols)
	case "{":
		e.growBrush(-brushStepCols)
	case "}":
		e.growBrush(brushStepCols)
	case "x":
		e.brush = nil
		e.playing = false
		e.dash.OnClearSelection()
	case "<", ",":
		e.setSpeed(e.step + speedStepMillis)
	case ">", ".":
		e.setSpeed(e.step - speedStepMillis)
	case "?":
		e.showHelp = !e.showHelp
	}
	return e, nil
}

func (e *Explorer) setSpeed(ms int) {
	if err := e.dash.OnSpeedChange(ms); err == nil {
		e.step = ms
	}
}

func (e *Explorer) ensureBrush() {
	if e.brush == nil {
		w := e.tl.Width()
		e.brush = &[2]int{0, max(1, w/4)}
	}
}

func (e *Explorer) moveBrush(d int) {
	e.ensureBrush()
	w := e.tl.Width()
	span := e.brush[1] - e.brush[0]
	start := max(0, min(w-1-span, e.brush[0]+d))
	e.brush[0], e.brush[1] = start, start+span
	e.applyBrush()
}

func (e *Explorer) growBrush(d int) {
	e.ensureBrush()
	e.brush[1] = max(e.brush[0], min(e.tl.Width()-1, e.brush[1]+d))
	e.applyBrush()
}

func (e *Explorer) applyBrush() {
	e.playing = false
	e.tl.SetBrush(e.brush[0], e.brush[1])
	e.dash.OnBrushPixels(float64(e.brush[0]), float64(e.brush[1]+1))
}

func (e *Explorer) resize(w, h int) {
	e.width, e.height = w, h
	cols := max(20, w-sidePanelWidth-6)
	rows := max(8, h-timelineHeight-10)
	e.mapv.Resize(cols, rows)
	e.tl.SetWidth(cols - timelineMargin)
	e.dash.OnTimelineResize(float64(cols - timelineMargin))
	e.dash.OnZoomEnd()
}

func (e Explorer) View() string {
	layer := e.mapv.Layer()
	theme := ThemeFor(layer)
	mapPanel := theme.Panel().Render(e.mapv.Render())
	side := theme.Panel().Width(sidePanelWidth).Render(e.sidePanel(theme))
	top := lipgloss.JoinHorizontal(lipgloss.Top, mapPanel, side)

	var b strings.Builder
	b.WriteString(top)
	b.WriteByte('\n')
	b.WriteString(e.tl.Render())
	b.WriteByte('\n')
	b.WriteString(e.statusLine())
	b.WriteByte('\n')
	b.WriteString(Subtle.Render(layer.Name + ": " + layer.Attribution))

	if e.showHelp {
		return helpText + "\n\n" + b.String()
	}
	return b.String()
}

func (e Explorer) sidePanel(theme Theme) string {
	var s strings.Builder
	s.WriteString(theme.Heading().Render("QUAKEVIEW") + "  " + e.playState() + "\n\n")
	s.WriteString(Field("Year", e.selector.Label()) + "\n")
	s.WriteString(Field("Showing", fmt.Sprintf("%d / %d", e.dash.Active().Len(), e.dash.YearData().Len())) + "\n")
	s.WriteString(Field("Color by", quake.Attributes[e.colorIdx].Label()) + "\n")
	s.WriteString(Field("Size by mag", fmt.Sprintf("%v", e.sizeByMag)) + "\n")
	s.WriteString(Field("Zoom", fmt.Sprintf("%d", e.mapv.Zoom())) + "\n")
	s.WriteString(Field("Speed", fmt.Sprintf("%d ms/day", e.step)) + "\n")
	if b := e.dash.Brush(); b != nil {
		s.WriteString(Field("Brush", b.Start.Format("01-02")+" .. "+b.End.Format("01-02")) + "\n")
	}
	if st := e.dash.Driver().State(); st.Running {
		s.WriteString(Field("Cursor", st.Cursor.Format("2006-01-02")) + "\n")
	}
	s.WriteString("\n" + Legend(quake.Attributes[e.colorIdx], e.dash.Coordinator().Ranges(), 16) + "\n")
	s.WriteString(Separator(sidePanelWidth-4) + "\n")
	s.WriteString(e.chart.Render() + "\n")
	if active := e.dash.Active(); active.Len() > 0 {
		s.WriteString(Separator(sidePanelWidth-4) + "\n")
		s.WriteString(Subtle.Render(strongest(active).Tooltip()))
	}
	s.WriteString("\n" + KeyHint.Render("SP:Play Y/y:Year C:Color D:Dist ?:Help"))
	return s.String()
}

// strongest is the detail record shown beside the chart.
func strongest(ds quake.Dataset) quake.Record {
	best := ds[0]
	for _, r := range ds[1:] {
		if r.Magnitude > best.Magnitude {
			best = r
		}
	}
	return best
}

func (e Explorer) playState() string {
	if e.dash.Driver().Running() {
		return StatusRunning.Render("PLAYING")
	}
	return StatusPaused.Render("IDLE")
}

func (e Explorer) statusLine() string {
	if e.status.Err {
		return ErrorStyle.Render(e.status.Text)
	}
	return MetricLabel.Render(e.status.Text)
}

const helpText = `
╔══════════════════════════════════════════╗
║            KEYBOARD SHORTCUTS            ║
╠══════════════════════════════════════════╣
║  Space    - Start/stop playback          ║
║  y / Y    - Next / previous year         ║
║  a        - All years                    ║
║  c        - Cycle color attribute        ║
║  s        - Toggle size by magnitude     ║
║  d        - Cycle distribution chart     ║
║  + / -    - Zoom in / out                ║
║  Arrows   - Pan the map                  ║
║  [ / ]    - Move timeline brush          ║
║  { / }    - Shrink / grow brush          ║
║  x        - Clear selection              ║
║  < / >    - Slower / faster playback     ║
║  L        - Switch base layer            ║
║  H        - Toggle heat overlay          ║
║  q        - Quit                         ║
╚══════════════════════════════════════════╝`
