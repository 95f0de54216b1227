// Package tui renders headless playback frames as plain ANSI output.
package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/quakeview/internal/dashboard"
	"github.com/san-kum/quakeview/internal/distribution"
	"github.com/san-kum/quakeview/internal/loader"
	"github.com/san-kum/quakeview/internal/timeline"
	"github.com/san-kum/quakeview/internal/view"
	"github.com/san-kum/quakeview/internal/viz"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Player composes the terminal map, chart and timeline surfaces and writes a
// frame whenever the animation cursor moves, which is the last step of every
// playback frame.
type Player struct {
	mu        sync.Mutex
	out       io.Writer
	frameRate int
	lastFrame time.Time
	frames    int

	Map      *viz.MapView
	Chart    *viz.ChartView
	Timeline *viz.TimelineView

	selector loader.Selector
	status   string
	cursor   time.Time
}

var (
	_ view.MapSurface      = (*Player)(nil)
	_ view.ChartSurface    = (*Player)(nil)
	_ view.TimelineSurface = (*Player)(nil)
)

func NewPlayer(out io.Writer, m *viz.MapView, frameRate int) *Player {
	return &Player{
		out:       out,
		frameRate: frameRate,
		Map:       m,
		Chart:     viz.NewChartView(48),
		Timeline:  viz.NewTimelineView(viz.DefaultMapCols-8, "Earthquakes per bin"),
	}
}

func (p *Player) Project(lat, lon float64) (float64, float64) { return p.Map.Project(lat, lon) }
func (p *Player) Zoom() int                                   { return p.Map.Zoom() }
func (p *Player) ClearOverlays()                              { p.Map.ClearOverlays() }
func (p *Player) DrawMarkers(m []view.Marker)                 { p.Map.DrawMarkers(m) }
func (p *Player) DrawHeat(h []view.HeatPoint, o view.HeatOptions) {
	p.Map.DrawHeat(h, o)
}
func (p *Player) DrawDistribution(h distribution.Histogram) { p.Chart.DrawDistribution(h) }
func (p *Player) DrawTimeline(b []timeline.Bin, s timeline.Scale) {
	p.Timeline.DrawTimeline(b, s)
}
func (p *Player) ClearCursor() { p.Timeline.ClearCursor() }
func (p *Player) ClearBrush()  { p.Timeline.ClearBrush() }

func (p *Player) MoveCursor(t time.Time) {
	p.Timeline.MoveCursor(t)
	p.mu.Lock()
	p.cursor = t
	p.mu.Unlock()
	p.Flush(false)
}

func (p *Player) Loading(sel loader.Selector) {
	p.setStatus(sel, dashboard.LoadingText(sel))
}

func (p *Player) Loaded(sel loader.Selector, n int, _ loader.Report) {
	p.setStatus(sel, dashboard.RecordCountText(sel, n))
}

func (p *Player) Failed(sel loader.Selector, err error) {
	log.WithError(err).WithField("selector", sel.String()).Error("load failed")
	p.setStatus(sel, dashboard.FailedText(sel))
}

func (p *Player) setStatus(sel loader.Selector, s string) {
	p.mu.Lock()
	p.selector, p.status = sel, s
	p.mu.Unlock()
}

// Flush writes the current frame. Unforced flushes are throttled to frameRate.
func (p *Player) Flush(force bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.frameRate > 0 {
		if time.Since(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
			return
		}
	}
	p.lastFrame = time.Now()
	p.frames++

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  quakeview  %s", p.selector.Label()))
	if !p.cursor.IsZero() {
		b.WriteString(fmt.Sprintf("  as of %s", p.cursor.Format("2006-01-02")))
	}
	b.WriteString(fmt.Sprintf("  markers=%d\n", p.Map.MarkerCount()))
	b.WriteString(p.Map.Render())
	b.WriteString(p.Timeline.Render())
	b.WriteString("\n\n")
	b.WriteString(p.Chart.Render())
	b.WriteString("\n  " + p.status + "\n")

	fmt.Fprint(p.out, b.String())
}

// Frames counts written frames.
func (p *Player) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

func (p *Player) Start() { fmt.Fprint(p.out, hideCursor) }
func (p *Player) Stop()  { fmt.Fprint(p.out, showCursor) }
